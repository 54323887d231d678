package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/bookshelf/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the bookshelf server
//	-s string   store backend: sqlite, redis or memory
//	-p int      search page size
//	-l string   log level
//
// Only these flags are read; args is filtered with flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-p", "-l"})

	fs := flag.NewFlagSet("bookshelf", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the server")
	fs.StringVar(&cfg.StoreBackend, "s", cfg.StoreBackend, "store backend (sqlite|redis|memory)")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "search page size")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")

	return fs.Parse(args)
}
