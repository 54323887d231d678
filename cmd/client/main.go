package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/bookshelf/internal/auth"
	"github.com/dmitrijs2005/bookshelf/internal/client/api"
	"github.com/dmitrijs2005/bookshelf/internal/client/cli"
	"github.com/dmitrijs2005/bookshelf/internal/client/client"
	"github.com/dmitrijs2005/bookshelf/internal/client/config"
	"github.com/dmitrijs2005/bookshelf/internal/client/transport"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	store, closeStore, err := client.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn(ctx, "could not close store", "error", err)
		}
	}()

	manager := auth.NewManager(store, logger.With("component", "auth"))

	sender, err := transport.NewHTTPSender(cfg.ServerURL, logger.With("component", "transport"))
	if err != nil {
		return err
	}

	service := api.NewService(sender, manager, logger.With("component", "api"))

	app := cli.NewApp(cfg, service, manager, logger, os.Stdin, os.Stdout)
	app.Run(ctx)
	return nil
}
