package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/bookshelf/internal/auth"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	allowed(ctx context.Context, r auth.Requirement) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Count(ctx context.Context, query string) error
	Suggest(ctx context.Context, query string) error
	Show(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Edit(ctx context.Context, id string) error
	Upload(ctx context.Context, path string) error
}

type command struct {
	name   string
	usage  string
	access auth.Requirement
	// argName is non-empty for commands that take the rest of the line.
	argName string
	run     func(ctx context.Context, a execIface, arg string) error
}

func noArg(f func(execIface, context.Context) error) func(context.Context, execIface, string) error {
	return func(ctx context.Context, a execIface, _ string) error { return f(a, ctx) }
}

func withArg(f func(execIface, context.Context, string) error) func(context.Context, execIface, string) error {
	return func(ctx context.Context, a execIface, arg string) error { return f(a, ctx, arg) }
}

var editors = auth.Roles("admin", "librarian")

var commands = []command{
	{name: "register", usage: "create an account", access: auth.Unauthenticated, run: noArg(execIface.Register)},
	{name: "login", usage: "sign in", access: auth.Unauthenticated, run: noArg(execIface.Login)},
	{name: "whoami", usage: "show the current session", access: auth.Authenticated, run: noArg(execIface.WhoAmI)},
	{name: "search", usage: "search books page by page", access: auth.Authenticated, argName: "query", run: withArg(execIface.Search)},
	{name: "count", usage: "count books matching a query", access: auth.Authenticated, argName: "query", run: withArg(execIface.Count)},
	{name: "suggest", usage: "autocomplete a query", access: auth.Authenticated, argName: "query", run: withArg(execIface.Suggest)},
	{name: "show", usage: "show one or more books", access: auth.Authenticated, argName: "id...", run: withArg(execIface.Show)},
	{name: "upload", usage: "upload a book file", access: editors, argName: "path", run: withArg(execIface.Upload)},
	{name: "edit", usage: "edit title and metadata", access: editors, argName: "id", run: withArg(execIface.Edit)},
	{name: "delete", usage: "delete a book", access: auth.Roles("admin"), argName: "id", run: withArg(execIface.Delete)},
	{name: "logout", usage: "sign out", access: auth.Authenticated, run: noArg(execIface.Logout)},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func help(ctx context.Context, a execIface) []string {
	lines := []string{"Available commands:"}
	for _, c := range commands {
		if !a.allowed(ctx, c.access) {
			continue
		}
		name := c.name
		if c.argName != "" {
			name += " <" + c.argName + ">"
		}
		lines = append(lines, fmt.Sprintf("  %-18s %s", name, c.usage))
	}
	return append(lines, fmt.Sprintf("  %-18s %s", "help", "show this list"), fmt.Sprintf("  %-18s %s", "exit", "leave the program"))
}

// runREPL starts a read–eval–print loop for the bookshelf CLI.
//
// It reads a line from reader, parses the first token as the command and
// passes the rest of the line as its argument. Only commands allowed for the
// current session are listed by "help" and accepted; the others are reported
// as unavailable. The loop exits on EOF or when the user types "exit" or
// "quit".
//
// Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("bookshelf %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)

		switch name {
		case "":
			continue

		case "help":
			for _, l := range help(ctx, a) {
				printlnFn(l)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			cmd, ok := lookup(name)
			if !ok {
				printlnFn("Unknown command:", name)
				continue
			}
			if !a.allowed(ctx, cmd.access) {
				printlnFn("Command not available:", name)
				continue
			}
			if cmd.argName != "" && arg == "" {
				printlnFn(fmt.Sprintf("Usage: %s <%s>", cmd.name, cmd.argName))
				continue
			}
			if err := cmd.run(ctx, a, arg); err != nil {
				printlnFn("error:", err)
			}
		}
	}
}
