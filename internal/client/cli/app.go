package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/bookshelf/internal/auth"
	"github.com/dmitrijs2005/bookshelf/internal/client/api"
	"github.com/dmitrijs2005/bookshelf/internal/client/config"
	"github.com/dmitrijs2005/bookshelf/internal/client/loading"
	"github.com/dmitrijs2005/bookshelf/internal/client/transport"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/dmitrijs2005/bookshelf/internal/result"
)

var errNoSession = errors.New("not logged in")

// library is the part of api.Service the REPL drives.
type library interface {
	Authenticate(ctx context.Context, username, password string) result.Result[auth.Session, string]
	CreateAccount(ctx context.Context, username, password string) result.Result[string, string]
	SearchPages(session auth.Session, query string, pageSize int) *api.Paginator[api.Book]
	SearchCount(ctx context.Context, session auth.Session, query string) result.Result[int, string]
	Suggestions(ctx context.Context, session auth.Session, query string, limit int) result.Result[[]api.Suggestion, string]
	Book(ctx context.Context, session auth.Session, id string) result.Result[api.Book, string]
	Books(ctx context.Context, session auth.Session, ids []string) result.Result[[]api.Book, string]
	DeleteBook(ctx context.Context, session auth.Session, id string) result.Result[struct{}, string]
	UpdateBookMetadata(ctx context.Context, session auth.Session, id, title string, metadata map[string]string) result.Result[struct{}, string]
	UploadBook(ctx context.Context, session auth.Session, form api.UploadForm, onProgress transport.ProgressFunc) result.Result[string, string]
	CoverURL(id string) string
	ThumbnailURL(id string) string
	DownloadURL(id string) string
	OnUnauthorized(fn func()) func()
}

// sessions is the part of auth.Manager the REPL reads.
type sessions interface {
	Session(ctx context.Context) (auth.Session, bool)
	Context(ctx context.Context) (auth.Context, bool)
	Allowed(ctx context.Context, r auth.Requirement) bool
	Logout(ctx context.Context)
	Subscribe(fn func(auth.Event)) func()
}

type App struct {
	config   *config.Config
	library  library
	sessions sessions
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config, lib library, s sessions, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config:   c,
		library:  lib,
		sessions: s,
		logger:   logger,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	stopEvents := a.sessions.Subscribe(func(e auth.Event) {
		a.logger.Debug(ctx, "session event", "event", e)
	})
	defer stopEvents()

	stopUnauthorized := a.library.OnUnauthorized(func() {
		fmt.Fprintln(a.out, "The server rejected the session. Type 'login' to sign in again.")
	})
	defer stopUnauthorized()

	fmt.Fprintln(a.out, "Welcome to the bookshelf CLI (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.status(ctx) }, a.reader)
}

func (a *App) allowed(ctx context.Context, r auth.Requirement) bool {
	return a.sessions.Allowed(ctx, r)
}

func (a *App) status(ctx context.Context) string {
	c, ok := a.sessions.Context(ctx)
	if !ok {
		return "(anonymous)"
	}
	if len(c.Roles) == 0 {
		return fmt.Sprintf("(%s)", c.Subject)
	}
	return fmt.Sprintf("(%s %s)", c.Subject, strings.Join(c.Roles, ","))
}

func (a *App) session(ctx context.Context) (auth.Session, error) {
	s, ok := a.sessions.Session(ctx)
	if !ok {
		return auth.Session{}, errNoSession
	}
	return s, nil
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// track runs fn under a loading.Tracker while a spinner is drawn on a.out.
// The spinner line is cleared before track returns.
func track[T any](ctx context.Context, a *App, label string, fn func(context.Context) result.Result[T, string]) result.Result[T, string] {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	t := loading.NewTracker[T]()
	if err := t.Start(ctx, fn); err != nil {
		return result.Failuref[T]("%v", err)
	}

	spinning := make(chan struct{})
	go func() {
		defer close(spinning)
		loading.Spin(ctx, a.out, label, a.config.SpinnerInterval, t)
	}()

	res, ok := t.Wait(ctx)
	<-spinning
	if !ok {
		return result.Failuref[T]("%s: %v", label, ctx.Err())
	}
	return res
}

// failure converts a failed Result into an error for the REPL.
func failure(action, reason string) error {
	return fmt.Errorf("%s: %s", action, reason)
}
