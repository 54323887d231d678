package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/bookshelf/internal/auth"
	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/result"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (a *App) credentials() (string, []byte, error) {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return "", nil, err
	}
	return username, password, nil
}

// Register prompts for a username and password and creates an account.
// It does not sign in.
func (a *App) Register(ctx context.Context) error {
	username, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := track(ctx, a, "Creating account", func(ctx context.Context) result.Result[string, string] {
		return a.library.CreateAccount(ctx, username, string(password))
	})
	if res.IsError() {
		return failure("could not create account", res.Error())
	}

	fmt.Fprintf(a.out, "Account %s created. Type 'login' to sign in.\n", res.Value())
	return nil
}

// Login prompts for credentials and starts a session.
func (a *App) Login(ctx context.Context) error {
	username, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := track(ctx, a, "Signing in", func(ctx context.Context) result.Result[auth.Session, string] {
		return a.library.Authenticate(ctx, username, string(password))
	})
	if res.IsError() {
		a.logger.Info(ctx, "login unsuccessful", "username", username, "reason", res.Error())
		return failure("login failed", res.Error())
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", res.Value().Subject)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.sessions.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the subject, roles and remaining lifetime of the session.
func (a *App) WhoAmI(ctx context.Context) error {
	c, ok := a.sessions.Context(ctx)
	if !ok {
		return errNoSession
	}

	roles := "none"
	if len(c.Roles) > 0 {
		roles = strings.Join(c.Roles, ", ")
	}
	fmt.Fprintf(a.out, "User:    %s\n", c.Subject)
	fmt.Fprintf(a.out, "Roles:   %s\n", roles)
	fmt.Fprintf(a.out, "Expires: %s (%s)\n", c.ExpiresAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(c.ExpiresAt))
	return nil
}
