package api

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/bookshelf/internal/auth"
	"github.com/dmitrijs2005/bookshelf/internal/result"
)

const (
	pathLogin         = "/api/accounts/login"
	pathRefresh       = "/api/login/refresh"
	pathCreateAccount = "/api/accounts/create"
)

const errNoAccessToken = "no access token in response"

// Authenticate logs in and starts a session from the returned token.
func (s *Service) Authenticate(ctx context.Context, username, password string) result.Result[auth.Session, string] {
	resp := s.exchange(ctx, "", call{
		method: http.MethodPost,
		path:   pathLogin,
		body:   credentials{Username: username, Password: password},
	})

	res := s.startSession(ctx, postProcess(resp, decodeAs[tokenResponse](tokenResponseSchema)))
	if res.IsSuccess() {
		s.logger.Info(ctx, "logged in", "subject", res.Value().Subject)
	}
	return res
}

// Refresh exchanges session for a new one. It is never retried itself.
func (s *Service) Refresh(ctx context.Context, session auth.Session) result.Result[auth.Session, string] {
	resp := s.exchange(ctx, session.Token, call{
		method: http.MethodPost,
		path:   pathRefresh,
		body:   struct{}{},
	})
	return s.startSession(ctx, postProcess(resp, decodeAs[tokenResponse](tokenResponseSchema)))
}

func (s *Service) startSession(ctx context.Context, res result.Result[tokenResponse, string]) result.Result[auth.Session, string] {
	return result.Then(res, func(tr tokenResponse) result.Result[auth.Session, string] {
		if tr.Token == nil {
			return result.Failure[auth.Session](errNoAccessToken)
		}
		return s.sessions.Authenticate(ctx, *tr.Token)
	})
}

// CreateAccount registers a new user and returns the username the server
// stored.
func (s *Service) CreateAccount(ctx context.Context, username, password string) result.Result[string, string] {
	resp := s.exchange(ctx, "", call{
		method: http.MethodPost,
		path:   pathCreateAccount,
		body:   credentials{Username: username, Password: password},
	})

	return result.Map(
		postProcess(resp, decodeAs[createAccountResponse](createAccountResponseSchema)),
		func(r createAccountResponse) string { return r.Username },
	)
}
