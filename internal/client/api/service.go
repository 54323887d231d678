// Package api is the typed, fallible facade over the bookshelf HTTP API.
//
// Every operation builds a request, hands it to a transport.Sender and
// validates the JSON reply against a schema before mapping it onto Go types.
// Operations that take an auth.Session retry once after a successful token
// refresh when the server rejects the token as expired.
package api

import (
	"context"
	"slices"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/bookshelf/internal/auth"
	"github.com/dmitrijs2005/bookshelf/internal/client/transport"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/dmitrijs2005/bookshelf/internal/result"
	"github.com/dmitrijs2005/bookshelf/internal/schema"
)

// SessionStarter turns a raw token into a persisted session.
// *auth.Manager implements it.
type SessionStarter interface {
	Authenticate(ctx context.Context, token string) result.Result[auth.Session, string]
}

// urlBuilder is implemented by senders that know their base URL.
type urlBuilder interface {
	URL(path string) string
}

const defaultFetchConcurrency = 4

type Service struct {
	sender   transport.Sender
	sessions SessionStarter
	logger   logging.Logger

	fetchConcurrency int
	refreshes        singleflight.Group

	mu           sync.Mutex
	unauthorized map[int]func()
	nextID       int
}

type Option func(*Service)

// WithFetchConcurrency bounds the parallel requests made by Books.
func WithFetchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fetchConcurrency = n
		}
	}
}

func NewService(sender transport.Sender, sessions SessionStarter, logger logging.Logger, opts ...Option) *Service {
	s := &Service{
		sender:           sender,
		sessions:         sessions,
		logger:           logger,
		fetchConcurrency: defaultFetchConcurrency,
		unauthorized:     make(map[int]func()),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// OnUnauthorized registers fn to run whenever any request comes back 401.
// The returned function removes it.
func (s *Service) OnUnauthorized(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.unauthorized[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.unauthorized, id)
		s.mu.Unlock()
	}
}

func (s *Service) emitUnauthorized() {
	s.mu.Lock()
	ids := make([]int, 0, len(s.unauthorized))
	for id := range s.unauthorized {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.unauthorized[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// call is a request template; form is rebuilt for every attempt because a
// multipart body can only be read once.
type call struct {
	method     string
	path       string
	body       any
	form       func() *transport.Form
	onProgress transport.ProgressFunc
}

func (s *Service) exchange(ctx context.Context, token string, c call) transport.Response {
	req := transport.Request{
		Method:     c.method,
		URL:        c.path,
		Body:       c.body,
		Token:      token,
		OnProgress: c.onProgress,
	}
	if c.form != nil {
		req.Form = c.form()
	}

	resp := s.sender.Send(ctx, req)
	if resp.Kind != transport.KindNoResponse && resp.Status == 401 {
		s.emitUnauthorized()
	}
	return resp
}

// authorized sends c with the session token. An expired-token 401 triggers a
// single refresh; only if it succeeds is c reissued, once, with the new token.
// Any other outcome, including a second 401, is returned as is.
func (s *Service) authorized(ctx context.Context, session auth.Session, c call) transport.Response {
	resp := s.exchange(ctx, session.Token, c)
	if !isExpiredToken(resp) {
		return resp
	}

	refreshed := s.sharedRefresh(ctx, session)
	if refreshed.IsError() {
		s.logger.Warn(ctx, "token refresh failed, keeping original response", "path", c.path, "error", refreshed.Error())
		return resp
	}

	s.logger.Debug(ctx, "token refreshed, retrying", "path", c.path)
	return s.exchange(ctx, refreshed.Value().Token, c)
}

// sharedRefresh coalesces concurrent refreshes of the same token. The shared
// refresh is detached from any single caller's cancellation; each caller stops
// waiting when its own ctx is done.
func (s *Service) sharedRefresh(ctx context.Context, session auth.Session) result.Result[auth.Session, string] {
	ch := s.refreshes.DoChan(session.Token, func() (any, error) {
		return s.Refresh(context.WithoutCancel(ctx), session), nil
	})

	select {
	case r := <-ch:
		return r.Val.(result.Result[auth.Session, string])
	case <-ctx.Done():
		return result.Failuref[auth.Session]("token refresh abandoned: %v", ctx.Err())
	}
}

func isExpiredToken(resp transport.Response) bool {
	if resp.Kind != transport.KindJSON || resp.Status != 401 {
		return false
	}
	body := schema.Decode[unauthorizedResponse](unauthorizedResponseSchema, resp.Body)
	return body.IsSuccess() && body.Value().Reason == reasonExpiredToken
}

// postProcess turns a transport outcome into a Result: anything but a 2xx
// JSON response is a failure describing the outcome, otherwise the body is
// handed to f.
func postProcess[T any](resp transport.Response, f func(body any) result.Result[T, string]) result.Result[T, string] {
	if resp.Kind != transport.KindJSON {
		return result.Failure[T](describe(resp, "Expected a JSON response"))
	}
	if resp.Status/100 != 2 {
		return result.Failure[T](describe(resp, "Response status was not 2XX."))
	}
	return f(resp.Body)
}

// decodeAs is the common postProcess step: validate against s, map onto T.
func decodeAs[T any](s schema.Schema) func(any) result.Result[T, string] {
	return func(body any) result.Result[T, string] {
		return schema.Decode[T](s, body)
	}
}

func describe(resp transport.Response, msg string) string {
	m := resp.Describe()
	m["error"] = msg
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return msg
	}
	return string(b)
}

func (s *Service) url(path string) string {
	if b, ok := s.sender.(urlBuilder); ok {
		return b.URL(path)
	}
	return path
}
