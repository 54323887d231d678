package api

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dmitrijs2005/bookshelf/internal/auth"
	"github.com/dmitrijs2005/bookshelf/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/bookshelf/internal/client/transport"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/dmitrijs2005/bookshelf/internal/mocks"
)

func mintToken(t *testing.T, sub string, roles ...string) string {
	t.Helper()
	if roles == nil {
		roles = []string{}
	}
	now := time.Now()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"iat":   now.Add(-time.Minute).Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"roles": roles,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

type fixture struct {
	svc     *Service
	sender  *mocks.MockSender
	manager *auth.Manager
	store   *metadata.MemoryRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	store := metadata.NewMemoryRepository()
	manager := auth.NewManager(store, logging.Nop())

	return &fixture{
		svc:     NewService(sender, manager, logging.Nop()),
		sender:  sender,
		manager: manager,
		store:   store,
	}
}

// login starts a real session for sub and returns it.
func (f *fixture) login(t *testing.T, sub string) auth.Session {
	t.Helper()
	res := f.manager.Authenticate(context.Background(), mintToken(t, sub))
	require.True(t, res.IsSuccess(), res.Error())
	return res.Value()
}

func parseJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func okJSON(t *testing.T, s string) transport.Response {
	t.Helper()
	return transport.JSONResponse(200, parseJSON(t, s))
}

func unauthorized(t *testing.T, reason string) transport.Response {
	t.Helper()
	return transport.JSONResponse(401, parseJSON(t, fmt.Sprintf(
		`{"status":401,"response":"unauthorized","reason":%q}`, reason)))
}

func tokenJSON(t *testing.T, token string) transport.Response {
	t.Helper()
	return okJSON(t, fmt.Sprintf(`{"status":200,"response":"ok","token":%q}`, token))
}

// request matches a transport.Request by method, URL and bearer token.
type request struct {
	method, url, token string
}

func (m request) Matches(x any) bool {
	r, ok := x.(transport.Request)
	return ok && r.Method == m.method && r.URL == m.url && r.Token == m.token
}

func (m request) String() string {
	return fmt.Sprintf("%s %s (token %q)", m.method, m.url, m.token)
}

const bookJSON = `{"id":"b1","title":"Dune","size":2048,"metadata":{"author":"Frank Herbert"}}`

var dune = Book{ID: "b1", Title: "Dune", Size: 2048, Metadata: map[string]string{"author": "Frank Herbert"}}
