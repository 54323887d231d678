package auth

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/dmitrijs2005/bookshelf/internal/result"
)

// Keys under which the session is persisted.
const (
	KeySubject   = "auth.subject"
	KeyIssuedAt  = "auth.issued_at"
	KeyExpiresAt = "auth.expires_at"
	KeyRoles     = "auth.roles"
	KeyToken     = "auth.token"
)

var sessionKeys = []string{KeySubject, KeyIssuedAt, KeyExpiresAt, KeyRoles, KeyToken}

// Store is the key/value persistence port used for session state.
// Get returns (nil, nil) for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// batchStore is implemented by stores that can write several keys atomically.
type batchStore interface {
	SetMany(ctx context.Context, values map[string][]byte) error
}

// Event is published to subscribers after the session changes.
type Event string

const (
	EventLogin  Event = "login"
	EventLogout Event = "logout"
)

// Manager is the session state machine: anonymous or authenticated.
// State lives only in the Store; expiry is evaluated lazily on each read.
type Manager struct {
	store  Store
	logger logging.Logger
	now    func() time.Time

	mu     sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

type Option func(*Manager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store Store, logger logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
		subs:   make(map[int]func(Event)),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Authenticate parses token and, when valid, persists it as the current session.
// On failure the previous state is left untouched.
func (m *Manager) Authenticate(ctx context.Context, token string) result.Result[Session, string] {
	res := TryCreate(token, m.now())
	if res.IsError() {
		m.logger.Warn(ctx, "rejected token", "reason", res.Error())
		return result.Failure[Session](res.Error())
	}

	c := res.Value()
	values := map[string]string{
		KeySubject:   c.Subject,
		KeyIssuedAt:  c.IssuedAt.UTC().Format(time.RFC3339Nano),
		KeyExpiresAt: c.ExpiresAt.UTC().Format(time.RFC3339Nano),
		KeyRoles:     strings.Join(c.Roles, ","),
		KeyToken:     token,
	}
	if err := m.persist(ctx, values); err != nil {
		// A store without SetMany may be left half-written; clearing it
		// leaves the user anonymous rather than with a mixed session.
		m.logger.Error(ctx, "could not persist session", "error", err)
		m.clear(ctx)
		return result.Failuref[Session]("could not persist session: %v", err)
	}

	m.logger.Info(ctx, "session started", "subject", c.Subject, "roles", c.Roles, "expires_at", c.ExpiresAt)
	m.publish(EventLogin)
	return result.Success[Session, string](Session{Context: c, Token: token})
}

func (m *Manager) persist(ctx context.Context, values map[string]string) error {
	if b, ok := m.store.(batchStore); ok {
		raw := make(map[string][]byte, len(values))
		for k, v := range values {
			raw[k] = []byte(v)
		}
		return b.SetMany(ctx, raw)
	}

	for _, k := range sessionKeys {
		if err := m.store.Set(ctx, k, []byte(values[k])); err != nil {
			return fmt.Errorf("key %s: %w", k, err)
		}
	}
	return nil
}

// Logout clears the persisted session and notifies subscribers.
func (m *Manager) Logout(ctx context.Context) {
	m.clear(ctx)
	m.logger.Info(ctx, "session cleared")
	m.publish(EventLogout)
}

func (m *Manager) clear(ctx context.Context) {
	for _, k := range sessionKeys {
		if err := m.store.Delete(ctx, k); err != nil {
			m.logger.Warn(ctx, "could not delete session key", "key", k, "error", err)
		}
	}
}

// Context loads the current session context. Missing keys, store errors,
// unparsable dates and expired sessions all read as "no session".
func (m *Manager) Context(ctx context.Context) (Context, bool) {
	vals := make(map[string]string, 4)
	for _, k := range sessionKeys[:4] {
		v, err := m.store.Get(ctx, k)
		if err != nil {
			m.logger.Warn(ctx, "could not read session key", "key", k, "error", err)
			return Context{}, false
		}
		if v == nil {
			return Context{}, false
		}
		vals[k] = string(v)
	}

	issued, err := time.Parse(time.RFC3339Nano, vals[KeyIssuedAt])
	if err != nil {
		return Context{}, false
	}
	expires, err := time.Parse(time.RFC3339Nano, vals[KeyExpiresAt])
	if err != nil {
		return Context{}, false
	}

	c := Context{
		Subject:   vals[KeySubject],
		IssuedAt:  issued,
		ExpiresAt: expires,
		Roles:     []string{},
	}
	if vals[KeyRoles] != "" {
		c.Roles = strings.Split(vals[KeyRoles], ",")
	}
	if c.IsExpiredAt(m.now()) {
		return Context{}, false
	}
	return c, true
}

// Session loads the current context together with its bearer token. A
// session whose token is missing or unreadable cannot authorize a request
// and reads as no session.
func (m *Manager) Session(ctx context.Context) (Session, bool) {
	c, ok := m.Context(ctx)
	if !ok {
		return Session{}, false
	}
	tok, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		m.logger.Warn(ctx, "could not read session token", "error", err)
		return Session{}, false
	}
	if len(tok) == 0 {
		m.logger.Warn(ctx, "session has no token", "subject", c.Subject)
		return Session{}, false
	}
	return Session{Context: c, Token: string(tok)}, true
}

func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	_, ok := m.Context(ctx)
	return ok
}

// Allowed evaluates r against the current session; no session means anonymous.
func (m *Manager) Allowed(ctx context.Context, r Requirement) bool {
	c, ok := m.Context(ctx)
	return r.Allows(c, ok)
}

// Subscribe registers fn to be called synchronously after every Authenticate
// and Logout. The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) publish(e Event) {
	m.mu.Lock()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	fns := make([]func(Event), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
