// Package metadata provides the client's local key/value store. The session
// manager persists its state here; the backend is chosen by configuration:
// SQLite (default), Redis, or an in-memory map for tests.
package metadata

import (
	"context"
	"errors"
)

// ErrUnknownBackend is returned by client.OpenStore for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown metadata backend")

// Repository is a string-keyed byte store. Get returns (nil, nil) when the key
// does not exist.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all values or none of them.
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
