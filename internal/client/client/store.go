package client

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/bookshelf/internal/client/config"
	"github.com/dmitrijs2005/bookshelf/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/bookshelf/internal/filex"

	_ "modernc.org/sqlite"
)

// OpenStore builds the metadata repository selected by cfg.StoreBackend.
// The returned close function releases the underlying connection.
func OpenStore(ctx context.Context, cfg *config.Config) (metadata.Repository, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite, "":
		path, err := filex.EnsureParentDir(cfg.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("store path: %w", err)
		}
		db, err := InitDatabase(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing database: %w", err)
		}
		return metadata.NewSQLiteRepository(db), db.Close, nil

	case config.BackendRedis:
		rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx).Err(); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return metadata.NewRedisRepository(rc, cfg.RedisPrefix), rc.Close, nil

	case config.BackendMemory:
		return metadata.NewMemoryRepository(), func() error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", metadata.ErrUnknownBackend, cfg.StoreBackend)
}
