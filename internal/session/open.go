package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zotprof/backend/internal/db"
)

type Options struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string
	TTL           time.Duration
	Logger        zerolog.Logger
}

// Open picks a backend by configuration: Redis first, then Postgres, then
// an in-process store. The returned func releases backend resources.
func Open(ctx context.Context, opts Options) (Store, func(), error) {
	switch {
	case opts.RedisAddr != "":
		store := NewRedisStore(RedisConfig{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			TTL:      opts.TTL,
		})
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		opts.Logger.Info().Str("addr", opts.RedisAddr).Msg("session store: redis")
		return store, func() { _ = store.Close() }, nil
	case opts.DatabaseURL != "":
		pg, err := db.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		opts.Logger.Info().Msg("session store: postgres")
		return NewPostgresStore(pg, opts.TTL), pg.Close, nil
	default:
		opts.Logger.Warn().Msg("session store: memory; sessions are lost on restart")
		return NewMemoryStore(0, opts.TTL), func() {}, nil
	}
}
