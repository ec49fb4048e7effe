package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zotprof/backend/internal/models"
)

const keyPrefix = "zotprof:session:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(cfg RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	return &RedisStore{client: client, ttl: ttlOrDefault(cfg.TTL)}
}

func (r *RedisStore) Get(ctx context.Context, id string) (models.ConversationState, error) {
	raw, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ConversationState{}, ErrNotFound
	}
	if err != nil {
		return models.ConversationState{}, fmt.Errorf("redis get session: %w", err)
	}
	var state models.ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return models.ConversationState{}, fmt.Errorf("decode session: %w", err)
	}
	return state, nil
}

// Save writes the state and refreshes its TTL.
func (r *RedisStore) Save(ctx context.Context, state models.ConversationState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+state.SessionID, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Kind() string { return "redis" }

func (r *RedisStore) Close() error {
	return r.client.Close()
}
