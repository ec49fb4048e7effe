// Package session persists chat conversation state between turns.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/zotprof/backend/internal/models"
)

var ErrNotFound = errors.New("session not found")

const DefaultTTL = 24 * time.Hour

// Store keeps one ConversationState per session id. Implementations are
// safe for concurrent use; a single session is assumed to have one writer.
type Store interface {
	Get(ctx context.Context, id string) (models.ConversationState, error)
	Save(ctx context.Context, state models.ConversationState) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Kind() string
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
