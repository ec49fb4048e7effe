package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/zotprof/backend/internal/models"
)

const defaultMemorySize = 4096

type MemoryStore struct {
	cache *expirable.LRU[string, models.ConversationState]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = defaultMemorySize
	}
	return &MemoryStore{
		cache: expirable.NewLRU[string, models.ConversationState](size, nil, ttlOrDefault(ttl)),
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (models.ConversationState, error) {
	state, ok := m.cache.Get(id)
	if !ok {
		return models.ConversationState{}, ErrNotFound
	}
	return state.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, state models.ConversationState) error {
	m.cache.Add(state.SessionID, state.Clone())
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Remove(id)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Kind() string { return "memory" }
