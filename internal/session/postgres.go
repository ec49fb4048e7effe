package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zotprof/backend/internal/db"
	"github.com/zotprof/backend/internal/models"
)

type PostgresStore struct {
	DB  *db.Store
	TTL time.Duration
	Now func() time.Time
}

func NewPostgresStore(store *db.Store, ttl time.Duration) *PostgresStore {
	return &PostgresStore{DB: store, TTL: ttlOrDefault(ttl), Now: time.Now}
}

func (p *PostgresStore) now() time.Time {
	if p.Now == nil {
		return time.Now().UTC()
	}
	return p.Now().UTC()
}

func (p *PostgresStore) Get(ctx context.Context, id string) (models.ConversationState, error) {
	row, err := p.DB.GetSession(ctx, id, p.now())
	if errors.Is(err, db.ErrNotFound) {
		return models.ConversationState{}, ErrNotFound
	}
	if err != nil {
		return models.ConversationState{}, fmt.Errorf("load session: %w", err)
	}
	var state models.ConversationState
	if err := json.Unmarshal(row.State, &state); err != nil {
		return models.ConversationState{}, fmt.Errorf("decode session: %w", err)
	}
	return state, nil
}

func (p *PostgresStore) Save(ctx context.Context, state models.ConversationState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	now := p.now()
	err = p.DB.UpsertSession(ctx, db.SessionRow{
		ID:        state.SessionID,
		Stage:     string(state.Stage),
		State:     raw,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttlOrDefault(p.TTL)),
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	return p.DB.DeleteSession(ctx, id)
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.DB.Ping(ctx)
}

func (p *PostgresStore) Kind() string { return "postgres" }
