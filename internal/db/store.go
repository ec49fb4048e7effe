package db

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("row not found")

//go:embed schema.sql
var schemaSQL string

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// EnsureSchema creates the tables the service owns. It is idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schemaSQL)
	return err
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type SessionRow struct {
	ID        string
	Stage     string
	State     []byte
	UpdatedAt time.Time
	ExpiresAt time.Time
}

func (s *Store) UpsertSession(ctx context.Context, row SessionRow) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO chat_sessions (id, stage, state, updated_at, expires_at)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (id) DO UPDATE SET
				stage = EXCLUDED.stage,
				state = EXCLUDED.state,
				updated_at = EXCLUDED.updated_at,
				expires_at = EXCLUDED.expires_at
		`, row.ID, row.Stage, row.State, row.UpdatedAt, row.ExpiresAt)
		if err != nil {
			return err
		}
		// Expired sessions are dropped on every write.
		_, err = tx.Exec(ctx, `DELETE FROM chat_sessions WHERE expires_at < $1`, row.UpdatedAt)
		return err
	})
}

// GetSession returns ErrNotFound for missing and expired sessions alike.
func (s *Store) GetSession(ctx context.Context, id string, now time.Time) (SessionRow, error) {
	var row SessionRow
	err := s.Pool.QueryRow(ctx, `
		SELECT id, stage, state, updated_at, expires_at
		FROM chat_sessions
		WHERE id = $1 AND expires_at >= $2
	`, id, now).Scan(&row.ID, &row.Stage, &row.State, &row.UpdatedAt, &row.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SessionRow{}, ErrNotFound
	}
	return row, err
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
	return err
}
