package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a PostgreSQL-backed document store. The document lives in one
// JSONB row keyed by name.
type PgStore struct {
	pool *pgxpool.Pool
	name string
	own  bool
}

// NewPgStore creates a PgStore on an existing pool.
func NewPgStore(pool *pgxpool.Pool, name string) *PgStore {
	if name == "" {
		name = "tasks"
	}
	return &PgStore{pool: pool, name: name}
}

// EnsureTable creates the task_documents table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS task_documents (
			name       TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (s *PgStore) Driver() Driver { return DriverPostgres }

func (s *PgStore) Read(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM task_documents WHERE name = $1`, s.name).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", s.name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select document %s: %w", s.name, err)
	}
	return payload, nil
}

func (s *PgStore) Write(ctx context.Context, data []byte) error {
	now := time.Now().Truncate(time.Microsecond)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO task_documents (name, payload, updated_at)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		s.name, string(data), now)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", s.name, err)
	}
	return nil
}

// Close closes the pool when the store opened it itself.
func (s *PgStore) Close() error {
	if s.own {
		s.pool.Close()
	}
	return nil
}
