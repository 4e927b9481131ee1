package docstore

import (
	"context"
	"fmt"

	"tasks-api/internal/db"
)

// Options selects and configures a backend for Open.
type Options struct {
	Driver     Driver
	Path       string // fs
	SQLitePath string // sqlite
	DSN        string // postgres
	Document   string // sqlite, postgres: row name
	S3         S3Config
}

// Open constructs the backend named by opts.Driver. Backends holding
// connections also implement io.Closer.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case "", DriverFilesystem:
		return NewFileStore(opts.Path), nil
	case DriverMemory:
		return NewMemoryStore(nil), nil
	case DriverS3:
		s, err := NewS3Store(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverSQLite:
		s, err := NewSQLiteStore(ctx, opts.SQLitePath, opts.Document)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		pool, err := db.Connect(ctx, opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		s := NewPgStore(pool, opts.Document)
		s.own = true
		if err := s.EnsureTable(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure task_documents table: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown docstore driver %q", opts.Driver)
	}
}
