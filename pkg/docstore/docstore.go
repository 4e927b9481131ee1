// Package docstore holds the raw JSON document that backs the task
// collection. A Backend only moves bytes; parsing and shape checks happen in
// the task package.
package docstore

import (
	"context"
	"errors"
	"fmt"
)

// Driver identifies a concrete backend implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"       // local file (default)
	DriverMemory     Driver = "memory"   // in-process (tests)
	DriverS3         Driver = "s3"       // S3 / MinIO object
	DriverSQLite     Driver = "sqlite"   // row in a SQLite table
	DriverPostgres   Driver = "postgres" // row in a Postgres table
)

// Drivers lists every supported driver.
var Drivers = []Driver{DriverFilesystem, DriverMemory, DriverS3, DriverSQLite, DriverPostgres}

// ErrNotFound is returned (possibly wrapped) when the document does not exist.
var ErrNotFound = errors.New("docstore: document not found")

// EmptyDocument is the seed written by Ensure.
var EmptyDocument = []byte("{\n  \"tasks\": []\n}\n")

// Backend reads and replaces a single JSON document.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Driver() Driver
}

// Ensure writes EmptyDocument if, and only if, the backend reports that the
// document does not exist. It returns true when it seeded the document.
func Ensure(ctx context.Context, b Backend) (bool, error) {
	_, err := b.Read(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err := b.Write(ctx, EmptyDocument); err != nil {
		return false, fmt.Errorf("seed document: %w", err)
	}
	return true, nil
}
