// Package store persists conversion records.
//
// Two backends implement Store: an embedded on-disk store built on
// badgerhold, and a PostgreSQL store built on pgx. Both keep the full row
// model of a record; previews are cut by the caller.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Macora01/pdftoexcl/internal/config"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrExists is returned when creating a record whose id is taken.
	ErrExists = errors.New("record already exists")
)

// Status is the lifecycle state of a record.
type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
)

// Record is one converted document.
type Record struct {
	ID               string `badgerhold:"key"`
	OriginalFilename string
	Status           Status
	Rows             [][]string
	TotalRows        int
	TotalPages       int
	CreatedAt        time.Time
}

// Store persists records by id. Implementations are safe for concurrent use.
type Store interface {
	// Create persists a new record; ErrExists if the id is taken.
	Create(ctx context.Context, rec *Record) error

	// Get returns the record with id or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// Delete removes the record with id. Deleting a missing id succeeds.
	Delete(ctx context.Context, id string) error

	// CreatedBefore lists the ids of records created before t.
	CreatedBefore(ctx context.Context, t time.Time) ([]string, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Open builds the backend selected by cfg.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.BackendPostgres:
		return OpenPostgres(ctx, cfg)
	case config.BackendBadger, "":
		return OpenBadger(BadgerDir(cfg.DataDir))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
