package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/timshannon/badgerhold/v4"
)

// BadgerStore keeps records in an embedded badger database.
type BadgerStore struct {
	store *badgerhold.Store
}

// BadgerDir returns the database directory under the data directory.
func BadgerDir(dataDir string) string {
	return filepath.Join(dataDir, "records")
}

// OpenBadger opens (or creates) the database in dir. An empty dir opens an
// in-memory database that is lost on Close.
func OpenBadger(dir string) (*BadgerStore, error) {
	options := badgerhold.DefaultOptions
	options.Logger = nil

	if dir == "" {
		options.InMemory = true
		options.Dir = ""
		options.ValueDir = ""
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		options.Dir = dir
		options.ValueDir = dir
	}

	s, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerStore{store: s}, nil
}

func (b *BadgerStore) Create(_ context.Context, rec *Record) error {
	if rec.ID == "" {
		return errors.New("record id is required")
	}
	if err := b.store.Insert(rec.ID, rec); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return ErrExists
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (b *BadgerStore) Get(_ context.Context, id string) (*Record, error) {
	var rec Record
	if err := b.store.Get(id, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	rec.ID = id
	return &rec, nil
}

func (b *BadgerStore) Delete(_ context.Context, id string) error {
	if err := b.store.Delete(id, &Record{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func (b *BadgerStore) CreatedBefore(_ context.Context, t time.Time) ([]string, error) {
	var recs []Record
	if err := b.store.Find(&recs, badgerhold.Where("CreatedAt").Lt(t)); err != nil {
		return nil, fmt.Errorf("find expired records: %w", err)
	}
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// Ping reports whether the database is still open.
func (b *BadgerStore) Ping(context.Context) error {
	if b.store.Badger().IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

func (b *BadgerStore) Close() error {
	return b.store.Close()
}
