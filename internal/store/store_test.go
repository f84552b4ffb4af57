package store

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Macora01/pdftoexcl/internal/config"
)

func newRecord(createdAt time.Time) *Record {
	return &Record{
		ID:               uuid.NewString(),
		OriginalFilename: "invoice.pdf",
		Status:           StatusReady,
		Rows:             [][]string{{"a", "b"}, {"c", ""}},
		TotalRows:        2,
		TotalPages:       1,
		CreatedAt:        createdAt.UTC().Truncate(time.Microsecond),
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		rec := newRecord(time.Now())
		require.NoError(t, s.Create(ctx, rec))

		got, err := s.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, rec.OriginalFilename, got.OriginalFilename)
		assert.Equal(t, StatusReady, got.Status)
		assert.Equal(t, rec.Rows, got.Rows)
		assert.Equal(t, 2, got.TotalRows)
		assert.Equal(t, 1, got.TotalPages)
		assert.True(t, rec.CreatedAt.Equal(got.CreatedAt), "CreatedAt %v != %v", got.CreatedAt, rec.CreatedAt)
	})

	t.Run("duplicate id", func(t *testing.T) {
		rec := newRecord(time.Now())
		require.NoError(t, s.Create(ctx, rec))
		assert.ErrorIs(t, s.Create(ctx, rec), ErrExists)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := s.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		rec := newRecord(time.Now())
		require.NoError(t, s.Create(ctx, rec))

		require.NoError(t, s.Delete(ctx, rec.ID))
		require.NoError(t, s.Delete(ctx, rec.ID))

		_, err := s.Get(ctx, rec.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("created before", func(t *testing.T) {
		old := newRecord(time.Now().Add(-48 * time.Hour))
		fresh := newRecord(time.Now())
		require.NoError(t, s.Create(ctx, old))
		require.NoError(t, s.Create(ctx, fresh))

		ids, err := s.CreatedBefore(ctx, time.Now().Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Contains(t, ids, old.ID)
		assert.NotContains(t, ids, fresh.ID)
	})

	t.Run("concurrent access", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rec := newRecord(time.Now())
				assert.NoError(t, s.Create(ctx, rec))
				_, err := s.Get(ctx, rec.ID)
				assert.NoError(t, err)
				assert.NoError(t, s.Delete(ctx, rec.ID))
			}()
		}
		wg.Wait()
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestBadgerStore_InMemory(t *testing.T) {
	s, err := OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadger(dir)
	require.NoError(t, err)
	rec := newRecord(time.Now())
	require.NoError(t, s.Create(ctx, rec))
	require.NoError(t, s.Close())

	s, err = OpenBadger(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Rows, got.Rows)
}

func TestOpen_Badger(t *testing.T) {
	s, err := Open(context.Background(), config.StorageConfig{
		Backend: config.BackendBadger,
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.IsType(t, &BadgerStore{}, s)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Backend: "mongo"})
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	s, err := OpenPostgres(context.Background(), config.StorageConfig{
		DatabaseURL: url,
		MaxConns:    4,
		MinConns:    1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}
