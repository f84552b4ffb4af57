package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Macora01/pdftoexcl/internal/config"
)

// DBTX is the subset of pgx used by PostgresStore.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
    id                TEXT PRIMARY KEY,
    original_filename TEXT        NOT NULL,
    status            TEXT        NOT NULL,
    rows              JSONB       NOT NULL,
    total_rows        INTEGER     NOT NULL,
    total_pages       INTEGER     NOT NULL,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS conversions_created_at_idx ON conversions (created_at);
`

// uniqueViolation is the SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// PostgresStore keeps records in a PostgreSQL table, rows as JSONB.
type PostgresStore struct {
	db   DBTX
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool configured from cfg and ensures the schema.
func OpenPostgres(ctx context.Context, cfg config.StorageConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: pool, pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres wraps an existing connection or transaction. Close is a no-op
// for stores built this way.
func NewPostgres(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the conversions table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (p *PostgresStore) Create(ctx context.Context, rec *Record) error {
	rows := rec.Rows
	if rows == nil {
		rows = [][]string{}
	}
	_, err := p.db.Exec(ctx, `
		INSERT INTO conversions (id, original_filename, status, rows, total_rows, total_pages, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.OriginalFilename, string(rec.Status), rows, rec.TotalRows, rec.TotalPages, rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrExists
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	var (
		rec    Record
		status string
	)
	err := p.db.QueryRow(ctx, `
		SELECT id, original_filename, status, rows, total_rows, total_pages, created_at
		FROM conversions WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.OriginalFilename, &status, &rec.Rows, &rec.TotalRows, &rec.TotalPages, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	rec.Status = Status(status)
	return &rec, nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM conversions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func (p *PostgresStore) CreatedBefore(ctx context.Context, t time.Time) ([]string, error) {
	rows, err := p.db.Query(ctx, `SELECT id FROM conversions WHERE created_at < $1 ORDER BY created_at`, t)
	if err != nil {
		return nil, fmt.Errorf("find expired records: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan expired records: %w", err)
	}
	return ids, nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	if p.pool != nil {
		return p.pool.Ping(ctx)
	}
	var one int
	return p.db.QueryRow(ctx, `SELECT 1`).Scan(&one)
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
