package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quote-drafter/internal/core"
	"quote-drafter/internal/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const documentID = "main"

// PostgresStore keeps the document as a single JSONB row and drafts in their
// own table. The row's version column carries the optimistic lock.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, log zerolog.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, log: log.With().Str("store", "postgres").Logger()}
}

func (s *PostgresStore) Load(ctx context.Context) (*core.Database, error) {
	var (
		version int64
		body    []byte
	)
	err := s.pool.QueryRow(ctx, `SELECT version, body FROM documents WHERE id = $1`, documentID).Scan(&version, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.EmptyDatabase(), nil
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("document unreadable, starting empty")
		return core.EmptyDatabase(), nil
	}
	db := decodeDocument(body, s.log)
	db.Version = version
	return db, nil
}

func (s *PostgresStore) Save(ctx context.Context, db *core.Database) error {
	next := *db
	next.Version++
	next.Normalize()
	body, err := json.Marshal(&next)
	if err != nil {
		metrics.Default().StoreWriteFailed("postgres")
		return &core.StorageWriteError{Op: "encode", Err: err}
	}

	var sql string
	if db.Version == 0 {
		sql = `INSERT INTO documents (id, version, body) VALUES ($1, $2, $3)
		       ON CONFLICT (id) DO NOTHING`
	} else {
		sql = `UPDATE documents SET body = $3, version = $2, updated_at = now()
		       WHERE id = $1 AND version = $4`
	}
	args := []any{documentID, next.Version, body}
	if db.Version != 0 {
		args = append(args, db.Version)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		metrics.Default().StoreWriteFailed("postgres")
		return &core.StorageWriteError{Op: "save document", Err: err}
	}
	if tag.RowsAffected() == 0 {
		metrics.Default().StoreConflict("postgres")
		return fmt.Errorf("save document at version %d: %w", db.Version, core.ErrConflict)
	}
	db.Version = next.Version
	return nil
}

func (s *PostgresStore) LoadDraft(ctx context.Context, key string) ([]byte, error) {
	var body string
	err := s.pool.QueryRow(ctx, `SELECT body FROM drafts WHERE key = $1`, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("draft %q: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load draft %q: %w", key, err)
	}
	return []byte(body), nil
}

func (s *PostgresStore) SaveDraft(ctx context.Context, key string, data []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO drafts (key, body) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		key, string(data))
	if err != nil {
		metrics.Default().StoreWriteFailed("postgres")
		return &core.StorageWriteError{Op: "save draft " + key, Err: err}
	}
	return nil
}

func (s *PostgresStore) DeleteDraft(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM drafts WHERE key = $1`, key); err != nil {
		return &core.StorageWriteError{Op: "delete draft " + key, Err: err}
	}
	return nil
}
