// internal/cache/postgres.go
package cache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"creative-pipeline/internal/models"
)

// PostgresStore persists cache entries in the cache_entries table.
//
//	CREATE TABLE cache_entries (
//	    fingerprint      TEXT PRIMARY KEY,
//	    output_ref       TEXT NOT NULL,
//	    model_id         TEXT NOT NULL,
//	    quality_score    DOUBLE PRECISION NOT NULL,
//	    hit_count        BIGINT NOT NULL DEFAULT 0,
//	    cost_saved       DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    created_at       TIMESTAMPTZ NOT NULL,
//	    expires_at       TIMESTAMPTZ NOT NULL,
//	    last_accessed_at TIMESTAMPTZ
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed durable cache tier.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, fingerprint string) (*models.CacheEntry, error) {
	const query = `
		SELECT output_ref, model_id, quality_score, hit_count, cost_saved,
		       created_at, expires_at, last_accessed_at
		FROM cache_entries
		WHERE fingerprint = $1`

	entry := &models.CacheEntry{Fingerprint: fingerprint}
	var lastAccessed sql.NullTime

	err := s.db.QueryRowContext(ctx, query, fingerprint).Scan(
		&entry.OutputRef,
		&entry.ModelID,
		&entry.QualityScore,
		&entry.HitCount,
		&entry.CostSaved,
		&entry.CreatedAt,
		&entry.ExpiresAt,
		&lastAccessed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if lastAccessed.Valid {
		entry.LastAccessedAt = lastAccessed.Time
	}
	return entry, nil
}

func (s *PostgresStore) Put(ctx context.Context, entry *models.CacheEntry) error {
	const query = `
		INSERT INTO cache_entries
			(fingerprint, output_ref, model_id, quality_score, hit_count, cost_saved, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (fingerprint) DO UPDATE SET
			output_ref = EXCLUDED.output_ref,
			model_id = EXCLUDED.model_id,
			quality_score = EXCLUDED.quality_score,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`

	_, err := s.db.ExecContext(ctx, query,
		entry.Fingerprint,
		entry.OutputRef,
		entry.ModelID,
		entry.QualityScore,
		entry.HitCount,
		entry.CostSaved,
		entry.CreatedAt,
		entry.ExpiresAt,
	)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, fingerprint string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE fingerprint = $1`, fingerprint)
	return err
}

func (s *PostgresStore) RecordHit(ctx context.Context, entry *models.CacheEntry) error {
	const query = `
		UPDATE cache_entries
		SET hit_count = $2, cost_saved = $3, last_accessed_at = $4
		WHERE fingerprint = $1`

	_, err := s.db.ExecContext(ctx, query,
		entry.Fingerprint,
		entry.HitCount,
		entry.CostSaved,
		entry.LastAccessedAt,
	)
	return err
}

func (s *PostgresStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
