// internal/learning/postgres.go
package learning

import (
	"context"
	"database/sql"

	"creative-pipeline/internal/common/errors"
	"creative-pipeline/internal/common/logger"
	"creative-pipeline/internal/models"
)

// PostgresStore is a write-through Store: reads are served from the
// embedded memory tier, seeded from Postgres via Load at startup, while
// model performance and learned patterns are mirrored to Postgres so bias
// survives restarts. A crash between the two tiers can leave them
// inconsistent; acceptable because the data is advisory.
//
//	CREATE TABLE model_performance (
//	    model_id      TEXT PRIMARY KEY,
//	    success_count BIGINT NOT NULL,
//	    failure_count BIGINT NOT NULL,
//	    avg_quality   DOUBLE PRECISION NOT NULL,
//	    last_used_at  TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE learned_patterns (
//	    pattern_type      TEXT NOT NULL,
//	    trigger_condition TEXT NOT NULL,
//	    impact            TEXT NOT NULL,
//	    recommendation    TEXT NOT NULL,
//	    frequency         BIGINT NOT NULL,
//	    avg_score         DOUBLE PRECISION NOT NULL,
//	    confidence        DOUBLE PRECISION NOT NULL,
//	    last_seen_at      TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (pattern_type, trigger_condition)
//	);
type PostgresStore struct {
	*MemoryStore
	db     *sql.DB
	logger logger.Logger
}

// NewPostgresStore wraps a memory store with Postgres persistence. Call
// Load before serving traffic so prior bias is available after a restart.
func NewPostgresStore(db *sql.DB, saturation int, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		MemoryStore: NewMemoryStore(saturation),
		db:          db,
		logger:      log,
	}
}

// Load seeds the memory tier from the persisted tables. Per-class failure
// counts and proven templates are not persisted and start empty.
func (s *PostgresStore) Load(ctx context.Context) error {
	if err := s.loadPerformance(ctx); err != nil {
		return err
	}
	return s.loadPatterns(ctx)
}

func (s *PostgresStore) loadPerformance(ctx context.Context) error {
	const query = `SELECT model_id, success_count, failure_count, avg_quality, last_used_at FROM model_performance`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		record := &models.ModelPerformanceRecord{
			FailureCounts: make(map[models.FailureClass]int64),
		}
		if err := rows.Scan(&record.ModelID, &record.SuccessCount, &record.FailureCount, &record.AvgQuality, &record.LastUsedAt); err != nil {
			return err
		}
		s.performance[record.ModelID] = record
	}
	return rows.Err()
}

func (s *PostgresStore) loadPatterns(ctx context.Context) error {
	const query = `
		SELECT pattern_type, trigger_condition, impact, recommendation, frequency, avg_score, confidence, last_seen_at
		FROM learned_patterns`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var pattern models.LearnedPattern
		var impact string
		if err := rows.Scan(&pattern.PatternType, &pattern.TriggerCondition, &impact, &pattern.Recommendation,
			&pattern.Frequency, &pattern.AvgScoreWhenPresent, &pattern.Confidence, &pattern.LastSeenAt); err != nil {
			return err
		}
		pattern.Impact = models.PatternImpact(impact)
		pattern.FirstSeenAt = pattern.LastSeenAt
		s.patterns[pattern.PatternType+"|"+pattern.TriggerCondition] = &pattern
	}
	return rows.Err()
}

func (s *PostgresStore) RecordOutcome(ctx context.Context, contentType models.ContentType, attempt *models.Attempt, result *models.ValidationResult) error {
	if err := s.MemoryStore.RecordOutcome(ctx, contentType, attempt, result); err != nil {
		return err
	}

	record, ok := s.ModelPerformance(attempt.ModelID)
	if !ok {
		return nil
	}

	const query = `
		INSERT INTO model_performance (model_id, success_count, failure_count, avg_quality, last_used_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (model_id) DO UPDATE SET
			success_count = EXCLUDED.success_count,
			failure_count = EXCLUDED.failure_count,
			avg_quality = EXCLUDED.avg_quality,
			last_used_at = EXCLUDED.last_used_at`

	if _, err := s.db.ExecContext(ctx, query,
		record.ModelID,
		record.SuccessCount,
		record.FailureCount,
		record.AvgQuality,
		record.LastUsedAt,
	); err != nil {
		stdErr := errors.NewPersistenceFailedError("model_performance upsert", err)
		s.logger.Warn(stdErr.Message, map[string]interface{}{
			"modelId": record.ModelID,
			"code":    string(stdErr.Code),
			"details": stdErr.Details,
		})
	}
	return nil
}

func (s *PostgresStore) RecordPattern(ctx context.Context, obs PatternObservation, finalScore float64) error {
	if err := s.MemoryStore.RecordPattern(ctx, obs, finalScore); err != nil {
		return err
	}

	var stored *models.LearnedPattern
	for _, p := range s.Insights() {
		if p.PatternType == obs.PatternType && p.TriggerCondition == obs.TriggerCondition {
			stored = &p
			break
		}
	}
	if stored == nil {
		return nil
	}

	const query = `
		INSERT INTO learned_patterns
			(pattern_type, trigger_condition, impact, recommendation, frequency, avg_score, confidence, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (pattern_type, trigger_condition) DO UPDATE SET
			frequency = EXCLUDED.frequency,
			avg_score = EXCLUDED.avg_score,
			confidence = EXCLUDED.confidence,
			last_seen_at = EXCLUDED.last_seen_at`

	if _, err := s.db.ExecContext(ctx, query,
		stored.PatternType,
		stored.TriggerCondition,
		string(stored.Impact),
		stored.Recommendation,
		stored.Frequency,
		stored.AvgScoreWhenPresent,
		stored.Confidence,
		stored.LastSeenAt,
	); err != nil {
		stdErr := errors.NewPersistenceFailedError("learned_patterns upsert", err)
		s.logger.Warn(stdErr.Message, map[string]interface{}{
			"patternType": stored.PatternType,
			"code":        string(stdErr.Code),
			"details":     stdErr.Details,
		})
	}
	return nil
}
