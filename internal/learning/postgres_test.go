// internal/learning/postgres_test.go
package learning

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creative-pipeline/internal/common/logger"
	"creative-pipeline/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func setupPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db, 20, logger.NewTestLogger(t)), mock
}

// ==========================
// Write-Through Tests
// ==========================

func TestPostgresStore_RecordOutcomeWritesThrough(t *testing.T) {
	store, mock := setupPostgresStore(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO model_performance").
		WithArgs("sdxl", int64(1), int64(0), 0.92, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.RecordOutcome(ctx, models.ContentTypeGeneral, attemptWith("sdxl", 0.7), passingResult(0.92))
	require.NoError(t, err)

	// The memory tier was updated too.
	record, ok := store.ModelPerformance("sdxl")
	require.True(t, ok)
	assert.Equal(t, int64(1), record.SuccessCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordOutcomePersistenceFailureIsAbsorbed(t *testing.T) {
	store, mock := setupPostgresStore(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO model_performance").
		WillReturnError(assert.AnError)

	// A dead database must never fail the pipeline's learning path.
	err := store.RecordOutcome(ctx, models.ContentTypeGeneral, attemptWith("sdxl", 0.7), passingResult(0.92))
	assert.NoError(t, err)

	record, ok := store.ModelPerformance("sdxl")
	require.True(t, ok)
	assert.Equal(t, int64(1), record.SuccessCount)
}

// ==========================
// Startup Load Tests
// ==========================

func TestPostgresStore_LoadSeedsMemoryTier(t *testing.T) {
	store, mock := setupPostgresStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT model_id, success_count, failure_count, avg_quality, last_used_at FROM model_performance").
		WillReturnRows(sqlmock.NewRows([]string{"model_id", "success_count", "failure_count", "avg_quality", "last_used_at"}).
			AddRow("recraft-v3", int64(12), int64(3), 0.88, now).
			AddRow("sdxl", int64(4), int64(6), 0.61, now))

	mock.ExpectQuery("SELECT pattern_type, trigger_condition, impact, recommendation, frequency, avg_score, confidence, last_seen_at").
		WillReturnRows(sqlmock.NewRows([]string{"pattern_type", "trigger_condition", "impact", "recommendation", "frequency", "avg_score", "confidence", "last_seen_at"}).
			AddRow("low-detail", "edgeRatio < 0.08", string(models.ImpactNegative), "ask for more intricate detail", int64(8), 0.58, 0.4, now))

	require.NoError(t, store.Load(ctx))

	record, ok := store.ModelPerformance("recraft-v3")
	require.True(t, ok)
	assert.Equal(t, int64(12), record.SuccessCount)
	assert.Equal(t, int64(3), record.FailureCount)
	assert.InDelta(t, 0.88, record.AvgQuality, 1e-9)

	insights := store.Insights()
	require.Len(t, insights, 1)
	assert.Equal(t, "low-detail", insights[0].PatternType)
	assert.Equal(t, int64(8), insights[0].Frequency)
	assert.InDelta(t, 0.4, insights[0].Confidence, 1e-9)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadedHistoryBiasesRecommendations(t *testing.T) {
	store, mock := setupPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT model_id").
		WillReturnRows(sqlmock.NewRows([]string{"model_id", "success_count", "failure_count", "avg_quality", "last_used_at"}).
			AddRow("recraft-v3", int64(20), int64(1), 0.95, now).
			AddRow("ideogram-v2", int64(2), int64(18), 0.40, now))
	mock.ExpectQuery("SELECT pattern_type").
		WillReturnRows(sqlmock.NewRows([]string{"pattern_type", "trigger_condition", "impact", "recommendation", "frequency", "avg_score", "confidence", "last_seen_at"}))

	require.NoError(t, store.Load(context.Background()))

	rec := store.Recommend("text-rendering")
	require.NotNil(t, rec)
	assert.Equal(t, "recraft-v3", rec.Primary)
}

func TestPostgresStore_LoadPropagatesQueryFailure(t *testing.T) {
	store, mock := setupPostgresStore(t)

	mock.ExpectQuery("SELECT model_id").WillReturnError(assert.AnError)

	assert.Error(t, store.Load(context.Background()))
}

func TestPostgresStore_RecordPatternWritesThrough(t *testing.T) {
	store, mock := setupPostgresStore(t)
	ctx := context.Background()

	obs := PatternObservation{
		PatternType:      "low-color-variance",
		TriggerCondition: "colorVariance < 20",
		Impact:           models.ImpactNegative,
		Recommendation:   "request richer color palettes or gradients in the prompt",
	}

	mock.ExpectExec("INSERT INTO learned_patterns").
		WithArgs("low-color-variance", "colorVariance < 20", string(models.ImpactNegative),
			obs.Recommendation, int64(1), 0.6, 0.05, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.RecordPattern(ctx, obs, 0.6))

	insights := store.Insights()
	require.Len(t, insights, 1)
	assert.Equal(t, int64(1), insights[0].Frequency)

	assert.NoError(t, mock.ExpectationsWereMet())
}
