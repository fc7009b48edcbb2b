// internal/recovery/selector_test.go
package recovery

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creative-pipeline/internal/common/logger"
	"creative-pipeline/internal/learning"
	"creative-pipeline/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestSelector(t *testing.T, store learning.Store) *Selector {
	s := NewSelector(store, logger.NewTestLogger(t))
	s.seed = func() int64 { return 424242 }
	return s
}

func failedValidation(issues ...models.Issue) *models.ValidationResult {
	return &models.ValidationResult{CombinedScore: 0.6, Passed: false, Issues: issues}
}

func baseParams() models.Parameters {
	return models.Parameters{
		Model:       "ideogram-v2",
		Temperature: 0.7,
		TopK:        40,
		TopP:        0.9,
		Width:       1200,
		Height:      628,
	}
}

// ==========================
// Strategy Ladder Tests
// ==========================

func TestSelector_FirstFailureChangesParameters(t *testing.T) {
	s := newTestSelector(t, learning.NewMemoryStore(20))

	st := s.Select(failedValidation(), models.ContentTypeRateUpdate, 1, nil, baseParams())

	assert.Equal(t, StrategyDifferentParams, st.Name)
	assert.Equal(t, 0.4, st.Parameters.Temperature)
	assert.Equal(t, 20, st.Parameters.TopK)
	assert.Equal(t, 0.8, st.Parameters.TopP)
	assert.Equal(t, int64(424242), st.Parameters.Seed)
	// The rest of the request's parameters carry over.
	assert.Equal(t, "ideogram-v2", st.Parameters.Model)
	assert.Equal(t, 1200, st.Parameters.Width)
	assert.False(t, st.UseFallback)
}

func TestSelector_FirstFailureSpellingCorrections(t *testing.T) {
	s := newTestSelector(t, learning.NewMemoryStore(20))

	st := s.Select(
		failedValidation(models.Issue{Code: models.IssueSpelling}),
		models.ContentTypeRateUpdate, 1,
		[]string{"mortgage", "interest"},
		baseParams(),
	)

	assert.Equal(t, models.FailureSpelling, st.FailureClass)
	require.Len(t, st.PromptAdditions, 1)
	assert.Contains(t, st.PromptAdditions[0], `"mortgage"`)
	assert.Contains(t, st.PromptAdditions[0], `"interest"`)
}

func TestSelector_FirstFailureLayoutHint(t *testing.T) {
	s := newTestSelector(t, learning.NewMemoryStore(20))

	st := s.Select(
		failedValidation(models.Issue{Code: models.IssueLayout}),
		models.ContentTypeGeneral, 1, nil, baseParams(),
	)

	assert.Equal(t, models.FailureLayout, st.FailureClass)
	require.Len(t, st.PromptAdditions, 1)
	assert.Contains(t, st.PromptAdditions[0], "simple, clean layout")
}

func TestSelector_SecondFailurePrefersProvenTemplate(t *testing.T) {
	store := learning.NewMemoryStore(20)
	// Record a recovery from the same failure class so a proven template
	// exists for it.
	require.NoError(t, store.RecordOutcome(context.Background(), models.ContentTypeRateUpdate,
		&models.Attempt{
			ModelID:        "ideogram-v2",
			Parameters:     models.Parameters{Model: "ideogram-v2", Temperature: 0.35, TopK: 25, TopP: 0.85},
			RecoveredClass: models.FailureGeneralQuality,
		},
		&models.ValidationResult{CombinedScore: 0.94, Passed: true}))

	s := newTestSelector(t, store)
	st := s.Select(failedValidation(), models.ContentTypeRateUpdate, 2, nil, baseParams())

	assert.Equal(t, StrategyProvenTemplate, st.Name)
	assert.Equal(t, 0.35, st.Parameters.Temperature)
	assert.Equal(t, 25, st.Parameters.TopK)
}

func TestSelector_ProvenTemplateScopedToFailureClass(t *testing.T) {
	store := learning.NewMemoryStore(20)
	// A success that recovered a general-quality failure on this content
	// type must not be replayed for a spelling failure.
	require.NoError(t, store.RecordOutcome(context.Background(), models.ContentTypeRateUpdate,
		&models.Attempt{
			ModelID:        "ideogram-v2",
			Parameters:     models.Parameters{Model: "ideogram-v2", Temperature: 0.9, TopK: 50, TopP: 0.95},
			RecoveredClass: models.FailureGeneralQuality,
		},
		&models.ValidationResult{CombinedScore: 0.94, Passed: true}))

	s := newTestSelector(t, store)
	st := s.Select(
		failedValidation(models.Issue{Code: models.IssueSpelling}),
		models.ContentTypeRateUpdate, 2,
		[]string{"mortgage"},
		baseParams(),
	)

	assert.Equal(t, StrategyExtremeDeterminism, st.Name)
	assert.Equal(t, 0.05, st.Parameters.Temperature)
	assert.Equal(t, models.FailureSpelling, st.FailureClass)
}

func TestSelector_NilStoreSelectsWithoutLearnedBias(t *testing.T) {
	s := newTestSelector(t, nil)

	second := s.Select(failedValidation(), models.ContentTypeRateUpdate, 2, nil, baseParams())
	assert.Equal(t, StrategyExtremeDeterminism, second.Name)

	third := s.Select(failedValidation(), models.ContentTypeRateUpdate, 3, nil, baseParams())
	assert.Equal(t, StrategyAlternativeGenerator, third.Name)
	assert.True(t, third.UseFallback)
	assert.Equal(t, "ideogram-v2", third.Parameters.Model)
}

func TestSelector_SecondFailureWithoutHistoryGoesExtreme(t *testing.T) {
	s := newTestSelector(t, learning.NewMemoryStore(20))

	st := s.Select(
		failedValidation(models.Issue{Code: models.IssueSpelling}),
		models.ContentTypeRateUpdate, 2,
		[]string{"mortgage"},
		baseParams(),
	)

	assert.Equal(t, StrategyExtremeDeterminism, st.Name)
	assert.Equal(t, 0.05, st.Parameters.Temperature)
	assert.Equal(t, 10, st.Parameters.TopK)
	assert.Equal(t, 0.7, st.Parameters.TopP)
	assert.NotEmpty(t, st.NegativePrompts)

	require.Len(t, st.PromptAdditions, 2)
	assert.Contains(t, st.PromptAdditions[0], "M-O-R-T-G-A-G-E")
	assert.Contains(t, st.PromptAdditions[1], "mortgage mortgage mortgage")
}

func TestSelector_ThirdFailureSwitchesGenerator(t *testing.T) {
	s := newTestSelector(t, learning.NewMemoryStore(20))

	st := s.Select(failedValidation(), models.ContentTypeRateUpdate, 3, nil, baseParams())

	assert.Equal(t, StrategyAlternativeGenerator, st.Name)
	assert.True(t, st.UseFallback)
	assert.Equal(t, "deterministic-compositor", st.Parameters.Model)
	assert.Zero(t, st.Parameters.Temperature)

	// Further failures stay on the fallback rung.
	again := s.Select(failedValidation(), models.ContentTypeRateUpdate, 5, nil, baseParams())
	assert.Equal(t, StrategyAlternativeGenerator, again.Name)
}

// ==========================
// Prompt Correction Tests
// ==========================

func TestExplicitSpellings(t *testing.T) {
	assert.Empty(t, ExplicitSpellings(nil))
	assert.Equal(t,
		`Spell these words exactly as written: "mortgage", "interest".`,
		ExplicitSpellings([]string{"mortgage", "interest"}))
}

func TestLetterByLetterSpelling(t *testing.T) {
	assert.Empty(t, LetterByLetterSpelling(nil))
	got := LetterByLetterSpelling([]string{"loan"})
	assert.Equal(t, `CRITICAL SPELLING: "loan" is spelled L-O-A-N.`, got)
}

func TestRepeatCriticalWords(t *testing.T) {
	assert.Empty(t, RepeatCriticalWords(nil, 3))
	assert.Empty(t, RepeatCriticalWords([]string{"loan"}, 0))
	assert.Equal(t,
		"The exact words to render: loan loan loan.",
		RepeatCriticalWords([]string{"loan"}, 3))
}

func TestApplyToPrompt(t *testing.T) {
	st := &Strategy{
		Parameters:      models.Parameters{NegativePrompt: "blurry"},
		PromptAdditions: []string{"Spell it right.", ""},
		NegativePrompts: []string{"garbled text", "distorted letters"},
	}

	prompt, negative := ApplyToPrompt("  Rate banner  ", st)
	assert.Equal(t, "Rate banner\nSpell it right.", prompt)
	assert.Equal(t, "blurry, garbled text, distorted letters", negative)

	lines := strings.Split(prompt, "\n")
	assert.Len(t, lines, 2)
}

func TestApplyToPrompt_NoModifications(t *testing.T) {
	prompt, negative := ApplyToPrompt("Rate banner", &Strategy{})
	assert.Equal(t, "Rate banner", prompt)
	assert.Empty(t, negative)
}
