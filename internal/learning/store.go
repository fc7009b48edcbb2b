// internal/learning/store.go
package learning

import (
	"context"
	"sort"
	"sync"
	"time"

	"creative-pipeline/internal/models"
)

// Store is the feedback memory the scorer and recovery selector consult.
// All of its data is advisory ranking bias, never correctness-critical, so
// implementations absorb persistence failures instead of propagating them.
type Store interface {
	RecordOutcome(ctx context.Context, contentType models.ContentType, attempt *models.Attempt, result *models.ValidationResult) error
	RecordPattern(ctx context.Context, obs PatternObservation, finalScore float64) error
	ModelPerformance(modelID string) (*models.ModelPerformanceRecord, bool)
	ProvenTemplate(class models.FailureClass, contentType models.ContentType) (*models.Parameters, bool)
	Recommend(capability string) *Recommendation
	Insights() []models.LearnedPattern
}

// MemoryStore is the in-process Store. It is explicitly constructed and
// injected; no process-wide singleton maps.
type MemoryStore struct {
	mu sync.RWMutex

	performance map[string]*models.ModelPerformanceRecord
	patterns    map[string]*models.LearnedPattern
	templates   map[templateKey]*provenTemplate

	catalog    []ModelSpec
	saturation int
	clock      func() time.Time
}

// templateKey scopes proven templates to the failure class a strategy
// recovered from: what rescued a spelling failure says nothing about
// layout failures.
type templateKey struct {
	class       models.FailureClass
	contentType models.ContentType
}

type provenTemplate struct {
	params    models.Parameters
	successes int
	bestScore float64
}

// NewMemoryStore builds an in-memory feedback store. saturation is the
// observation count at which pattern confidence reaches 1.0.
func NewMemoryStore(saturation int) *MemoryStore {
	if saturation < 1 {
		saturation = defaultConfidenceSaturation
	}
	return &MemoryStore{
		performance: make(map[string]*models.ModelPerformanceRecord),
		patterns:    make(map[string]*models.LearnedPattern),
		templates:   make(map[templateKey]*provenTemplate),
		catalog:     DefaultCatalog(),
		saturation:  saturation,
		clock:       time.Now,
	}
}

// defaultConfidenceSaturation is a smoothing choice, not a statistical
// guarantee: confidence in a pattern maxes out after this many sightings.
const defaultConfidenceSaturation = 20

// RecordOutcome folds one resolved attempt into the model's performance
// record. A pass that recovered from an earlier failure remembers its
// parameters as a proven template for that failure class.
func (s *MemoryStore) RecordOutcome(ctx context.Context, contentType models.ContentType, attempt *models.Attempt, result *models.ValidationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.performance[attempt.ModelID]
	if !ok {
		record = &models.ModelPerformanceRecord{
			ModelID:       attempt.ModelID,
			FailureCounts: make(map[models.FailureClass]int64),
		}
		s.performance[attempt.ModelID] = record
	}

	n := record.TotalAttempts()
	record.AvgQuality = (record.AvgQuality*float64(n) + result.CombinedScore) / float64(n+1)
	record.LastUsedAt = s.clock()

	if result.Passed {
		record.SuccessCount++
		if attempt.RecoveredClass != "" {
			s.rememberTemplate(attempt.RecoveredClass, contentType, attempt, result.CombinedScore)
		}
	} else {
		record.FailureCount++
		record.FailureCounts[ClassifyIssues(result.Issues)]++
	}

	return nil
}

func (s *MemoryStore) rememberTemplate(class models.FailureClass, contentType models.ContentType, attempt *models.Attempt, score float64) {
	key := templateKey{class: class, contentType: contentType}
	tpl, ok := s.templates[key]
	if !ok {
		s.templates[key] = &provenTemplate{
			params:    attempt.Parameters,
			successes: 1,
			bestScore: score,
		}
		return
	}

	tpl.successes++
	if score > tpl.bestScore {
		tpl.bestScore = score
		tpl.params = attempt.Parameters
	}
}

// RecordPattern updates or creates the learned pattern for a detected
// technical condition. Confidence is frequency over the saturation count,
// capped at 1.0.
func (s *MemoryStore) RecordPattern(ctx context.Context, obs PatternObservation, finalScore float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := obs.PatternType + "|" + obs.TriggerCondition
	now := s.clock()

	pattern, ok := s.patterns[key]
	if !ok {
		pattern = &models.LearnedPattern{
			PatternType:      obs.PatternType,
			TriggerCondition: obs.TriggerCondition,
			Impact:           obs.Impact,
			Recommendation:   obs.Recommendation,
			FirstSeenAt:      now,
		}
		s.patterns[key] = pattern
	}

	n := pattern.Frequency
	pattern.AvgScoreWhenPresent = (pattern.AvgScoreWhenPresent*float64(n) + finalScore) / float64(n+1)
	pattern.Frequency++
	pattern.Confidence = Confidence(pattern.Frequency, s.saturation)
	pattern.LastSeenAt = now

	return nil
}

// Confidence maps an observation count onto [0,1], saturating at the
// configured sample count.
func Confidence(frequency int64, saturation int) float64 {
	c := float64(frequency) / float64(saturation)
	if c > 1 {
		return 1
	}
	return c
}

// ModelPerformance returns a copy of the record for a model.
func (s *MemoryStore) ModelPerformance(modelID string) (*models.ModelPerformanceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.performance[modelID]
	if !ok {
		return nil, false
	}

	out := *record
	out.FailureCounts = make(map[models.FailureClass]int64, len(record.FailureCounts))
	for k, v := range record.FailureCounts {
		out.FailureCounts[k] = v
	}
	return &out, true
}

// ProvenTemplate returns the best-scoring parameter set that recovered a
// failure of this class for this content type, if any such success has
// been recorded.
func (s *MemoryStore) ProvenTemplate(class models.FailureClass, contentType models.ContentType) (*models.Parameters, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, ok := s.templates[templateKey{class: class, contentType: contentType}]
	if !ok || tpl.successes == 0 {
		return nil, false
	}

	params := tpl.params
	return &params, true
}

// Insights returns the learned patterns ordered by confidence, highest
// first.
func (s *MemoryStore) Insights() []models.LearnedPattern {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.LearnedPattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, *p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Frequency > out[j].Frequency
	})
	return out
}
