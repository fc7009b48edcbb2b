// internal/models/learning.go
package models

import "time"

// ModelPerformanceRecord tracks how one generation model has performed.
// Records accumulate forever; they are never deleted.
type ModelPerformanceRecord struct {
	ModelID       string                 `json:"modelId"`
	SuccessCount  int64                  `json:"successCount"`
	FailureCount  int64                  `json:"failureCount"`
	AvgQuality    float64                `json:"avgQuality"`
	FailureCounts map[FailureClass]int64 `json:"failureCounts,omitempty"`
	LastUsedAt    time.Time              `json:"lastUsedAt"`
}

// TotalAttempts returns successes plus failures.
func (r *ModelPerformanceRecord) TotalAttempts() int64 {
	return r.SuccessCount + r.FailureCount
}

// PatternImpact says whether a learned pattern correlates with good or bad
// outcomes.
type PatternImpact string

const (
	ImpactPositive PatternImpact = "positive"
	ImpactNegative PatternImpact = "negative"
	ImpactNeutral  PatternImpact = "neutral"
)

// LearnedPattern is a recurring technical condition whose correlation with
// quality is tracked to bias future scoring and strategy choices.
type LearnedPattern struct {
	PatternType         string        `json:"patternType"`
	TriggerCondition    string        `json:"triggerCondition"`
	Impact              PatternImpact `json:"impact"`
	Recommendation      string        `json:"recommendation"`
	Frequency           int64         `json:"frequency"`
	AvgScoreWhenPresent float64       `json:"avgScoreWhenPresent"`
	Confidence          float64       `json:"confidence"`
	FirstSeenAt         time.Time     `json:"firstSeenAt"`
	LastSeenAt          time.Time     `json:"lastSeenAt"`
}
