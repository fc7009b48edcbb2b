// internal/models/validation.go
package models

// IssueCode identifies what kind of defect a validator found.
type IssueCode string

const (
	IssueSpelling       IssueCode = "SPELLING_ERROR"
	IssueLayout         IssueCode = "LAYOUT_POSITIONING"
	IssueMissingContent IssueCode = "MISSING_CONTENT"
	IssueLowQuality     IssueCode = "LOW_QUALITY"
	IssueCompliance     IssueCode = "COMPLIANCE_VIOLATION"
	IssueTechnical      IssueCode = "TECHNICAL_DEFECT"
	IssueGeneration     IssueCode = "GENERATION_ERROR"
)

// Issue is one defect reported by a validator.
type Issue struct {
	Code     IssueCode `json:"code"`
	Message  string    `json:"message"`
	Blocking bool      `json:"blocking,omitempty"` // forces passed=false regardless of score
}

// ValidatorReport is the uniform result every validator adapter produces.
// An adapter that cannot run reports Available=false; it never contributes
// a score of zero in disguise.
type ValidatorReport struct {
	Score     float64 `json:"score"`
	Issues    []Issue `json:"issues,omitempty"`
	Available bool    `json:"available"`
}

// DegradationTier records which rung of the availability ladder produced
// the combined score.
type DegradationTier string

const (
	TierHybrid    DegradationTier = "hybrid"
	TierSingle    DegradationTier = "single-validator"
	TierHeuristic DegradationTier = "heuristic"
)

// ValidationResult is the immutable outcome of scoring one attempt.
type ValidationResult struct {
	PerValidator    map[string]*ValidatorReport `json:"perValidator"`
	CombinedScore   float64                     `json:"combinedScore"`
	Passed          bool                        `json:"passed"`
	DegradationTier DegradationTier             `json:"degradationTier"`
	Issues          []Issue                     `json:"issues,omitempty"`
}

// FailureClass buckets a failed validation for strategy selection. Derived
// from the issue set only, never stored.
type FailureClass string

const (
	FailureSpelling       FailureClass = "spelling-errors"
	FailureLayout         FailureClass = "layout-positioning"
	FailureMissingContent FailureClass = "missing-content"
	FailureGeneralQuality FailureClass = "general-quality"
)
