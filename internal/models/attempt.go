// internal/models/attempt.go
package models

import "time"

// Attempt records one pass through the generation loop. Attempts live only
// in the request's in-memory history; they are not persisted individually.
type Attempt struct {
	Number     int        `json:"number"`
	ModelID    string     `json:"modelId"`
	Parameters Parameters `json:"parameters"`
	Prompt     string     `json:"prompt"`
	OutputRef  string     `json:"outputRef,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`

	// RecoveredClass is the failure class the recovery strategy shaping
	// this attempt was addressing. Empty on a first attempt.
	RecoveredClass FailureClass `json:"recoveredClass,omitempty"`
}

// AttemptOutcome pairs an attempt with its validation for the history the
// pipeline returns to the caller.
type AttemptOutcome struct {
	Attempt    *Attempt          `json:"attempt"`
	Artifact   *Artifact         `json:"artifact,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
	Strategy   string            `json:"strategy,omitempty"` // recovery strategy that shaped this attempt
}
