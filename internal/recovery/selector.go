// internal/recovery/selector.go
package recovery

import (
	"fmt"
	"math/rand"
	"time"

	"creative-pipeline/internal/common/logger"
	"creative-pipeline/internal/learning"
	"creative-pipeline/internal/models"
)

// Strategy names. Each one is a qualitatively different next action, never
// a verbatim retry.
const (
	StrategyDifferentParams      = "regenerate-with-different-params"
	StrategyProvenTemplate       = "proven-template"
	StrategyExtremeDeterminism   = "extreme-determinism"
	StrategyAlternativeGenerator = "alternative-generator"
)

// Strategy bundles the parameter and prompt changes for the next attempt,
// plus a human-readable justification for observability.
type Strategy struct {
	Name            string              `json:"name"`
	FailureClass    models.FailureClass `json:"failureClass"`
	Parameters      models.Parameters   `json:"parameters"`
	PromptAdditions []string            `json:"promptAdditions,omitempty"`
	NegativePrompts []string            `json:"negativePrompts,omitempty"`
	UseFallback     bool                `json:"useFallback,omitempty"`
	Reason          string              `json:"reason"`
}

// Selector picks the recovery strategy for a failed attempt using the
// attempt number and what the learning store knows. A nil store is legal
// and simply disables the learned bias.
type Selector struct {
	store  learning.Store
	logger logger.Logger
	seed   func() int64
}

// NewSelector builds a Selector.
func NewSelector(store learning.Store, log logger.Logger) *Selector {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Selector{
		store:  store,
		logger: log,
		seed:   rng.Int63,
	}
}

// Select decides what changes for the next attempt. failedAttempts is how
// many attempts have failed so far; misspelled carries corrections the
// validators flagged in the last output.
func (s *Selector) Select(result *models.ValidationResult, contentType models.ContentType, failedAttempts int, misspelled []string, base models.Parameters) *Strategy {
	class := learning.ClassifyIssues(result.Issues)

	var strategy *Strategy
	switch {
	case failedAttempts <= 1:
		strategy = s.differentParams(class, misspelled, base)
	case failedAttempts == 2:
		strategy = s.secondAttempt(class, contentType, misspelled, base)
	default:
		strategy = s.alternativeGenerator(class, base)
	}

	s.logger.Info("recovery strategy selected", map[string]interface{}{
		"strategy":       strategy.Name,
		"failureClass":   string(class),
		"failedAttempts": failedAttempts,
		"reason":         strategy.Reason,
	})
	return strategy
}

// differentParams is the first correction: the first output anchors the
// structural layout for most generative backends, so parameter changes are
// favored over heavy prompt surgery here.
func (s *Selector) differentParams(class models.FailureClass, misspelled []string, base models.Parameters) *Strategy {
	params := base
	params.Temperature = 0.4
	params.TopK = 20
	params.TopP = 0.8
	params.Seed = s.seed()

	st := &Strategy{
		Name:         StrategyDifferentParams,
		FailureClass: class,
		Parameters:   params,
		Reason:       "first retry: lower randomness and a fresh seed to break the anchored layout",
	}

	if len(misspelled) > 0 {
		st.PromptAdditions = append(st.PromptAdditions, ExplicitSpellings(misspelled))
	}
	if class == models.FailureLayout {
		st.PromptAdditions = append(st.PromptAdditions, "Use a simple, clean layout with generous spacing.")
	}
	return st
}

func (s *Selector) secondAttempt(class models.FailureClass, contentType models.ContentType, misspelled []string, base models.Parameters) *Strategy {
	if s.store != nil {
		if proven, ok := s.store.ProvenTemplate(class, contentType); ok {
			return &Strategy{
				Name:         StrategyProvenTemplate,
				FailureClass: class,
				Parameters:   *proven,
				Reason:       fmt.Sprintf("second retry: reusing parameters that recovered %s failures for %s content", class, contentType),
			}
		}
	}
	return s.extremeDeterminism(class, misspelled, base)
}

func (s *Selector) extremeDeterminism(class models.FailureClass, misspelled []string, base models.Parameters) *Strategy {
	params := base
	params.Temperature = 0.05
	params.TopK = 10
	params.TopP = 0.7
	params.Seed = s.seed()

	st := &Strategy{
		Name:         StrategyExtremeDeterminism,
		FailureClass: class,
		Parameters:   params,
		NegativePrompts: []string{
			"misspelled words", "garbled text", "distorted letters", "cluttered layout",
		},
		Reason: "second retry: no proven template, pushing parameters to minimum randomness",
	}

	if len(misspelled) > 0 {
		st.PromptAdditions = append(st.PromptAdditions,
			LetterByLetterSpelling(misspelled),
			RepeatCriticalWords(misspelled, 3),
		)
	}
	return st
}

// alternativeGenerator is the last resort: a structurally different
// generation approach. When no fallback invoker is configured the
// controller terminates cleanly as exhausted.
func (s *Selector) alternativeGenerator(class models.FailureClass, base models.Parameters) *Strategy {
	params := base
	params.Temperature = 0
	params.Seed = 0

	reason := "final retry: switching to the deterministic compositing fallback"
	if s.store != nil {
		if rec := s.store.Recommend("deterministic"); rec != nil {
			params.Model = rec.Primary
			reason = fmt.Sprintf("final retry: switching generator (%s)", rec.Reason)
		}
	}

	return &Strategy{
		Name:         StrategyAlternativeGenerator,
		FailureClass: class,
		Parameters:   params,
		UseFallback:  true,
		Reason:       reason,
	}
}
