// internal/validators/spelling.go
package validators

import (
	"context"
	"fmt"
	"strings"

	"creative-pipeline/internal/models"
)

// SpellingName is the report key for the spelling signal.
const SpellingName = "spelling"

// SpellingValidator checks OCR-extracted copy against the misspelling
// dictionary plus a caller-supplied domain whitelist. Deterministic and
// always available when OCR is.
type SpellingValidator struct {
	ocr       OCREngine
	whitelist map[string]struct{}
}

// NewSpellingValidator builds a spelling validator. whitelist entries are
// domain terms (brand names, abbreviations) the dictionary would flag.
func NewSpellingValidator(ocr OCREngine, whitelist []string) *SpellingValidator {
	wl := make(map[string]struct{}, len(whitelist))
	for _, w := range whitelist {
		wl[strings.ToLower(w)] = struct{}{}
	}
	return &SpellingValidator{ocr: ocr, whitelist: wl}
}

func (v *SpellingValidator) Name() string { return SpellingName }

func (v *SpellingValidator) Validate(ctx context.Context, artifact *models.Artifact) (*models.ValidatorReport, error) {
	if v.ocr == nil {
		return unavailable(), nil
	}

	text, err := v.ocr.ExtractText(ctx, artifact)
	if err != nil {
		return nil, err
	}

	return v.CheckText(text), nil
}

// CheckText scores copy directly. Exposed so the composite text validator
// can reuse one OCR pass across the rule validators.
func (v *SpellingValidator) CheckText(text string) *models.ValidatorReport {
	words := tokenizeWords(text)
	if len(words) == 0 {
		return &models.ValidatorReport{Score: 1.0, Available: true}
	}

	var issues []models.Issue
	errorCount := 0
	for _, word := range words {
		if _, ok := v.whitelist[word]; ok {
			continue
		}
		if correction, ok := knownMisspellings[word]; ok {
			errorCount++
			issues = append(issues, models.Issue{
				Code:    models.IssueSpelling,
				Message: fmt.Sprintf("misspelled %q, expected %q", word, correction),
			})
		}
	}

	score := float64(len(words)-errorCount) / float64(len(words))
	return &models.ValidatorReport{
		Score:     clampScore(score),
		Issues:    issues,
		Available: true,
	}
}

// MisspelledWords lists the flagged words in copy, for prompt correction.
func (v *SpellingValidator) MisspelledWords(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, word := range tokenizeWords(text) {
		if _, ok := v.whitelist[word]; ok {
			continue
		}
		if correction, ok := knownMisspellings[word]; ok {
			if _, dup := seen[correction]; !dup {
				seen[correction] = struct{}{}
				out = append(out, correction)
			}
		}
	}
	return out
}
