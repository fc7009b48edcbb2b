// internal/validators/text.go
package validators

import (
	"context"

	"creative-pipeline/internal/models"
)

// Composite weights for the text-content signal.
const (
	textWeightOCR        = 0.3
	textWeightSpelling   = 0.2
	textWeightCompliance = 0.2
	textWeightVisual     = 0.3
)

// TextValidator is the composite rule validator for text-heavy content. It
// occupies the semantic slot in scoring: for rate updates and copy-centric
// creatives, what the text says matters more than how the pixels look, and
// the OCR, spelling and compliance checks together are that judgment. One
// OCR pass is shared across all three rule checks.
type TextValidator struct {
	ocr        OCREngine
	spelling   *SpellingValidator
	compliance *ComplianceValidator
	presence   *OCRValidator
	visual     *SemanticValidator
}

// NewTextValidator builds the composite text validator. visual may be nil,
// in which case the remaining components are renormalized.
func NewTextValidator(ocr OCREngine, requiredText, whitelist []string, visual *SemanticValidator) *TextValidator {
	return &TextValidator{
		ocr:        ocr,
		spelling:   NewSpellingValidator(ocr, whitelist),
		compliance: NewComplianceValidator(ocr, requiredText),
		presence:   NewOCRValidator(ocr, requiredText),
		visual:     visual,
	}
}

func (v *TextValidator) Name() string { return SemanticName }

func (v *TextValidator) Validate(ctx context.Context, artifact *models.Artifact) (*models.ValidatorReport, error) {
	if v.ocr == nil {
		return unavailable(), nil
	}

	text, err := v.ocr.ExtractText(ctx, artifact)
	if err != nil {
		return nil, err
	}

	presence := v.presence.CheckText(text)
	spelling := v.spelling.CheckText(text)
	compliance := v.compliance.CheckText(text)

	score := presence.Score*textWeightOCR +
		spelling.Score*textWeightSpelling +
		compliance.Score*textWeightCompliance
	usedWeight := textWeightOCR + textWeightSpelling + textWeightCompliance

	issues := append([]models.Issue{}, presence.Issues...)
	issues = append(issues, spelling.Issues...)
	issues = append(issues, compliance.Issues...)

	if v.visual != nil {
		if visual, err := v.visual.Validate(ctx, artifact); err == nil && visual.Available {
			score += visual.Score * textWeightVisual
			usedWeight += textWeightVisual
			issues = append(issues, visual.Issues...)
		}
	}

	return &models.ValidatorReport{
		Score:     clampScore(score / usedWeight),
		Issues:    issues,
		Available: true,
	}, nil
}

// MisspelledWords exposes the spelling corrections for prompt adjustment.
func (v *TextValidator) MisspelledWords(ctx context.Context, artifact *models.Artifact) []string {
	if v.ocr == nil {
		return nil
	}
	text, err := v.ocr.ExtractText(ctx, artifact)
	if err != nil {
		return nil
	}
	return v.spelling.MisspelledWords(text)
}
