// internal/validators/compliance.go
package validators

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"creative-pipeline/internal/models"
)

// ComplianceName is the report key for the compliance signal.
const ComplianceName = "compliance"

// Penalty weights for compliance defects.
const (
	penaltyWrongNumberFormat = 0.5
	penaltyMissingLicense    = 0.3
	penaltyTextMismatch      = 0.2
)

var (
	// Rates rendered without a decimal point read as wrong or misleading,
	// e.g. "65%" where "6.5%" was intended.
	barePercentPattern = regexp.MustCompile(`\b(\d{2,})%`)
	ratePattern        = regexp.MustCompile(`\b\d{1,2}\.\d{1,3}%`)
	licensePattern     = regexp.MustCompile(`(?i)\bNMLS\s*#?\s*\d+`)
)

// ComplianceValidator enforces the regulatory copy rules: rate number
// formats, the license number disclosure, and exact presence of required
// text. Deterministic and always available when OCR is.
type ComplianceValidator struct {
	ocr          OCREngine
	requiredText []string
}

// NewComplianceValidator builds a compliance validator for the request's
// required text tokens.
func NewComplianceValidator(ocr OCREngine, requiredText []string) *ComplianceValidator {
	return &ComplianceValidator{ocr: ocr, requiredText: requiredText}
}

func (v *ComplianceValidator) Name() string { return ComplianceName }

func (v *ComplianceValidator) Validate(ctx context.Context, artifact *models.Artifact) (*models.ValidatorReport, error) {
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
func (v *ComplianceValidator) CheckText(text string) *models.ValidatorReport {
	score := 1.0
	var issues []models.Issue
	lower := strings.ToLower(text)

	if v.expectsRate() && barePercentPattern.MatchString(text) && !ratePattern.MatchString(text) {
		score -= penaltyWrongNumberFormat
		issues = append(issues, models.Issue{
			Code:     models.IssueCompliance,
			Message:  "rate rendered without decimal point, number format is wrong",
			Blocking: true,
		})
	}

	if v.expectsLicense() && !licensePattern.MatchString(text) {
		score -= penaltyMissingLicense
		issues = append(issues, models.Issue{
			Code:     models.IssueCompliance,
			Message:  "required license number disclosure missing",
			Blocking: true,
		})
	}

	for _, required := range v.requiredText {
		if !strings.Contains(lower, strings.ToLower(strings.TrimSpace(required))) {
			score -= penaltyTextMismatch
			issues = append(issues, models.Issue{
				Code:    models.IssueMissingContent,
				Message: fmt.Sprintf("required text %q not found in output", required),
			})
		}
	}

	return &models.ValidatorReport{
		Score:     clampScore(score),
		Issues:    issues,
		Available: true,
	}
}

func (v *ComplianceValidator) expectsRate() bool {
	for _, t := range v.requiredText {
		if strings.Contains(t, "%") {
			return true
		}
	}
	return false
}

func (v *ComplianceValidator) expectsLicense() bool {
	for _, t := range v.requiredText {
		if licensePattern.MatchString(t) {
			return true
		}
	}
	return false
}
