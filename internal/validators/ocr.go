// internal/validators/ocr.go
package validators

import (
	"context"
	"fmt"
	"strings"

	"creative-pipeline/internal/models"
)

// OCRName is the report key for the text-presence signal.
const OCRName = "ocr"

// OCRValidator verifies that every required field (rates, names, license
// numbers) is actually rendered in the output.
type OCRValidator struct {
	ocr          OCREngine
	requiredText []string
}

// NewOCRValidator builds a text-presence validator for the request's
// required tokens.
func NewOCRValidator(ocr OCREngine, requiredText []string) *OCRValidator {
	return &OCRValidator{ocr: ocr, requiredText: requiredText}
}

func (v *OCRValidator) Name() string { return OCRName }

func (v *OCRValidator) Validate(ctx context.Context, artifact *models.Artifact) (*models.ValidatorReport, error) {
	if v.ocr == nil {
		return unavailable(), nil
	}

	text, err := v.ocr.ExtractText(ctx, artifact)
	if err != nil {
		return nil, err
	}

	return v.CheckText(text), nil
}

// CheckText scores extracted copy directly.
func (v *OCRValidator) CheckText(text string) *models.ValidatorReport {
	if len(v.requiredText) == 0 {
		return &models.ValidatorReport{Score: 1.0, Available: true}
	}

	lower := strings.ToLower(text)
	found := 0
	var issues []models.Issue

	for _, required := range v.requiredText {
		if strings.Contains(lower, strings.ToLower(strings.TrimSpace(required))) {
			found++
			continue
		}
		issues = append(issues, models.Issue{
			Code:    models.IssueMissingContent,
			Message: fmt.Sprintf("required field %q not readable in output", required),
		})
	}

	return &models.ValidatorReport{
		Score:     float64(found) / float64(len(v.requiredText)),
		Issues:    issues,
		Available: true,
	}
}
