// internal/validators/technical.go
package validators

import (
	"context"
	"fmt"

	"creative-pipeline/internal/models"
)

// TechnicalName is the report key for the pixel/technical signal.
const TechnicalName = "technical"

// Pixel-analysis thresholds. These catch "too simple / blurry / washed
// out" failures the semantic annotator tends to miss.
const (
	lowColorVariance  = 20.0
	lowBrightness     = 40.0
	highBrightness    = 220.0
	lowEdgeRatio      = 0.08
	excessiveElements = 3000
)

// TechnicalValidator scores resolution, color variance, brightness and edge
// density sampled from the rendered output.
type TechnicalValidator struct {
	annotator PixelAnnotator
	minWidth  int
	minHeight int
}

// NewTechnicalValidator wraps a pixel annotator. A nil annotator makes the
// validator structurally unavailable.
func NewTechnicalValidator(annotator PixelAnnotator, minWidth, minHeight int) *TechnicalValidator {
	if minWidth <= 0 {
		minWidth = 800
	}
	if minHeight <= 0 {
		minHeight = 600
	}
	return &TechnicalValidator{annotator: annotator, minWidth: minWidth, minHeight: minHeight}
}

func (v *TechnicalValidator) Name() string { return TechnicalName }

func (v *TechnicalValidator) Validate(ctx context.Context, artifact *models.Artifact) (*models.ValidatorReport, error) {
	if v.annotator == nil {
		return unavailable(), nil
	}

	annotation, err := v.annotator.Analyze(ctx, artifact)
	if err != nil {
		return nil, err
	}
	if annotation == nil {
		return unavailable(), nil
	}

	return v.scoreAnnotation(annotation), nil
}

func (v *TechnicalValidator) scoreAnnotation(a *PixelAnnotation) *models.ValidatorReport {
	score := 1.0
	var issues []models.Issue

	if a.Width < v.minWidth || a.Height < v.minHeight {
		score -= 0.25
		issues = append(issues, models.Issue{
			Code:    models.IssueTechnical,
			Message: fmt.Sprintf("resolution %dx%d below minimum %dx%d", a.Width, a.Height, v.minWidth, v.minHeight),
		})
	}

	if a.ColorVariance < lowColorVariance {
		score -= 0.2
		issues = append(issues, models.Issue{
			Code:    models.IssueLowQuality,
			Message: fmt.Sprintf("low color variance (%.1f), output looks flat", a.ColorVariance),
		})
	}

	if a.Brightness < lowBrightness {
		score -= 0.15
		issues = append(issues, models.Issue{
			Code:    models.IssueLowQuality,
			Message: fmt.Sprintf("too dark (brightness %.1f)", a.Brightness),
		})
	} else if a.Brightness > highBrightness {
		score -= 0.15
		issues = append(issues, models.Issue{
			Code:    models.IssueLowQuality,
			Message: fmt.Sprintf("washed out (brightness %.1f)", a.Brightness),
		})
	}

	if a.EdgeRatio < lowEdgeRatio {
		score -= 0.15
		issues = append(issues, models.Issue{
			Code:    models.IssueLowQuality,
			Message: fmt.Sprintf("low edge density (%.3f), output may be too simple or blurry", a.EdgeRatio),
		})
	}

	if a.ElementCount > excessiveElements {
		score -= 0.1
		issues = append(issues, models.Issue{
			Code:    models.IssueLayout,
			Message: fmt.Sprintf("excessive element count (%d), layout likely cluttered", a.ElementCount),
		})
	}

	return &models.ValidatorReport{
		Score:     clampScore(score),
		Issues:    issues,
		Available: true,
	}
}
