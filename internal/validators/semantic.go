// internal/validators/semantic.go
package validators

import (
	"context"

	"creative-pipeline/internal/models"
)

// SemanticName is the report key for the semantic signal.
const SemanticName = "semantic"

// SemanticValidator scores an output from a vision/LLM annotation. It is
// the highest-weight signal for photo and text-heavy content.
type SemanticValidator struct {
	annotator   SemanticAnnotator
	contentType models.ContentType
}

// NewSemanticValidator wraps a semantic annotator. A nil annotator makes
// the validator structurally unavailable.
func NewSemanticValidator(annotator SemanticAnnotator, contentType models.ContentType) *SemanticValidator {
	return &SemanticValidator{annotator: annotator, contentType: contentType}
}

func (v *SemanticValidator) Name() string { return SemanticName }

func (v *SemanticValidator) Validate(ctx context.Context, artifact *models.Artifact) (*models.ValidatorReport, error) {
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

func (v *SemanticValidator) scoreAnnotation(a *SemanticAnnotation) *models.ValidatorReport {
	score := 0.5
	var issues []models.Issue

	if a.Text != "" {
		score += 0.15
	} else if v.contentType.TextHeavy() {
		issues = append(issues, models.Issue{
			Code:    models.IssueMissingContent,
			Message: "no readable text detected in a text-heavy artifact",
		})
		score -= 0.2
	}

	if len(a.DominantColors) >= 3 {
		score += 0.1
	}

	if v.contentType == models.ContentTypePhoto {
		if a.FaceCount > 0 {
			score += 0.15 * a.FaceConfidence
		} else {
			issues = append(issues, models.Issue{
				Code:    models.IssueMissingContent,
				Message: "no face detected in photo content",
			})
			score -= 0.25
		}
	} else if len(a.Logos) > 0 {
		score += 0.1
	}

	if a.SafetyScore >= 0.8 {
		score += 0.15
	} else if a.SafetyScore < 0.5 {
		issues = append(issues, models.Issue{
			Code:     models.IssueCompliance,
			Message:  "safety labels below acceptable level",
			Blocking: true,
		})
		score -= 0.3
	}

	return &models.ValidatorReport{
		Score:     clampScore(score),
		Issues:    issues,
		Available: true,
	}
}
