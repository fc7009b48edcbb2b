// internal/validators/validator.go
package validators

import (
	"context"

	"creative-pipeline/internal/models"
)

// Adapter wraps one annotator behind the uniform validation contract. An
// adapter that cannot run must surface that through an error or an
// Available=false report; it must never abort the attempt.
type Adapter interface {
	Name() string
	Validate(ctx context.Context, artifact *models.Artifact) (*models.ValidatorReport, error)
}

// SemanticAnnotation is what the vision/LLM annotator knows about an output.
type SemanticAnnotation struct {
	FaceCount      int      `json:"faceCount"`
	FaceConfidence float64  `json:"faceConfidence,omitempty"`
	Text           string   `json:"text,omitempty"`
	Logos          []string `json:"logos,omitempty"`
	DominantColors []string `json:"dominantColors,omitempty"`
	SafetyScore    float64  `json:"safetyScore"`
}

// SemanticAnnotator is the external vision/LLM collaborator. A nil
// implementation or an error means the semantic signal is unavailable.
type SemanticAnnotator interface {
	Analyze(ctx context.Context, artifact *models.Artifact) (*SemanticAnnotation, error)
}

// PixelAnnotation is what rendered-pixel sampling knows about an output.
type PixelAnnotation struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	ColorVariance float64 `json:"colorVariance"`
	Brightness    float64 `json:"brightness"`
	EdgeRatio     float64 `json:"edgeRatio"`
	ElementCount  int     `json:"elementCount,omitempty"`
}

// PixelAnnotator is the external technical analysis collaborator.
type PixelAnnotator interface {
	Analyze(ctx context.Context, artifact *models.Artifact) (*PixelAnnotation, error)
}

// OCREngine extracts rendered text from an output.
type OCREngine interface {
	ExtractText(ctx context.Context, artifact *models.Artifact) (string, error)
}

func unavailable() *models.ValidatorReport {
	return &models.ValidatorReport{Available: false}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
