// internal/scorer/weights.go
package scorer

import "creative-pipeline/internal/models"

// Weights is the per-content-type split between the semantic and technical
// signals. The pairs are designed to sum to 1 across the expected full set;
// when a validator is missing the remaining weights apply unnormalized.
type Weights struct {
	Semantic  float64
	Technical float64
}

// WeightsFor returns the weighting policy for a content type. The switch is
// exhaustive over the known set; an unrecognized type falls back to the
// general split.
func WeightsFor(ct models.ContentType) Weights {
	switch ct {
	case models.ContentTypeText, models.ContentTypeRateUpdate:
		return Weights{Semantic: 0.7, Technical: 0.3}
	case models.ContentTypeSocialMedia:
		return Weights{Semantic: 0.5, Technical: 0.5}
	case models.ContentTypePhoto:
		return Weights{Semantic: 0.75, Technical: 0.25}
	case models.ContentTypeGeneral:
		return Weights{Semantic: 0.6, Technical: 0.4}
	}
	return Weights{Semantic: 0.6, Technical: 0.4}
}
