// internal/learning/patterns.go
package learning

import (
	"fmt"
	"math"

	"creative-pipeline/internal/models"
	"creative-pipeline/internal/validators"
)

// PatternObservation is one detected technical condition in an output,
// before it is folded into a LearnedPattern.
type PatternObservation struct {
	PatternType      string
	TriggerCondition string
	Impact           models.PatternImpact
	Recommendation   string
}

// standardAspectRatios are the layouts generation backends handle well.
var standardAspectRatios = []float64{1.0, 1.33, 1.5, 1.78, 0.75, 0.56}

// DetectPatterns inspects a pixel annotation for the recurring conditions
// worth learning from.
func DetectPatterns(a *validators.PixelAnnotation) []PatternObservation {
	if a == nil {
		return nil
	}

	var out []PatternObservation

	if a.ColorVariance < 20 {
		out = append(out, PatternObservation{
			PatternType:      "low-color-variance",
			TriggerCondition: "colorVariance < 20",
			Impact:           models.ImpactNegative,
			Recommendation:   "request richer color palettes or gradients in the prompt",
		})
	}

	if a.Width > 0 && a.Height > 0 && (a.Width < 800 || a.Height < 600) {
		out = append(out, PatternObservation{
			PatternType:      "poor-resolution",
			TriggerCondition: "width < 800 or height < 600",
			Impact:           models.ImpactNegative,
			Recommendation:   "force explicit output dimensions in generation parameters",
		})
	}

	if a.ElementCount > 3000 {
		out = append(out, PatternObservation{
			PatternType:      "excessive-elements",
			TriggerCondition: "elementCount > 3000",
			Impact:           models.ImpactNegative,
			Recommendation:   "simplify the layout request, fewer decorative elements",
		})
	}

	if a.Brightness < 40 {
		out = append(out, PatternObservation{
			PatternType:      "too-dark",
			TriggerCondition: "brightness < 40",
			Impact:           models.ImpactNegative,
			Recommendation:   "ask for bright, well-lit compositions",
		})
	} else if a.Brightness > 220 {
		out = append(out, PatternObservation{
			PatternType:      "overexposed",
			TriggerCondition: "brightness > 220",
			Impact:           models.ImpactNegative,
			Recommendation:   "ask for balanced lighting, avoid white-on-white",
		})
	}

	if a.EdgeRatio < 0.08 {
		out = append(out, PatternObservation{
			PatternType:      "low-detail",
			TriggerCondition: "edgeRatio < 0.08",
			Impact:           models.ImpactNegative,
			Recommendation:   "add texture and detail cues to the prompt",
		})
	}

	if a.ColorVariance > 50 && a.EdgeRatio > 0.2 {
		out = append(out, PatternObservation{
			PatternType:      "rich-composition",
			TriggerCondition: "colorVariance > 50 and edgeRatio > 0.2",
			Impact:           models.ImpactPositive,
			Recommendation:   "current prompt style produces strong compositions, keep it",
		})
	}

	if a.Width > 0 && a.Height > 0 {
		ratio := float64(a.Width) / float64(a.Height)
		if !nearStandardRatio(ratio) {
			out = append(out, PatternObservation{
				PatternType:      "nonstandard-aspect",
				TriggerCondition: fmt.Sprintf("aspect ratio %.2f outside standard set", ratio),
				Impact:           models.ImpactNeutral,
				Recommendation:   "pin the aspect ratio to a standard format",
			})
		}
	}

	return out
}

func nearStandardRatio(ratio float64) bool {
	for _, std := range standardAspectRatios {
		if math.Abs(ratio-std) < 0.05 {
			return true
		}
	}
	return false
}
