// internal/scorer/scorer.go
package scorer

import (
	"creative-pipeline/internal/common/logger"
	"creative-pipeline/internal/models"
	"creative-pipeline/internal/validators"
)

// Heuristic fallback byte-size thresholds for when no validator is
// available. Tiny outputs are almost certainly broken renders, huge ones
// are suspect, mid-size ones are usually fine.
const (
	heuristicTinyBytes    = 30_000
	heuristicHugeBytes    = 10_000_000
	heuristicHealthyLower = 200_000
	heuristicHealthyUpper = 5_000_000
)

// Scorer fuses validator reports into one combined confidence score with
// graceful degradation when signal sources are down.
type Scorer struct {
	logger logger.Logger
}

// New builds a Scorer.
func New(log logger.Logger) *Scorer {
	return &Scorer{logger: log}
}

// Score combines the available validator reports for the attempt. The
// numeric score and the boolean pass are independent: a blocking rule issue
// forces passed=false even when the number clears the threshold.
func (s *Scorer) Score(artifact *models.Artifact, reports map[string]*models.ValidatorReport, contentType models.ContentType, threshold float64) *models.ValidationResult {
	weights := WeightsFor(contentType)

	weighted := []struct {
		name   string
		weight float64
	}{
		{validators.SemanticName, weights.Semantic},
		{validators.TechnicalName, weights.Technical},
	}

	var issues []models.Issue
	available := 0
	var lastAvailable *models.ValidatorReport
	combined := 0.0

	for _, w := range weighted {
		report, ok := reports[w.name]
		if !ok || !report.Available {
			continue
		}
		available++
		lastAvailable = report
		combined += w.weight * report.Score
		issues = append(issues, report.Issues...)
	}

	result := &models.ValidationResult{
		PerValidator: reports,
		Issues:       issues,
	}

	switch {
	case available >= 2:
		result.CombinedScore = combined
		result.DegradationTier = models.TierHybrid
	case available == 1:
		// A single signal is used raw, never a partial weighted sum
		// against a missing term.
		result.CombinedScore = lastAvailable.Score
		result.DegradationTier = models.TierSingle
	default:
		result.CombinedScore = heuristicScore(artifact)
		result.DegradationTier = models.TierHeuristic
		s.logger.Warn("no validators available, falling back to heuristic score", map[string]interface{}{
			"contentType": string(contentType),
			"score":       result.CombinedScore,
		})
	}

	result.Passed = result.CombinedScore >= threshold && !hasBlockingIssue(issues)
	return result
}

// heuristicScore is the last rung of the ladder: a conservative estimate
// from output size alone.
func heuristicScore(artifact *models.Artifact) float64 {
	if artifact == nil || artifact.SizeBytes == 0 {
		return 0.5
	}
	switch {
	case artifact.SizeBytes < heuristicTinyBytes:
		return 0.30
	case artifact.SizeBytes > heuristicHugeBytes:
		return 0.40
	case artifact.SizeBytes >= heuristicHealthyLower && artifact.SizeBytes <= heuristicHealthyUpper:
		return 0.75
	default:
		return 0.55
	}
}

func hasBlockingIssue(issues []models.Issue) bool {
	for _, issue := range issues {
		if issue.Blocking {
			return true
		}
	}
	return false
}
