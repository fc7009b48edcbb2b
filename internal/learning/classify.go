// internal/learning/classify.go
package learning

import "creative-pipeline/internal/models"

// ClassifyIssues buckets a validation failure by its dominant issue kind.
// Stateless; recomputed from the issue set every time. Spelling wins over
// layout, layout over missing content, because the recovery prompt
// corrections for spelling subsume the rest.
func ClassifyIssues(issues []models.Issue) models.FailureClass {
	var hasLayout, hasMissing bool

	for _, issue := range issues {
		switch issue.Code {
		case models.IssueSpelling:
			return models.FailureSpelling
		case models.IssueLayout:
			hasLayout = true
		case models.IssueMissingContent:
			hasMissing = true
		}
	}

	if hasLayout {
		return models.FailureLayout
	}
	if hasMissing {
		return models.FailureMissingContent
	}
	return models.FailureGeneralQuality
}
