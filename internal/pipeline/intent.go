// internal/pipeline/intent.go
package pipeline

import (
	"strings"

	"creative-pipeline/internal/models"
)

// DetectContentType infers the content type from the request when the
// caller did not set one. Keyword heuristics mirror how requests are
// actually phrased; anything unrecognized lands on general.
func DetectContentType(req *models.Request) models.ContentType {
	if req.ContentType.Valid() {
		return req.ContentType
	}

	prompt := strings.ToLower(req.Prompt)

	switch {
	case containsAny(prompt, "rate", "apr", "interest", "%"):
		return models.ContentTypeRateUpdate
	case containsAny(prompt, "instagram", "facebook", "social", "post", "story"):
		return models.ContentTypeSocialMedia
	case containsAny(prompt, "photo", "headshot", "portrait", "realistic"):
		return models.ContentTypePhoto
	case len(req.RequiredText) > 0:
		return models.ContentTypeText
	default:
		return models.ContentTypeGeneral
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
