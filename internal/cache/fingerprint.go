// internal/cache/fingerprint.go
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"creative-pipeline/internal/models"
)

// Fingerprint derives the content-addressed cache key for a request. Only
// the canonical subset participates: content type, normalized prompt and
// identity, required text, preferences, and the output-shaping parameters
// (model, dimensions). Timestamps, free-form extras, and per-attempt
// sampling knobs (temperature, seed) must never affect the key.
func Fingerprint(req *models.Request) string {
	var b strings.Builder

	b.WriteString(string(req.ContentType))
	b.WriteByte('|')
	b.WriteString(normalize(req.Prompt))
	b.WriteByte('|')
	b.WriteString(normalize(req.Identity))

	required := make([]string, 0, len(req.RequiredText))
	for _, t := range req.RequiredText {
		required = append(required, normalize(t))
	}
	sort.Strings(required)
	for _, t := range required {
		b.WriteByte('|')
		b.WriteString(t)
	}

	prefKeys := make([]string, 0, len(req.Preferences))
	for k := range req.Preferences {
		prefKeys = append(prefKeys, k)
	}
	sort.Strings(prefKeys)
	for _, k := range prefKeys {
		b.WriteByte('|')
		b.WriteString(strings.ToLower(k))
		b.WriteByte('=')
		b.WriteString(normalize(req.Preferences[k]))
	}

	fmt.Fprintf(&b, "|model=%s|w=%d|h=%d",
		strings.ToLower(req.Parameters.Model), req.Parameters.Width, req.Parameters.Height)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// normalize lowercases and collapses runs of whitespace to single spaces.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
