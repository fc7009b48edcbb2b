// internal/cache/fingerprint_test.go
package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"creative-pipeline/internal/models"
)

// ==========================
// Fingerprint Determinism
// ==========================

func baseRequest() *models.Request {
	return &models.Request{
		ContentType:  models.ContentTypeRateUpdate,
		Prompt:       "Current rates banner",
		Identity:     "Jane Smith",
		RequiredText: []string{"6.5%", "NMLS #12345"},
		Preferences:  map[string]string{"style": "modern"},
		Parameters:   models.Parameters{Model: "ideogram-v2", Width: 1200, Height: 628},
	}
}

func TestFingerprint_NormalizationStability(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Request)
	}{
		{
			name:   "identical request",
			mutate: func(r *models.Request) {},
		},
		{
			name: "prompt case differs",
			mutate: func(r *models.Request) {
				r.Prompt = "CURRENT RATES BANNER"
			},
		},
		{
			name: "prompt whitespace differs",
			mutate: func(r *models.Request) {
				r.Prompt = "  Current   rates\tbanner "
			},
		},
		{
			name: "required text order differs",
			mutate: func(r *models.Request) {
				r.RequiredText = []string{"NMLS #12345", "6.5%"}
			},
		},
		{
			name: "free-form extras differ",
			mutate: func(r *models.Request) {
				r.Extras = map[string]interface{}{"requestedAt": "2024-06-01T10:00:00Z"}
			},
		},
		{
			name: "request id differs",
			mutate: func(r *models.Request) {
				r.ID = "some-other-id"
			},
		},
		{
			name: "per-attempt sampling knobs differ",
			mutate: func(r *models.Request) {
				r.Parameters.Temperature = 0.9
				r.Parameters.Seed = 42
			},
		},
	}

	reference := Fingerprint(baseRequest())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(req)
			assert.Equal(t, reference, Fingerprint(req))
		})
	}
}

func TestFingerprint_Sensitivity(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Request)
	}{
		{
			name: "prompt wording changes",
			mutate: func(r *models.Request) {
				r.Prompt = "Current rates poster"
			},
		},
		{
			name: "content type changes",
			mutate: func(r *models.Request) {
				r.ContentType = models.ContentTypeSocialMedia
			},
		},
		{
			name: "identity changes",
			mutate: func(r *models.Request) {
				r.Identity = "John Doe"
			},
		},
		{
			name: "required text changes",
			mutate: func(r *models.Request) {
				r.RequiredText = []string{"6.9%", "NMLS #12345"}
			},
		},
		{
			name: "preferences change",
			mutate: func(r *models.Request) {
				r.Preferences["style"] = "classic"
			},
		},
		{
			name: "model changes",
			mutate: func(r *models.Request) {
				r.Parameters.Model = "flux-1.1-pro"
			},
		},
		{
			name: "dimensions change",
			mutate: func(r *models.Request) {
				r.Parameters.Width = 1080
			},
		},
	}

	reference := Fingerprint(baseRequest())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(req)
			assert.NotEqual(t, reference, Fingerprint(req))
		})
	}
}

func TestFingerprint_Format(t *testing.T) {
	fp := Fingerprint(baseRequest())
	assert.Len(t, fp, 64) // hex-encoded sha256
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkFingerprint(b *testing.B) {
	req := baseRequest()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Fingerprint(req)
	}
}
