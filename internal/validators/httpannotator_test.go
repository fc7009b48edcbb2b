// internal/validators/httpannotator_test.go
package validators

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creative-pipeline/internal/common/config"
	"creative-pipeline/internal/models"
)

// ==========================
// HTTP Annotator Tests
// ==========================

func annotatorServer(t *testing.T, response annotateResponse) (*httptest.Server, *annotateRequest) {
	var captured annotateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer vision-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

func annotatedArtifact() *models.Artifact {
	return &models.Artifact{
		OutputRef: "s3://generated/abc.png",
		Width:     1200,
		Height:    628,
		Format:    "png",
	}
}

func TestHTTPAnnotatorClient_AllSignals(t *testing.T) {
	server, captured := annotatorServer(t, annotateResponse{
		Semantic: &SemanticAnnotation{FaceCount: 1, SafetyScore: 0.98, Text: "Current rates"},
		Pixels:   &PixelAnnotation{Width: 1200, Height: 628, ColorVariance: 45, Brightness: 128, EdgeRatio: 0.15},
		Text:     "Current rates 6.5% NMLS #12345",
	})

	client := NewHTTPAnnotatorClient(config.SemanticValidatorConfig{
		Endpoint: server.URL,
		APIKey:   "vision-key",
	})
	ctx := context.Background()
	artifact := annotatedArtifact()

	semantic, err := client.SemanticAnnotator().Analyze(ctx, artifact)
	require.NoError(t, err)
	assert.Equal(t, 1, semantic.FaceCount)
	assert.InDelta(t, 0.98, semantic.SafetyScore, 1e-9)

	pixels, err := client.PixelAnnotator().Analyze(ctx, artifact)
	require.NoError(t, err)
	assert.Equal(t, 1200, pixels.Width)
	assert.InDelta(t, 45.0, pixels.ColorVariance, 1e-9)

	text, err := client.OCREngine().ExtractText(ctx, artifact)
	require.NoError(t, err)
	assert.Equal(t, "Current rates 6.5% NMLS #12345", text)

	assert.Equal(t, "s3://generated/abc.png", captured.OutputRef)
	assert.Equal(t, 1200, captured.Width)
	assert.Equal(t, "png", captured.Format)
}

func TestHTTPAnnotatorClient_ErrorPaths(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "backend outage",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "down", http.StatusServiceUnavailable)
			},
			wantErr: "returned 503",
		},
		{
			name: "backend error field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(annotateResponse{Error: "unreadable image"})
			},
			wantErr: "unreadable image",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
			wantErr: "malformed annotation response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewHTTPAnnotatorClient(config.SemanticValidatorConfig{Endpoint: server.URL})
			_, err := client.SemanticAnnotator().Analyze(context.Background(), annotatedArtifact())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPAnnotatorClient_MissingSignal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(annotateResponse{Text: "only text"})
	}))
	defer server.Close()

	client := NewHTTPAnnotatorClient(config.SemanticValidatorConfig{Endpoint: server.URL})
	ctx := context.Background()

	_, err := client.SemanticAnnotator().Analyze(ctx, annotatedArtifact())
	assert.ErrorContains(t, err, "missing semantic signal")

	_, err = client.PixelAnnotator().Analyze(ctx, annotatedArtifact())
	assert.ErrorContains(t, err, "missing pixel signal")

	text, err := client.OCREngine().ExtractText(ctx, annotatedArtifact())
	require.NoError(t, err)
	assert.Equal(t, "only text", text)
}

func TestHTTPAnnotatorClient_UnconfiguredEndpoint(t *testing.T) {
	client := NewHTTPAnnotatorClient(config.SemanticValidatorConfig{})
	_, err := client.SemanticAnnotator().Analyze(context.Background(), annotatedArtifact())
	assert.ErrorContains(t, err, "not configured")
}
