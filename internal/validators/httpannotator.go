// internal/validators/httpannotator.go
package validators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"creative-pipeline/internal/common/config"
	"creative-pipeline/internal/models"
)

// HTTPAnnotatorClient calls the annotation backend over a plain JSON
// webhook. One request returns the semantic, pixel and OCR signals for an
// output; the per-signal accessors below adapt the shared client to the
// individual annotator contracts the pipeline consumes.
type HTTPAnnotatorClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPAnnotatorClient builds a client for the configured annotation
// endpoint.
func NewHTTPAnnotatorClient(cfg config.SemanticValidatorConfig) *HTTPAnnotatorClient {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPAnnotatorClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type annotateRequest struct {
	OutputRef string `json:"outputRef"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Format    string `json:"format,omitempty"`
}

type annotateResponse struct {
	Semantic *SemanticAnnotation `json:"semantic,omitempty"`
	Pixels   *PixelAnnotation    `json:"pixels,omitempty"`
	Text     string              `json:"text,omitempty"`
	Error    string              `json:"error,omitempty"`
}

func (c *HTTPAnnotatorClient) annotate(ctx context.Context, artifact *models.Artifact) (*annotateResponse, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("annotation endpoint not configured")
	}
	if artifact == nil || artifact.OutputRef == "" {
		return nil, fmt.Errorf("nothing to annotate")
	}

	body, err := json.Marshal(annotateRequest{
		OutputRef: artifact.OutputRef,
		Width:     artifact.Width,
		Height:    artifact.Height,
		Format:    artifact.Format,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("annotation backend returned %d", resp.StatusCode)
	}

	var out annotateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("malformed annotation response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("annotation backend error: %s", out.Error)
	}
	return &out, nil
}

// SemanticAnnotator adapts the client to the vision/LLM contract.
func (c *HTTPAnnotatorClient) SemanticAnnotator() SemanticAnnotator {
	return semanticClient{c}
}

// PixelAnnotator adapts the client to the technical analysis contract.
func (c *HTTPAnnotatorClient) PixelAnnotator() PixelAnnotator {
	return pixelClient{c}
}

// OCREngine adapts the client to the text extraction contract.
func (c *HTTPAnnotatorClient) OCREngine() OCREngine {
	return ocrClient{c}
}

type semanticClient struct{ c *HTTPAnnotatorClient }

func (a semanticClient) Analyze(ctx context.Context, artifact *models.Artifact) (*SemanticAnnotation, error) {
	out, err := a.c.annotate(ctx, artifact)
	if err != nil {
		return nil, err
	}
	if out.Semantic == nil {
		return nil, fmt.Errorf("annotation response missing semantic signal")
	}
	return out.Semantic, nil
}

type pixelClient struct{ c *HTTPAnnotatorClient }

func (a pixelClient) Analyze(ctx context.Context, artifact *models.Artifact) (*PixelAnnotation, error) {
	out, err := a.c.annotate(ctx, artifact)
	if err != nil {
		return nil, err
	}
	if out.Pixels == nil {
		return nil, fmt.Errorf("annotation response missing pixel signal")
	}
	return out.Pixels, nil
}

type ocrClient struct{ c *HTTPAnnotatorClient }

func (a ocrClient) ExtractText(ctx context.Context, artifact *models.Artifact) (string, error) {
	out, err := a.c.annotate(ctx, artifact)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}
