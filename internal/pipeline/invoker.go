// internal/pipeline/invoker.go
package pipeline

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

// HTTPInvoker calls a generation backend over a plain JSON webhook. Which
// vendor sits behind the endpoint is the deployment's business; the
// pipeline only needs the {outputRef, modelId} contract back.
type HTTPInvoker struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewHTTPInvoker builds an invoker for the configured generation endpoint.
func NewHTTPInvoker(cfg config.GenerationConfig) *HTTPInvoker {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPInvoker{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.DefaultModel,
		client:   &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Prompt     string            `json:"prompt"`
	Parameters models.Parameters `json:"parameters"`
}

type generateResponse struct {
	OutputRef string `json:"outputRef"`
	ModelID   string `json:"modelId"`
	SizeBytes int64  `json:"sizeBytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Error     string `json:"error,omitempty"`
}

func (inv *HTTPInvoker) Generate(ctx context.Context, prompt string, params models.Parameters) (*models.Artifact, error) {
	if inv.endpoint == "" {
		return nil, fmt.Errorf("generation endpoint not configured")
	}
	if params.Model == "" {
		params.Model = inv.model
	}

	body, err := json.Marshal(generateRequest{Prompt: prompt, Parameters: params})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inv.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if inv.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+inv.apiKey)
	}

	resp, err := inv.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation backend returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("malformed generation response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("generation backend error: %s", out.Error)
	}
	if out.OutputRef == "" {
		return nil, fmt.Errorf("generation response missing outputRef")
	}

	if out.ModelID == "" {
		out.ModelID = params.Model
	}
	return &models.Artifact{
		OutputRef: out.OutputRef,
		ModelID:   out.ModelID,
		SizeBytes: out.SizeBytes,
		Width:     out.Width,
		Height:    out.Height,
		Format:    out.Format,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
