package transformer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valpere/humantone/internal/placeholder"
	"github.com/valpere/humantone/internal/postprocess"
)

// OllamaTransformer rewrites text with a self-hosted Ollama model. The style
// profile's system prompt is folded into the generate prompt because the
// /api/generate endpoint takes a single prompt string.
type OllamaTransformer struct {
	model   string
	baseURL string
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func NewOllamaTransformer(model, baseURL string) *OllamaTransformer {
	if model == "" {
		model = "llama3.1:8b"
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaTransformer{
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 180 * time.Second},
	}
}

func (t *OllamaTransformer) Rewrite(ctx context.Context, req Request) (string, error) {
	masked, guard := placeholder.Protect(req.Text)
	req.Text = masked
	profile := ProfileFor(req.Mode)

	reqBody := ollamaRequest{
		Model:  t.model,
		Prompt: BuildPrompt(req, guard.Count() > 0),
		System: profile.SystemPrompt,
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rewrite request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", t.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create rewrite request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("rewrite request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("rewriter returned status %d", resp.StatusCode)
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode rewrite response: %w", err)
	}

	out := postprocess.Clean(ollamaResp.Response)
	if out == "" {
		return "", fmt.Errorf("model returned empty rewrite")
	}
	return guard.Restore(out), nil
}
