package transformer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/humantone/internal/placeholder"
	"github.com/valpere/humantone/internal/postprocess"
)

// OpenAITransformer rewrites text through an OpenAI-compatible chat
// completions endpoint (OpenAI, OpenRouter, or any server speaking the same
// protocol).
type OpenAITransformer struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenAITransformer(apiKey, baseURL, model string) *OpenAITransformer {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAITransformer{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 180 * time.Second},
	}
}

func (t *OpenAITransformer) Rewrite(ctx context.Context, req Request) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key required")
	}

	masked, guard := placeholder.Protect(req.Text)
	req.Text = masked
	profile := ProfileFor(req.Mode)

	reqBody := map[string]interface{}{
		"model": t.model,
		"messages": []map[string]string{
			{"role": "system", "content": profile.SystemPrompt},
			{"role": "user", "content": BuildPrompt(req, guard.Count() > 0)},
		},
		"max_tokens":  4096,
		"temperature": 0.9,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/chat/completions", t.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.apiKey))

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("rewrite request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("API returned status %d: %v", resp.StatusCode, errResp)
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	out := postprocess.Clean(chatResp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("model returned empty rewrite")
	}
	return guard.Restore(out), nil
}
