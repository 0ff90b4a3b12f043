package analyser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/humantone/internal"
	"github.com/valpere/humantone/internal/embedder"
	"github.com/valpere/humantone/internal/postprocess"
)

// maxAnalysisRunes caps how much of the input the analysis prompt carries.
const maxAnalysisRunes = 1000

const analyserSystemPrompt = `You are an expert AI writing pattern detector.

Your role:
- Analyse input text for AI-generated characteristics
- Identify formal structures, repetitive phrasing, and predictable patterns
- Extract topic, tone, and sentence structure information

AI writing red flags to detect:
- Overuse of transitions: "Moreover", "Furthermore", "In conclusion", "Additionally"
- Repetitive sentence structures
- Excessive formality and politeness
- Predictable word choices and phrasing
- Lack of personal voice or authentic emotion
- Perfectly balanced arguments
- Over-explanation

Respond with a JSON object containing ai_patterns (list of strings), topic (string), tone (string), and sentence_patterns (list of strings).`

// OpenAIAnalyser runs the analysis through an OpenAI-compatible chat
// completions endpoint. The embedder is optional; without one the returned
// analysis carries no embedding and retrieval falls back to type lookup.
type OpenAIAnalyser struct {
	apiKey   string
	baseURL  string
	model    string
	client   *http.Client
	embedder embedder.Embedder
}

func NewOpenAIAnalyser(apiKey, baseURL, model string, emb embedder.Embedder) *OpenAIAnalyser {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIAnalyser{
		apiKey:   apiKey,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		model:    model,
		client:   &http.Client{Timeout: 120 * time.Second},
		embedder: emb,
	}
}

func (a *OpenAIAnalyser) Analyse(ctx context.Context, text string) (*internal.Analysis, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}

	reqBody := map[string]interface{}{
		"model": a.model,
		"messages": []map[string]string{
			{"role": "system", "content": analyserSystemPrompt},
			{"role": "user", "content": buildAnalysisPrompt(text)},
		},
		"response_format": map[string]string{"type": "json_object"},
		"max_tokens":      1024,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/chat/completions", a.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", a.apiKey))

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("API returned status %d: %v", resp.StatusCode, errResp)
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	var parsed struct {
		AIPatterns       []string `json:"ai_patterns"`
		Topic            string   `json:"topic"`
		Tone             string   `json:"tone"`
		SentencePatterns []string `json:"sentence_patterns"`
	}
	content := postprocess.Clean(chatResp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}

	analysis := &internal.Analysis{
		Patterns:         parsed.AIPatterns,
		Topic:            parsed.Topic,
		Tone:             parsed.Tone,
		SentencePatterns: parsed.SentencePatterns,
	}

	if a.embedder != nil {
		vec, err := a.embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text: %w", err)
		}
		analysis.Embedding = vec
	}

	return analysis, nil
}

func buildAnalysisPrompt(text string) string {
	var sb strings.Builder

	sb.WriteString("Analyse this text and identify:\n")
	sb.WriteString("1. AI-generated patterns (repetitive phrasing, formal structure, transitions)\n")
	sb.WriteString("2. Main topic/subject matter\n")
	sb.WriteString("3. Current tone and writing style\n")
	sb.WriteString("4. Sentence structure patterns\n\n")
	sb.WriteString("Text to analyse:\n")
	sb.WriteString(truncateRunes(text, maxAnalysisRunes))
	sb.WriteString("\n\nProvide detailed analysis.")

	return sb.String()
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
