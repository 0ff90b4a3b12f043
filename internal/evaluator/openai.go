package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/humantone/internal"
	"github.com/valpere/humantone/internal/postprocess"
)

// maxJudgeRunes caps how much of the candidate the judge prompt carries.
const maxJudgeRunes = 1000

const judgeSystemPrompt = `You are an expert at evaluating human vs AI writing.

Your role:
- Evaluate text for human-likeness
- Detect remaining AI patterns
- Assess natural flow and authentic voice
- Provide actionable feedback for improvement

Evaluation criteria:
1. Natural flow and varied sentence structure
2. Absence of AI patterns (repetitive transitions, formal tone)
3. Authentic voice and personality
4. Appropriate use of contractions and colloquialisms
5. Mode-specific quality (sales or journalist style)

Scoring guidelines:
- 0.9-1.0: Excellent, indistinguishable from human writing
- 0.75-0.89: Good, minor AI patterns remain
- 0.6-0.74: Adequate, noticeable AI characteristics
- Below 0.6: Poor, needs significant improvement

Respond with a JSON object containing score (number 0.0-1.0), strengths
(list of strings), weaknesses (list of strings), and feedback (list of
specific improvement suggestions).`

// OpenAIJudge grades text through an OpenAI-compatible chat completions
// endpoint with a JSON response format.
type OpenAIJudge struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenAIJudge(apiKey, baseURL, model string) *OpenAIJudge {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIJudge{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (j *OpenAIJudge) Judge(ctx context.Context, text string, mode internal.Mode) (*internal.Evaluation, error) {
	if j.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}

	reqBody := map[string]interface{}{
		"model": j.model,
		"messages": []map[string]string{
			{"role": "system", "content": judgeSystemPrompt},
			{"role": "user", "content": buildJudgePrompt(text, mode)},
		},
		"response_format": map[string]string{"type": "json_object"},
		"max_tokens":      1024,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/chat/completions", j.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", j.apiKey))

	resp, err := j.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("judge request failed: %w", err)
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

	var eval internal.Evaluation
	content := postprocess.Clean(chatResp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &eval); err != nil {
		return nil, fmt.Errorf("failed to parse judgment: %w", err)
	}

	return &eval, nil
}

func buildJudgePrompt(text string, mode internal.Mode) string {
	var sb strings.Builder

	sb.WriteString("Evaluate this text for human-likeness on a scale of 0.0 to 1.0.\n\n")
	sb.WriteString("Text: ")
	sb.WriteString(truncateRunes(text, maxJudgeRunes))
	fmt.Fprintf(&sb, "\n\nMode: %s\n\n", mode)
	sb.WriteString("Check for:\n")
	sb.WriteString("1. Natural flow and varied sentence structure\n")
	sb.WriteString("2. Absence of AI patterns (repetitive transitions, formal tone)\n")
	sb.WriteString("3. Authentic voice and personality\n")
	sb.WriteString("4. Appropriate use of contractions and colloquialisms\n")
	fmt.Fprintf(&sb, "5. Mode-specific quality (%s style)\n\n", mode)
	sb.WriteString("Provide detailed evaluation with score, strengths, weaknesses, and specific feedback.")

	return sb.String()
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
