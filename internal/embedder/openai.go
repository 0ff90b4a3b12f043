package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	defaultModel   = "text-embedding-3-small"
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 60 * time.Second
	defaultRPS     = 5

	// batchSize bounds how many inputs go into one embeddings request.
	batchSize = 64
)

// Config holds the settings for the OpenAI embeddings client.
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	Dimension         int
	Timeout           time.Duration
	RequestsPerSecond float64
}

// OpenAI calls the OpenAI embeddings API. Requests are rate limited and
// transient failures (network errors, 429, 5xx) are retried with
// exponential backoff.
type OpenAI struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions *int     `json:"dimensions,omitempty"`
}

type embeddingItem struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingResponse struct {
	Data []embeddingItem `json:"data"`
}

// NewOpenAI creates an embeddings client, applying defaults for unset fields.
func NewOpenAI(config Config) (*OpenAI, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("embedder: API key is required")
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if config.Dimension <= 0 {
		config.Dimension = DefaultDimension
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}

	return &OpenAI{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

func (o *OpenAI) Dimension() int {
	return o.config.Dimension
}

// Embed returns the vector for a single text.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in request-sized chunks and returns the vectors in
// input order.
func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := o.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (o *OpenAI) embedChunk(ctx context.Context, chunk []string) ([][]float32, error) {
	payload := embeddingRequest{
		Model: o.config.Model,
		Input: chunk,
	}
	if o.config.Dimension > 0 {
		payload.Dimensions = &o.config.Dimension
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal embeddings request: %w", err)
	}

	var vectors [][]float32

	operation := func() error {
		if err := o.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.config.BaseURL+"/embeddings", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create embeddings request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+o.config.APIKey)

		resp, err := o.client.Do(req)
		if err != nil {
			return fmt.Errorf("embeddings request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read embeddings response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("embeddings API status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("embeddings API status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
		}

		var parsed embeddingResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("decode embeddings response: %w", err))
		}
		if len(parsed.Data) != len(chunk) {
			return backoff.Permanent(fmt.Errorf("embeddings API returned %d vectors for %d inputs", len(parsed.Data), len(chunk)))
		}

		vectors = make([][]float32, len(chunk))
		for _, item := range parsed.Data {
			if item.Index < 0 || item.Index >= len(chunk) {
				continue
			}
			vectors[item.Index] = item.Embedding
		}
		for i, v := range vectors {
			if len(v) == 0 {
				return backoff.Permanent(fmt.Errorf("embeddings API returned no vector for input %d", i))
			}
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return vectors, nil
}
