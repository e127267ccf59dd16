package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"time"
)

// Client is an OpenAI-compatible embeddings client.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	batchSize  int
	dimension  int
	client     *http.Client
	maxRetries int
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
	BatchSize int
}

// NewClient creates a new embeddings client using the provided configuration.
// The API key is resolved from the environment variable named by APIKeyEnv.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		batchSize:  cfg.BatchSize,
		client:     &http.Client{Timeout: t},
		maxRetries: 5,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Dimension returns the dimensionality of the produced embedding vectors.
// It is learned from the first successful embedding call.
func (c *Client) Dimension() int { return c.dimension }

// EmbedQuery returns an embedding vector for a single text.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vecs, err := c.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedDocuments embeds all texts, issuing batched API calls.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	type reqBody struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}
	url := fmt.Sprintf("%s/embeddings", c.baseURL)
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, _ := json.Marshal(reqBody{Input: texts, Model: c.model})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if attempt < c.maxRetries {
				sleep(ctx, retryDelay(attempt))
				continue
			}
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			delay := retryDelay(attempt)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					delay = time.Duration(secs) * time.Second
				}
			}
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("embeddings request failed: %s", resp.Status)
			if attempt < c.maxRetries {
				sleep(ctx, delay)
				continue
			}
			return nil, lastErr
		}

		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			if attempt < c.maxRetries {
				sleep(ctx, retryDelay(attempt))
				continue
			}
			return nil, err
		}
		vecs, err := parseEmbeddings(payload, len(texts))
		if err != nil {
			lastErr = err
			if attempt < c.maxRetries {
				sleep(ctx, retryDelay(attempt))
				continue
			}
			return nil, err
		}
		if c.dimension == 0 && len(vecs) > 0 {
			c.dimension = len(vecs[0])
		}
		return vecs, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no embedding returned")
	}
	return nil, lastErr
}

func parseEmbeddings(payload []byte, want int) ([][]float64, error) {
	var out struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	if len(out.Data) != want {
		return nil, fmt.Errorf("expected %d embeddings, got %d", want, len(out.Data))
	}
	// The API may return entries out of order; index is authoritative.
	sort.Slice(out.Data, func(i, j int) bool { return out.Data[i].Index < out.Data[j].Index })
	vecs := make([][]float64, len(out.Data))
	for i, d := range out.Data {
		if len(d.Embedding) == 0 {
			return nil, errors.New("no embedding returned")
		}
		vecs[i] = d.Embedding
	}
	return vecs, nil
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
