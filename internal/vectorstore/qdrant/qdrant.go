package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rag-assistant/internal/domain"
)

// Storage is a minimal REST client to Qdrant.
// It assumes cosine distance and creates the collection if missing.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "rag_docs"
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	// Create collection if not exists; 200 OK when it already does.
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

func (s *Storage) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		if len(e.Vector) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
		payload := map[string]any{
			"external_id": e.ID,
			"text":        e.Text,
		}
		for k, v := range e.Metadata {
			payload[k] = v
		}
		points[i] = map[string]any{
			"id":      e.ID,
			"vector":  e.Vector,
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

func (s *Storage) Query(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		res := domain.SearchResult{
			Metadata: map[string]string{},
			// Qdrant reports cosine similarity; callers expect distance.
			Distance: 1 - r.Score,
		}
		for k, v := range r.Payload {
			sv, ok := v.(string)
			if !ok {
				continue
			}
			if k == "text" {
				res.Text = sv
				continue
			}
			if k != "external_id" {
				res.Metadata[k] = sv
			}
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Storage) putJSON(ctx context.Context, url string, body any) error {
	return s.send(ctx, http.MethodPut, url, body, nil)
}

func (s *Storage) postJSON(ctx context.Context, url string, body any, out any) error {
	return s.send(ctx, http.MethodPost, url, body, out)
}

func (s *Storage) send(ctx context.Context, method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
