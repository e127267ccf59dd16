package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"rag-assistant/internal/domain"
)

// Storage is a minimal REST client to a Chroma server. Collections are
// created on demand and persist server-side, so re-opening the same
// collection name sees previously inserted entries.
type Storage struct {
	url          string
	collection   string
	collectionID string
	dimension    int
	client       *http.Client
}

type Config struct {
	URL        string
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
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init resolves (creating if needed) the collection and records its id.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	body := map[string]any{
		"name":          s.collection,
		"get_or_create": true,
		"metadata":      map[string]any{"hnsw:space": "cosine"},
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections", s.url), body, &resp); err != nil {
		return err
	}
	if resp.ID == "" {
		return errors.New("chroma returned no collection id")
	}
	s.collectionID = resp.ID
	return nil
}

func (s *Storage) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if s.collectionID == "" {
		return errors.New("storage not initialized")
	}
	ids := make([]string, len(entries))
	embeddings := make([][]float64, len(entries))
	documents := make([]string, len(entries))
	metadatas := make([]map[string]string, len(entries))
	for i, e := range entries {
		if len(e.Vector) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
		ids[i] = e.ID
		embeddings[i] = e.Vector
		documents[i] = e.Text
		metadatas[i] = e.Metadata
	}
	body := map[string]any{
		"ids":        ids,
		"embeddings": embeddings,
		"documents":  documents,
		"metadatas":  metadatas,
	}
	url := fmt.Sprintf("%s/api/v1/collections/%s/upsert", s.url, s.collectionID)
	return s.postJSON(ctx, url, body, nil)
}

func (s *Storage) Query(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if s.collectionID == "" {
		return nil, errors.New("storage not initialized")
	}
	if topK <= 0 {
		topK = 5
	}
	body := map[string]any{
		"query_embeddings": [][]float64{vector},
		"n_results":        topK,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	var resp struct {
		Documents [][]string            `json:"documents"`
		Metadatas [][]map[string]string `json:"metadatas"`
		Distances [][]float64           `json:"distances"`
	}
	url := fmt.Sprintf("%s/api/v1/collections/%s/query", s.url, s.collectionID)
	if err := s.postJSON(ctx, url, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Documents) == 0 {
		return nil, nil
	}
	docs := resp.Documents[0]
	results := make([]domain.SearchResult, 0, len(docs))
	for i := range docs {
		r := domain.SearchResult{Text: docs[i]}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			r.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			r.Distance = resp.Distances[0][i]
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *Storage) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("chroma POST %s failed: %s: %s", url, resp.Status, bytes.TrimSpace(msg))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
