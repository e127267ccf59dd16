package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("TEST_EMBED_KEY", "sk-test")
	c, err := NewClient(Config{
		BaseURL:   srv.URL,
		APIKeyEnv: "TEST_EMBED_KEY",
		Model:     "test-embed",
		Timeout:   2 * time.Second,
		BatchSize: 2,
	})
	require.NoError(t, err)
	c.maxRetries = 1
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("TEST_EMBED_MISSING", "")
	_, err := NewClient(Config{APIKeyEnv: "TEST_EMBED_MISSING"})
	assert.Error(t, err)
}

func TestEmbedDocumentsBatchesAndOrders(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-embed", req.Model)
		// answer in reverse order to exercise index-based reordering
		type datum struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}
		data := make([]datum, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, datum{Index: i, Embedding: []float64{float64(i), 1}})
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	})

	vecs, err := c.EmbedDocuments(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, 2, calls, "batch size 2 over 3 texts should make 2 calls")
	assert.Equal(t, []float64{0, 1}, vecs[0])
	assert.Equal(t, []float64{1, 1}, vecs[1])
	assert.Equal(t, 2, c.Dimension())
}

func TestEmbedQueryRetriesOn429(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float64{0.5}}},
		})
	})
	vec, err := c.EmbedQuery(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, vec)
	assert.Equal(t, 2, calls)
}

func TestEmbedQueryClientErrorNotRetried(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})
	_, err := c.EmbedQuery(context.Background(), "hello")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
