package chroma

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-assistant/internal/domain"
)

func TestInitGetOrCreatesCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/collections", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "my_docs", body["name"])
		assert.Equal(t, true, body["get_or_create"])
		json.NewEncoder(w).Encode(map[string]string{"id": "col-123"})
	}))
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL, Collection: "my_docs"})
	require.NoError(t, s.Init(context.Background(), 3))
	assert.Equal(t, "col-123", s.collectionID)
}

func TestUpsertSendsParallelArrays(t *testing.T) {
	var got struct {
		IDs        []string            `json:"ids"`
		Embeddings [][]float64         `json:"embeddings"`
		Documents  []string            `json:"documents"`
		Metadatas  []map[string]string `json:"metadatas"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/collections":
			json.NewEncoder(w).Encode(map[string]string{"id": "col-1"})
		case "/api/v1/collections/col-1/upsert":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	s := NewStorage(Config{URL: srv.URL, Collection: "c"})
	require.NoError(t, s.Init(ctx, 2))
	err := s.Upsert(ctx, []domain.IndexEntry{
		{ID: "a.txt_chunk_0", Vector: []float64{1, 0}, Text: "alpha", Metadata: map[string]string{"title": "a.txt"}},
		{ID: "a.txt_chunk_1", Vector: []float64{0, 1}, Text: "beta", Metadata: map[string]string{"title": "a.txt"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt_chunk_0", "a.txt_chunk_1"}, got.IDs)
	assert.Equal(t, []string{"alpha", "beta"}, got.Documents)
	assert.Equal(t, "a.txt", got.Metadatas[0]["title"])
}

func TestQueryParsesNestedResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/collections":
			json.NewEncoder(w).Encode(map[string]string{"id": "col-1"})
		case "/api/v1/collections/col-1/query":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.EqualValues(t, 2, body["n_results"])
			json.NewEncoder(w).Encode(map[string]any{
				"documents": [][]string{{"near text", "far text"}},
				"metadatas": [][]map[string]string{{{"title": "a.txt"}, {"title": "b.txt"}}},
				"distances": [][]float64{{0.1, 0.8}},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	s := NewStorage(Config{URL: srv.URL})
	require.NoError(t, s.Init(ctx, 2))
	results, err := s.Query(ctx, []float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near text", results[0].Text)
	assert.Equal(t, "a.txt", results[0].Title())
	assert.InDelta(t, 0.1, results[0].Distance, 1e-9)
	assert.Equal(t, "b.txt", results[1].Title())
}

func TestErrorsPropagate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL})
	err := s.Init(context.Background(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestUpsertRequiresInit(t *testing.T) {
	s := NewStorage(Config{URL: "http://127.0.0.1:0"})
	err := s.Upsert(context.Background(), nil)
	assert.Error(t, err)
}
