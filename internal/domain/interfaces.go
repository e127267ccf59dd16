package domain

import (
	"context"
	"strconv"
)

// Document is a single plain-text file loaded for ingestion.
// Filename doubles as the display title of the document.
type Document struct {
	Filename string
	Text     string
}

// Chunk is a bounded-length piece of a document, the unit of retrieval.
type Chunk struct {
	Text   string
	Source string
	Index  int
}

// ID returns the stable external identifier of the chunk. Re-ingesting the
// same document with the same chunking parameters yields the same ids, so
// stores treat insertion as an upsert.
func (c Chunk) ID() string {
	return c.Source + "_chunk_" + strconv.Itoa(c.Index)
}

// IndexEntry is what gets persisted in the vector store: one chunk,
// its embedding, and its metadata.
type IndexEntry struct {
	ID       string
	Vector   []float64
	Text     string
	Metadata map[string]string
}

// SearchResult is a retrieved chunk with its metadata and its distance to
// the query vector. Smaller distance means more similar.
type SearchResult struct {
	Text     string
	Metadata map[string]string
	Distance float64
}

// Title returns the source document title from the result metadata.
func (r SearchResult) Title() string {
	return r.Metadata["title"]
}

// QueryResponse is the assistant's answer paired with the distinct source
// titles that grounded it, in first-occurrence order.
type QueryResponse struct {
	Answer  string
	Sources []string
}

// Embedder converts text into fixed-dimension numeric vectors.
// The dimensionality is fixed per instance and must match the vector store.
type Embedder interface {
	Name() string
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// VectorStore persists index entries and supports nearest-neighbor search.
// Results come back ordered by ascending distance.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, entries []IndexEntry) error
	Query(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
}

// Generator is a black-box text completion service. Invoke returns the
// plain answer text; each backend extracts it from its own wire format.
type Generator interface {
	Name() string
	Invoke(ctx context.Context, prompt string) (string, error)
}
