package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"rag-assistant/internal/domain"
	"rag-assistant/internal/vectorstore"
)

// Splitter cuts document text into retrieval-sized pieces.
type Splitter interface {
	Split(text string) []string
}

// DocumentStore orchestrates chunking, embedding, and vector index
// insertion, and exposes similarity search by plain text.
type DocumentStore struct {
	splitter    Splitter
	embedder    domain.Embedder
	storage     vectorstore.Storage
	log         *zap.Logger
	initialized bool
}

func NewDocumentStore(splitter Splitter, embedder domain.Embedder, storage vectorstore.Storage, log *zap.Logger) *DocumentStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentStore{splitter: splitter, embedder: embedder, storage: storage, log: log}
}

// AddDocuments chunks, embeds, and upserts every document. An empty input
// is a warned no-op. Embedding or index failures propagate to the caller;
// entries inserted before the failure are not rolled back.
func (s *DocumentStore) AddDocuments(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		s.log.Warn("no documents to add")
		return nil
	}
	total := 0
	for _, d := range docs {
		chunks := s.splitter.Split(d.Text)
		if len(chunks) == 0 {
			s.log.Warn("document produced no chunks", zap.String("filename", d.Filename))
			continue
		}
		vectors, err := s.embedder.EmbedDocuments(ctx, chunks)
		if err != nil {
			return fmt.Errorf("embedding %s: %w", d.Filename, err)
		}
		if err := s.ensureInit(ctx, vectors); err != nil {
			return err
		}
		entries := make([]domain.IndexEntry, len(chunks))
		for i, text := range chunks {
			chunk := domain.Chunk{Text: text, Source: d.Filename, Index: i}
			entries[i] = domain.IndexEntry{
				ID:       chunk.ID(),
				Vector:   vectors[i],
				Text:     text,
				Metadata: map[string]string{"title": d.Filename},
			}
		}
		if err := s.storage.Upsert(ctx, entries); err != nil {
			return fmt.Errorf("indexing %s: %w", d.Filename, err)
		}
		total += len(entries)
		s.log.Debug("inserted chunks",
			zap.String("filename", d.Filename),
			zap.Int("chunks", len(entries)),
		)
	}
	s.log.Info("documents indexed", zap.Int("documents", len(docs)), zap.Int("chunks", total))
	return nil
}

// Search embeds the query and runs a nearest-neighbor lookup, returning up
// to topK results ordered by ascending distance. A blank query returns an
// empty result without contacting any backend.
func (s *DocumentStore) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		s.log.Warn("empty search query")
		return nil, nil
	}
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	results, err := s.storage.Query(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	s.log.Info("retrieved chunks", zap.Int("count", len(results)))
	return results, nil
}

func (s *DocumentStore) ensureInit(ctx context.Context, vectors [][]float64) error {
	if s.initialized {
		return nil
	}
	dim := s.embedder.Dimension()
	if dim <= 0 && len(vectors) > 0 {
		dim = len(vectors[0])
	}
	if err := s.storage.Init(ctx, dim); err != nil {
		return fmt.Errorf("initializing vector store: %w", err)
	}
	s.initialized = true
	return nil
}
