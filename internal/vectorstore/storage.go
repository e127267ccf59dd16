package vectorstore

import (
	"context"

	"rag-assistant/internal/domain"
)

// Storage persists index entries and supports nearest-neighbor search.
// Inserting an entry with an existing id overwrites it.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, entries []domain.IndexEntry) error
	Query(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error)
}
