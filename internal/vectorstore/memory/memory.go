package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"rag-assistant/internal/domain"
)

// Storage is an in-memory vector store using brute-force cosine distance.
// Entries are keyed by id; re-upserting an id overwrites the previous entry.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	slots     map[string]int
	entries   []domain.IndexEntry
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == dimension {
		// Re-opening an existing collection keeps its entries.
		return nil
	}
	s.dimension = dimension
	s.slots = make(map[string]int)
	s.entries = nil
	return nil
}

func (s *Storage) Upsert(_ context.Context, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return errors.New("storage not initialized")
	}
	for _, e := range entries {
		if len(e.Vector) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for _, e := range entries {
		if i, ok := s.slots[e.ID]; ok {
			s.entries[i] = e
			continue
		}
		s.slots[e.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return nil
}

func (s *Storage) Query(_ context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	distances := make([]float64, len(s.entries))
	for i := range s.entries {
		distances[i] = cosineDistance(s.entries[i].Vector, vector)
	}
	idxs := make([]int, len(s.entries))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return distances[idxs[a]] < distances[idxs[b]] })
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.SearchResult{
			Text:     s.entries[j].Text,
			Metadata: s.entries[j].Metadata,
			Distance: distances[j],
		})
	}
	return results, nil
}

// Len returns the number of stored entries.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cosineDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
