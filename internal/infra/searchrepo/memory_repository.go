package searchrepo

import (
	"context"
	"math"
	"sync"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/search"
)

type memoryQuery struct {
	record    search.QueryRecord
	embedding []float32
}

// MemoryRepository is an in-memory QueryRepository used for tests and local
// development.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64

	records map[int64]memoryQuery
	byText  map[string]int64
	byHash  map[uint64]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:  1,
		records: make(map[int64]memoryQuery),
		byText:  make(map[string]int64),
		byHash:  make(map[uint64]int64),
	}
}

func (r *MemoryRepository) FindExact(_ context.Context, query string) (search.QueryRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byText[query]
	if !ok {
		return search.QueryRecord{}, false, nil
	}
	return r.records[id].record, true, nil
}

func (r *MemoryRepository) FindBySemanticHash(_ context.Context, hash uint64) (search.QueryRecord, bool, error) {
	if hash == 0 {
		return search.QueryRecord{}, false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byHash[hash]
	if !ok {
		return search.QueryRecord{}, false, nil
	}
	return r.records[id].record, true, nil
}

func (r *MemoryRepository) FindNearest(_ context.Context, embedding []float32) (search.SimilarityMatch, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		best   search.SimilarityMatch
		hasAny bool
	)
	for _, candidate := range r.records {
		dist := euclideanDistance(embedding, candidate.embedding)
		if !hasAny || dist < best.Distance {
			hasAny = true
			best = search.SimilarityMatch{
				Query:    candidate.record,
				Distance: dist,
			}
		}
	}
	if !hasAny {
		return search.SimilarityMatch{}, false, nil
	}
	return best, true, nil
}

func (r *MemoryRepository) InsertQuery(_ context.Context, query string, embedding []float32, hash *uint64) (search.QueryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++

	record := search.QueryRecord{
		ID:        id,
		QueryText: query,
	}
	if hash != nil {
		clone := *hash
		record.SemanticHash = &clone
		r.byHash[clone] = id
	}

	r.records[id] = memoryQuery{
		record:    record,
		embedding: append([]float32(nil), embedding...),
	}
	r.byText[query] = id

	return record, nil
}

func euclideanDistance(a, b []float32) float64 {
	length := len(a)
	if len(b) < length {
		length = len(b)
	}
	var sum float64
	for i := 0; i < length; i++ {
		diff := float64(a[i] - b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

var _ search.QueryRepository = (*MemoryRepository)(nil)
