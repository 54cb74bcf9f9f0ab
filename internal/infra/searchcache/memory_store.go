package searchcache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/search"
)

type cachedAnswer struct {
	payload   search.AnswerRecord
	expiresAt time.Time
}

// MemoryStore keeps cached answers and trending counters in process memory.
// It backs tests and local development without a Valkey instance.
type MemoryStore struct {
	mu       sync.RWMutex
	answers  map[int64]cachedAnswer
	trending map[string]int64
	displays map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		answers:  make(map[int64]cachedAnswer),
		trending: make(map[string]int64),
		displays: make(map[string]string),
	}
}

func (s *MemoryStore) GetAnswer(_ context.Context, queryID int64) (search.AnswerRecord, bool, error) {
	if queryID <= 0 {
		return search.AnswerRecord{}, false, nil
	}
	s.mu.RLock()
	record, ok := s.answers[queryID]
	s.mu.RUnlock()
	if !ok {
		return search.AnswerRecord{}, false, nil
	}
	if !record.expiresAt.IsZero() && record.expiresAt.Before(time.Now()) {
		s.mu.Lock()
		delete(s.answers, queryID)
		s.mu.Unlock()
		return search.AnswerRecord{}, false, nil
	}
	return record.payload, true, nil
}

func (s *MemoryStore) SaveAnswer(_ context.Context, record search.AnswerRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.answers[record.QueryID] = cachedAnswer{payload: record, expiresAt: exp}
	return nil
}

func (s *MemoryStore) IncrementQuery(_ context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trending[canonical]++
	if _, exists := s.displays[canonical]; !exists {
		s.displays[canonical] = display
	}
	return nil
}

func (s *MemoryStore) TopQueries(_ context.Context, limit int) ([]search.TrendingQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = len(s.trending)
	}
	items := make([]search.TrendingQuery, 0, len(s.trending))
	for canonical, count := range s.trending {
		display := s.displays[canonical]
		if display == "" {
			display = canonical
		}
		items = append(items, search.TrendingQuery{Query: display, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Query < items[j].Query
		}
		return items[i].Count > items[j].Count
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

var _ search.Store = (*MemoryStore)(nil)
