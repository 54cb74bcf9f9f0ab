package search

import (
	"context"
	"time"
)

// Store defines the persistence contract for cached answers and trending
// query counters.
type Store interface {
	GetAnswer(ctx context.Context, queryID int64) (AnswerRecord, bool, error)
	SaveAnswer(ctx context.Context, record AnswerRecord, ttl time.Duration) error
	IncrementQuery(ctx context.Context, canonical, display string) error
	TopQueries(ctx context.Context, limit int) ([]TrendingQuery, error)
}

// SimilarityMatch contains the best pgvector match and its distance.
type SimilarityMatch struct {
	Query    QueryRecord
	Distance float64
}

// QueryRepository encapsulates the durable query index.
type QueryRepository interface {
	FindExact(ctx context.Context, query string) (QueryRecord, bool, error)
	FindBySemanticHash(ctx context.Context, hash uint64) (QueryRecord, bool, error)
	FindNearest(ctx context.Context, embedding []float32) (SimilarityMatch, bool, error)
	InsertQuery(ctx context.Context, query string, embedding []float32, hash *uint64) (QueryRecord, error)
}
