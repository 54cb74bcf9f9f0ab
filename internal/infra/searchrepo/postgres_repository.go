package searchrepo

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/search"
)

// PostgresRepository is the durable medicine-query index. Each row carries
// the query text, its embedding and an optional semantic hash.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// FindExact fetches by literal query text.
func (r *PostgresRepository) FindExact(ctx context.Context, query string) (search.QueryRecord, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, query_text, semantic_hash
		FROM medicine_queries
		WHERE query_text = $1
		LIMIT 1
	`, query)
	if err != nil {
		return search.QueryRecord{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return search.QueryRecord{}, false, rows.Err()
	}
	record, err := scanQueryRecord(rows)
	if err != nil {
		return search.QueryRecord{}, false, err
	}
	return record, true, rows.Err()
}

// FindBySemanticHash fetches by deterministic hash.
func (r *PostgresRepository) FindBySemanticHash(ctx context.Context, hash uint64) (search.QueryRecord, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, query_text, semantic_hash
		FROM medicine_queries
		WHERE semantic_hash = $1
		LIMIT 1
	`, int64(hash))
	if err != nil {
		return search.QueryRecord{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return search.QueryRecord{}, false, rows.Err()
	}
	record, err := scanQueryRecord(rows)
	if err != nil {
		return search.QueryRecord{}, false, err
	}
	return record, true, rows.Err()
}

// FindNearest returns the closest pgvector match.
func (r *PostgresRepository) FindNearest(ctx context.Context, embedding []float32) (search.SimilarityMatch, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, query_text, semantic_hash, embedding <-> $1 AS distance
		FROM medicine_queries
		ORDER BY embedding <-> $1
		LIMIT 1
	`, pgvector.NewVector(embedding))
	if err != nil {
		return search.SimilarityMatch{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return search.SimilarityMatch{}, false, rows.Err()
	}
	var distance float64
	record, err := scanQueryRecord(rows, &distance)
	if err != nil {
		return search.SimilarityMatch{}, false, err
	}
	match := search.SimilarityMatch{
		Query:    record,
		Distance: distance,
	}
	return match, true, rows.Err()
}

// InsertQuery inserts a new query row.
func (r *PostgresRepository) InsertQuery(ctx context.Context, query string, embedding []float32, hash *uint64) (search.QueryRecord, error) {
	var hashValue any
	if hash != nil {
		hashValue = int64(*hash)
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO medicine_queries (query_text, embedding, semantic_hash)
		VALUES ($1, $2, $3)
		RETURNING id, query_text, semantic_hash
	`, query, pgvector.NewVector(embedding), hashValue)
	record, err := scanQueryRecord(row)
	if err != nil {
		return search.QueryRecord{}, err
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQueryRecord(row rowScanner, extras ...any) (search.QueryRecord, error) {
	var (
		record   search.QueryRecord
		semantic sql.NullInt64
	)
	args := []any{&record.ID, &record.QueryText, &semantic}
	args = append(args, extras...)
	if err := row.Scan(args...); err != nil {
		return search.QueryRecord{}, err
	}
	if semantic.Valid {
		hash := uint64(semantic.Int64)
		record.SemanticHash = &hash
	}
	return record, nil
}

var _ search.QueryRepository = (*PostgresRepository)(nil)
