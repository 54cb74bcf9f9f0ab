package search

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/llm/gemini"
	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
)

type stubGenerate struct {
	text    string
	sources []gemini.WebSource
	calls   int
}

func (s *stubGenerate) GenerateContent(context.Context, string, gemini.GenerateContentRequest) (gemini.GenerateContentResponse, error) {
	s.calls++
	chunks := make([]gemini.GroundingChunk, 0, len(s.sources))
	for i := range s.sources {
		chunks = append(chunks, gemini.GroundingChunk{Web: &s.sources[i]})
	}
	return gemini.GenerateContentResponse{Candidates: []gemini.Candidate{{
		Content:           gemini.Content{Parts: []gemini.Part{{Text: s.text}}},
		GroundingMetadata: &gemini.GroundingMetadata{GroundingChunks: chunks},
	}}}, nil
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

type memRepo struct {
	mu     sync.Mutex
	nextID int64
	byText map[string]QueryRecord
	byHash map[uint64]QueryRecord
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, byText: map[string]QueryRecord{}, byHash: map[uint64]QueryRecord{}}
}

func (r *memRepo) FindExact(_ context.Context, query string) (QueryRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byText[query]
	return rec, ok, nil
}

func (r *memRepo) FindBySemanticHash(_ context.Context, hash uint64) (QueryRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byHash[hash]
	return rec, ok, nil
}

func (r *memRepo) FindNearest(context.Context, []float32) (SimilarityMatch, bool, error) {
	return SimilarityMatch{}, false, nil
}

func (r *memRepo) InsertQuery(_ context.Context, query string, _ []float32, hash *uint64) (QueryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := QueryRecord{ID: r.nextID, QueryText: query, SemanticHash: hash}
	r.nextID++
	r.byText[query] = rec
	if hash != nil {
		r.byHash[*hash] = rec
	}
	return rec, nil
}

type memStore struct {
	mu       sync.Mutex
	answers  map[int64]AnswerRecord
	trending map[string]int64
}

func newMemStore() *memStore {
	return &memStore{answers: map[int64]AnswerRecord{}, trending: map[string]int64{}}
}

func (s *memStore) GetAnswer(_ context.Context, queryID int64) (AnswerRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.answers[queryID]
	return rec, ok, nil
}

func (s *memStore) SaveAnswer(_ context.Context, record AnswerRecord, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[record.QueryID] = record
	return nil
}

func (s *memStore) IncrementQuery(_ context.Context, canonical, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trending[canonical]++
	return nil
}

func (s *memStore) TopQueries(context.Context, int) ([]TrendingQuery, error) {
	return nil, nil
}

func newSearchService(client generateClient) (Service, *memRepo, *memStore) {
	repo := newMemRepo()
	store := newMemStore()
	svc := NewService(Config{
		Model:               "gemini-test",
		EmbeddingModel:      "embed-test",
		CacheTTL:            time.Hour,
		TopTrending:         5,
		SimilarityThreshold: 0.3,
	}, repo, store, client, stubEmbedder{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, repo, store
}

func TestSearchEmptyQueryIsInvalid(t *testing.T) {
	svc, _, _ := newSearchService(&stubGenerate{})
	_, _, err := svc.Search(context.Background(), "   ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestSearchSentinelMeansNotFound(t *testing.T) {
	svc, _, _ := newSearchService(&stubGenerate{text: "No results were found."})
	_, found, err := svc.Search(context.Background(), "Unobtainium")
	require.NoError(t, err)
	require.False(t, found)
}

func TestSearchParsesAndCaches(t *testing.T) {
	client := &stubGenerate{
		text: "## Branded Medicine: Calpol 650\n* **Form**: Tablet\n* **Tata 1mg**: ₹30.00\n* **NetMeds**: ₹25.00",
		sources: []gemini.WebSource{
			{URI: "https://a.example", Title: "A"},
			{URI: "https://a.example", Title: "dup"},
		},
	}
	svc, _, store := newSearchService(client)

	result, found, err := svc.Search(context.Background(), "Calpol 650")
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, result.Cached)
	require.Len(t, result.Sources, 1)
	require.Len(t, result.Sections, 1)
	require.Len(t, result.Sections[0].Prices, 2)
	require.Equal(t, "NetMeds", result.Sections[0].Prices[0].Pharmacy)
	require.Len(t, store.answers, 1)

	// Second identical search must come from the cache without another call.
	again, found, err := svc.Search(context.Background(), "Calpol 650")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, again.Cached)
	require.Equal(t, 1, client.calls)
	require.Equal(t, result.Sections, again.Sections)
}

func TestSearchExtractsNote(t *testing.T) {
	client := &stubGenerate{
		text: "**Note:** An exact match for \"Xyz\" was not found. Showing results for the most similar medicine, Abc.\n## Branded Medicine: Abc\n* **Form**: Tablet",
	}
	svc, _, _ := newSearchService(client)
	result, found, err := svc.Search(context.Background(), "Xyz")
	require.NoError(t, err)
	require.True(t, found)
	require.Contains(t, result.Note, "exact match")
	require.NotContains(t, result.Content, "**Note:**")
}

func TestSearchBumpsTrending(t *testing.T) {
	svc, _, store := newSearchService(&stubGenerate{text: "## A\n* **Form**: Tablet"})
	_, _, err := svc.Search(context.Background(), "Dolo-650")
	require.NoError(t, err)
	require.EqualValues(t, 1, store.trending["dolo 650"])
}
