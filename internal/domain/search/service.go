package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/llm/gemini"
	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
	"github.com/gauriiiiiiiiiiii/genmeds-api/pkg/metrics"
)

// Service exposes the grounded medicine search.
type Service interface {
	// Search returns the parsed answer for a query. The boolean is false when
	// the backend found nothing for the query (the "not found" outcome, which
	// is not an error).
	Search(ctx context.Context, query string) (Result, bool, error)
	Trending(ctx context.Context) ([]TrendingQuery, error)
}

type generateClient interface {
	GenerateContent(ctx context.Context, model string, req gemini.GenerateContentRequest) (gemini.GenerateContentResponse, error)
}

// Embedder produces embedding vectors for cache similarity lookups.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type service struct {
	cfg      Config
	repo     QueryRepository
	store    Store
	client   generateClient
	embedder Embedder
	logger   *slog.Logger
	hasher   *semanticHasher
}

// NewService wires up the search domain.
func NewService(cfg Config, repo QueryRepository, store Store, client generateClient, embedder Embedder, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		repo:     repo,
		store:    store,
		client:   client,
		embedder: embedder,
		logger:   logger.With("component", "search.service"),
		hasher:   newSemanticHasher(defaultSemanticHashPlanes, defaultSemanticHashSeed),
	}
}

const notFoundSentinel = "no results were found"

func (s *service) Search(ctx context.Context, query string) (Result, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, false, apperrors.Wrap(apperrors.CodeInvalidInput, "search query cannot be empty", nil)
	}
	canonical := canonicalizeQuery(query)

	record, embedding, found := s.lookup(ctx, query)
	if found {
		if cached, ok := s.cachedAnswer(ctx, record.ID); ok {
			s.bumpTrending(ctx, canonical, query)
			return s.buildResult(query, cached.Note, cached.Content, cached.Sources, true), true, nil
		}
	}

	content, sources, err := s.queryBackend(ctx, query)
	if err != nil {
		return Result{}, false, err
	}
	if content == "" {
		return Result{}, false, nil
	}

	note, body := extractNote(content)
	sources = dedupeSources(sources)

	s.persist(ctx, record, found, query, embedding, note, body, sources)
	s.bumpTrending(ctx, canonical, query)

	return s.buildResult(query, note, body, sources, false), true, nil
}

func (s *service) Trending(ctx context.Context) ([]TrendingQuery, error) {
	return s.store.TopQueries(ctx, s.cfg.TopTrending)
}

// lookup walks exact match, semantic-hash bucket, then vector similarity.
// Cache lookups are best effort: a failing cache never fails the search.
func (s *service) lookup(ctx context.Context, query string) (QueryRecord, []float32, bool) {
	if rec, found, err := s.repo.FindExact(ctx, query); err != nil {
		s.logger.Warn("search exact lookup failed", "error", err)
	} else if found {
		return rec, nil, true
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("search embedding failed", "error", err)
		return QueryRecord{}, nil, false
	}

	if hash, ok, err := s.hasher.Hash(embedding); err != nil {
		s.logger.Warn("semantic hash failed", "error", err)
	} else if ok {
		if rec, found, err := s.repo.FindBySemanticHash(ctx, hash); err != nil {
			s.logger.Warn("semantic hash lookup failed", "error", err)
		} else if found {
			return rec, embedding, true
		}
	}

	if match, found, err := s.repo.FindNearest(ctx, embedding); err != nil {
		s.logger.Warn("similarity lookup failed", "error", err)
	} else if found && match.Distance <= s.cfg.SimilarityThreshold {
		return match.Query, embedding, true
	}

	return QueryRecord{}, embedding, false
}

func (s *service) cachedAnswer(ctx context.Context, queryID int64) (AnswerRecord, bool) {
	cached, ok, err := s.store.GetAnswer(ctx, queryID)
	if err != nil {
		s.logger.Warn("search cache lookup failed", "error", err)
		return AnswerRecord{}, false
	}
	return cached, ok
}

func (s *service) queryBackend(ctx context.Context, query string) (string, []Source, error) {
	prompt := buildSearchPrompt(query)
	resp, err := s.client.GenerateContent(ctx, s.cfg.Model, gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Parts: []gemini.Part{{Text: prompt}}}},
		Tools:    []gemini.Tool{{GoogleSearch: &struct{}{}}},
	})
	if err != nil {
		return "", nil, apperrors.Wrap(apperrors.CodeTransportError, "failed to complete the search, please try again in a moment", err)
	}

	content := strings.TrimSpace(resp.Text())
	if content == "" || strings.Contains(strings.ToLower(content), notFoundSentinel) {
		return "", nil, nil
	}
	s.logger.Debug("search response", "query", query, "usage", metrics.EstimateUsage(prompt, content))

	webSources := resp.Sources()
	sources := make([]Source, 0, len(webSources))
	for _, src := range webSources {
		sources = append(sources, Source{URI: src.URI, Title: src.Title})
	}
	return content, sources, nil
}

func (s *service) persist(ctx context.Context, record QueryRecord, found bool, query string, embedding []float32, note, body string, sources []Source) {
	if !found {
		var hashPtr *uint64
		if hash, ok, err := s.hasher.Hash(embedding); err == nil && ok {
			hashCopy := hash
			hashPtr = &hashCopy
		}
		rec, err := s.repo.InsertQuery(ctx, query, embedding, hashPtr)
		if err != nil {
			s.logger.Warn("search query insert failed", "error", err)
			return
		}
		record = rec
	}
	err := s.store.SaveAnswer(ctx, AnswerRecord{
		QueryID:   record.ID,
		Query:     query,
		Note:      note,
		Content:   body,
		Sources:   sources,
		CreatedAt: time.Now().UTC(),
	}, s.cfg.CacheTTL)
	if err != nil {
		s.logger.Warn("search answer cache failed", "error", err)
	}
}

func (s *service) bumpTrending(ctx context.Context, canonical, display string) {
	if err := s.store.IncrementQuery(ctx, canonical, display); err != nil {
		s.logger.Warn("search trending increment failed", "error", err)
	}
}

func (s *service) buildResult(query, note, content string, sources []Source, cached bool) Result {
	return Result{
		Query:    query,
		Note:     note,
		Content:  content,
		Sections: parseSections(content),
		Sources:  sources,
		Cached:   cached,
	}
}

func buildSearchPrompt(query string) string {
	return fmt.Sprintf(`You are an expert on medicines in India. A user is searching for "%[1]s".
Use Google Search to find the most up-to-date, real-time information.

Your primary goal is to find information for the exact medicine queried.
If you cannot find an exact match for "%[1]s", search for the most relevant or similarly named medicine available in India.
If you provide a result for a similar medicine, you MUST add a note at the very top of your response, before any markdown headings, like this:
**Note:** An exact match for "%[1]s" was not found. Showing results for the most similar medicine, [Similar Medicine Name].

Provide a detailed comparison in Markdown format. The structure MUST be as follows, using the exact headings and formatting:

## Branded Medicine: [Medicine Name Found]
* **Salt Composition**: [The salt composition]
* **Strength**: [The strength, e.g., 650 mg]
* **Form**: [The form, e.g., Tablet]
* **Manufacturer**: [The manufacturer]
* **Regulatory Status**: [e.g., "CDSCO Approved (Schedule H)"]
* **Recall/Warning**: [Any recall notice, or "None"]
* **Prices**:
  * **[Vendor Name]**: [Price in INR]
  * **[Vendor Name]**: [Price in INR]
  * ... (list other popular vendors like Tata 1mg, NetMeds, Apollo Pharmacy, Amazon.in, etc. You MUST provide their real-time prices directly in INR format, like '₹123.45'. DO NOT provide URLs.)

## Generic Alternative 1: [Generic Brand Name]
* **Salt Composition**: [The salt composition]
* **Strength**: [The strength]
* **Form**: [The form]
* **Manufacturer**: [The manufacturer]
* **Regulatory Status**: [e.g., "CDSCO Approved (OTC)"]
* **Recall/Warning**: [Any recall notice, or "None"]
* **Prices**:
  * **[Vendor Name]**: [Price in INR]
  * **[Vendor Name]**: [Price in INR]
  * ... (Same pricing rules as above.)

## Generic Alternative 2: [Generic Brand Name]
* **Salt Composition**: [The salt composition]
* **Strength**: [The strength]
* **Form**: [The form]
* **Manufacturer**: [The manufacturer]
* **Regulatory Status**: [e.g., "Ayurvedic"]
* **Recall/Warning**: [Any recall notice, or "None"]
* **Prices**:
  * **[Vendor Name]**: [Price in INR]
  * **[Vendor Name]**: [Price in INR]
  * ... (Same pricing rules as above.)

## Salt Comparison
[A brief section explaining that the generic alternatives are effective because they contain the same active ingredient (salt composition) as the branded medicine.]

If absolutely no relevant or similar medicine can be found, your entire response must be ONLY the text "No results were found.". Do not invent information. Do not add any introductory or concluding text outside of the specified Markdown structure (except for the similarity note when applicable).`, query)
}
