package search

import (
	"time"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/pricing"
)

// Source is a grounding citation attached to a search answer.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// DetailRow is one generic label/value pair inside a section.
type DetailRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Section is one display card parsed from the markdown answer. Paragraph
// sections carry only Text; structured sections carry detail rows, prices and
// the dedicated regulatory fields.
type Section struct {
	Title            string                    `json:"title"`
	Paragraph        bool                      `json:"paragraph,omitempty"`
	Text             string                    `json:"text,omitempty"`
	Details          []DetailRow               `json:"details,omitempty"`
	Prices           []pricing.ComparisonEntry `json:"prices,omitempty"`
	RegulatoryStatus string                    `json:"regulatoryStatus,omitempty"`
	RecallWarning    string                    `json:"recallWarning,omitempty"`
}

// Result is a complete medicine search answer.
type Result struct {
	Query    string    `json:"query"`
	Note     string    `json:"note,omitempty"`
	Content  string    `json:"content"`
	Sections []Section `json:"sections"`
	Sources  []Source  `json:"sources"`
	Cached   bool      `json:"cached"`
}

// TrendingQuery represents a frequently searched medicine.
type TrendingQuery struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// QueryRecord represents a stored search query row.
type QueryRecord struct {
	ID           int64
	QueryText    string
	SemanticHash *uint64
}

// AnswerRecord captures the payload persisted in the KV cache.
type AnswerRecord struct {
	QueryID   int64     `json:"queryId"`
	Query     string    `json:"query"`
	Note      string    `json:"note,omitempty"`
	Content   string    `json:"content"`
	Sources   []Source  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Config configures the search domain.
type Config struct {
	Model               string
	EmbeddingModel      string
	Temperature         float32
	CacheTTL            time.Duration
	TopTrending         int
	SimilarityThreshold float64
}
