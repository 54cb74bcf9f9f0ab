package metrics

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenUsage captures LLM token counts used to satisfy a request.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// EstimateTokens approximates the token count of a prompt using the
// cl100k_base encoding. The Gemini tokenizer is not public, so this is an
// estimate for usage logging, not billing.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	if encoding == nil {
		// Rough fallback when the encoding assets are unavailable offline.
		return (len(text) + 3) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}

// EstimateUsage builds a TokenUsage from prompt and completion text.
func EstimateUsage(prompt, completion string) TokenUsage {
	p := EstimateTokens(prompt)
	c := EstimateTokens(completion)
	return TokenUsage{PromptTokens: p, CompletionTokens: c, TotalTokens: p + c}
}
