package interactions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/llm/gemini"
	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
	"github.com/gauriiiiiiiiiiii/genmeds-api/pkg/metrics"
)

// Service checks a medicine list for pairwise interactions.
type Service interface {
	Check(ctx context.Context, medicines []string) (Analysis, error)
}

type generateClient interface {
	GenerateContent(ctx context.Context, model string, req gemini.GenerateContentRequest) (gemini.GenerateContentResponse, error)
}

type service struct {
	model  string
	client generateClient
	logger *slog.Logger
}

func NewService(model string, client generateClient, logger *slog.Logger) Service {
	return &service{
		model:  model,
		client: client,
		logger: logger.With("component", "interactions.service"),
	}
}

// Check validates the list before any network call: fewer than two distinct
// non-blank names is rejected outright.
func (s *service) Check(ctx context.Context, medicines []string) (Analysis, error) {
	names := normalizeNames(medicines)
	if len(names) < 2 {
		return Analysis{}, apperrors.Wrap(apperrors.CodeInvalidInput, "please provide at least two medicines to check for interactions", nil)
	}

	prompt := buildInteractionPrompt(names)
	resp, err := s.client.GenerateContent(ctx, s.model, gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Parts: []gemini.Part{{Text: prompt}}}},
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   interactionSchema(),
		},
	})
	if err != nil {
		return Analysis{}, apperrors.Wrap(apperrors.CodeTransportError, "could not check for interactions, please try again in a moment", err)
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return Analysis{}, apperrors.Wrap(apperrors.CodeModelError, "received an empty response from the model", nil)
	}
	s.logger.Debug("interaction check response", "medicines", len(names), "usage", metrics.EstimateUsage(prompt, raw))

	var analysis Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return Analysis{}, apperrors.Wrap(apperrors.CodeFormatError, "the model returned interaction data in an unexpected format", err)
	}
	if analysis.Interactions == nil {
		analysis.Interactions = []Interaction{}
	}
	return analysis, nil
}

func normalizeNames(medicines []string) []string {
	seen := make(map[string]struct{}, len(medicines))
	out := make([]string, 0, len(medicines))
	for _, m := range medicines {
		name := strings.TrimSpace(m)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

func buildInteractionPrompt(names []string) string {
	return fmt.Sprintf(`Analyze the potential drug interactions for the following list of medicines: %s.
For each pair of interacting drugs, provide the severity ('Major', 'Moderate', or 'Minor') and a clear description of the interaction.
Also provide an overall summary. If no interactions are found, the interactions array should be empty and the summary should state that.
This is for informational purposes in an Indian context. Structure the response according to the provided JSON schema.`, strings.Join(names, ", "))
}

func interactionSchema() *gemini.Schema {
	pair := gemini.Array("The pair of medicines that interact.", &gemini.Schema{Type: gemini.TypeString})
	pair.MinItems = 2
	pair.MaxItems = 2

	return gemini.Object(map[string]*gemini.Schema{
		"summary": gemini.String("A brief, easy-to-understand summary of the potential interactions found."),
		"interactions": gemini.Array("", gemini.Object(map[string]*gemini.Schema{
			"medicines":   pair,
			"severity":    gemini.StringEnum("The severity of the interaction.", "Major", "Moderate", "Minor", "None"),
			"description": gemini.String("A detailed explanation of the interaction, its risks, and what to do."),
		}, "medicines", "severity", "description")),
	}, "summary", "interactions")
}
