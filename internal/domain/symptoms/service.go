package symptoms

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

// Service analyzes free-text symptoms into possible conditions and advice.
type Service interface {
	Analyze(ctx context.Context, symptoms string, info *PersonalInfo) (Analysis, error)
}

type generateClient interface {
	GenerateContent(ctx context.Context, model string, req gemini.GenerateContentRequest) (gemini.GenerateContentResponse, error)
}

// Config configures the symptom checker.
type Config struct {
	Model             string
	MaxConditions     int
	DefaultDisclaimer string
}

type service struct {
	cfg    Config
	client generateClient
	logger *slog.Logger
}

func NewService(cfg Config, client generateClient, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		client: client,
		logger: logger.With("component", "symptoms.service"),
	}
}

func (s *service) Analyze(ctx context.Context, symptoms string, info *PersonalInfo) (Analysis, error) {
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return Analysis{}, apperrors.Wrap(apperrors.CodeInvalidInput, "please describe your symptoms", nil)
	}

	prompt := s.buildPrompt(symptoms, info)
	resp, err := s.client.GenerateContent(ctx, s.cfg.Model, gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Parts: []gemini.Part{{Text: prompt}}}},
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   analysisSchema(),
		},
	})
	if err != nil {
		return Analysis{}, apperrors.Wrap(apperrors.CodeTransportError, "could not analyze symptoms, please try again in a moment", err)
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return Analysis{}, apperrors.Wrap(apperrors.CodeModelError, "received an empty response from the model", nil)
	}
	s.logger.Debug("symptom analysis response", "usage", metrics.EstimateUsage(prompt, raw))

	var analysis Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return Analysis{}, apperrors.Wrap(apperrors.CodeFormatError, "the model returned an analysis in an unexpected format", err)
	}
	if analysis.PossibleConditions == nil {
		analysis.PossibleConditions = []Condition{}
	}
	if s.cfg.MaxConditions > 0 && len(analysis.PossibleConditions) > s.cfg.MaxConditions {
		analysis.PossibleConditions = analysis.PossibleConditions[:s.cfg.MaxConditions]
	}
	if strings.TrimSpace(analysis.Disclaimer) == "" {
		analysis.Disclaimer = s.cfg.DefaultDisclaimer
	}
	return analysis, nil
}

// buildPrompt interpolates personal details only when they are present, so
// an empty profile produces the same prompt as no profile at all.
func (s *service) buildPrompt(symptoms string, info *PersonalInfo) string {
	var userInfo string
	if info != nil {
		var parts []string
		if info.Age != "" {
			parts = append(parts, fmt.Sprintf("age %s", info.Age))
		}
		if info.Gender != "" {
			parts = append(parts, fmt.Sprintf("gender %s", info.Gender))
		}
		if info.History != "" {
			parts = append(parts, fmt.Sprintf("with a medical history of: %q", info.History))
		}
		if len(parts) > 0 {
			userInfo = fmt.Sprintf(" The user is %s.", strings.Join(parts, ", "))
		}
	}

	return fmt.Sprintf(`A user has provided the following symptoms: %q.%s
Analyze these symptoms, taking the user's personal information into account for a more contextual result. Provide a list of up to %d possible, common conditions. For each condition, provide its name, a severity level ('Low', 'Medium', 'High'), and a brief description.
Also, provide a general recommendation for the user (e.g., when to see a doctor).

Additionally, suggest 2-4 non-medicinal remedies relevant to the symptoms. These should be safe, general suggestions. Categorize them as 'Home Remedy', 'Ayurvedic', 'Physical Activity', 'Lifestyle'. For each remedy, provide its name and a brief description.

Crucially, include a disclaimer that this is an AI-generated analysis and not a substitute for professional medical advice.
The context is for general information in India. Structure the response according to the provided JSON schema.`, symptoms, userInfo, s.cfg.MaxConditions)
}

func analysisSchema() *gemini.Schema {
	return gemini.Object(map[string]*gemini.Schema{
		"possibleConditions": gemini.Array("A list of possible medical conditions based on the symptoms.",
			gemini.Object(map[string]*gemini.Schema{
				"condition":   gemini.String("The name of the possible condition."),
				"severity":    gemini.StringEnum("The potential severity of the condition.", "Low", "Medium", "High"),
				"description": gemini.String("A brief, user-friendly description of the condition."),
			}, "condition", "severity", "description")),
		"recommendation": gemini.String("Actionable advice for the user, such as home care tips or when to see a doctor."),
		"nonMedicinalRemedies": gemini.Array("A list of non-medicinal remedies, including home remedies, Ayurvedic suggestions, and physical activities.",
			gemini.Object(map[string]*gemini.Schema{
				"category":    gemini.StringEnum("The category of the remedy.", "Home Remedy", "Ayurvedic", "Physical Activity", "Lifestyle"),
				"remedy":      gemini.String("The name of the remedy (e.g., 'Ginger Tea', 'Yoga')."),
				"description": gemini.String("A brief explanation of how to apply the remedy and its benefits."),
			}, "category", "remedy", "description")),
		"disclaimer": gemini.String("A mandatory disclaimer stating this is not a medical diagnosis."),
	}, "possibleConditions", "recommendation", "disclaimer")
}
