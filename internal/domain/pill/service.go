package pill

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/llm/gemini"
	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
)

const identifyPrompt = `Analyze this image of a pill. Identify the medicine based on its appearance (imprint, color, shape). The context is for medicines available in India. Provide the most likely identification. If the pill is not clearly identifiable, make a best guess and state the uncertainty in the usage description. Return a single JSON object.`

// Service identifies a medicine from a photo of the pill itself.
type Service interface {
	Identify(ctx context.Context, image []byte, mimeType string) (Identification, error)
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
		logger: logger.With("component", "pill.service"),
	}
}

func (s *service) Identify(ctx context.Context, image []byte, mimeType string) (Identification, error) {
	if len(image) == 0 {
		return Identification{}, apperrors.Wrap(apperrors.CodeInvalidInput, "an image of the pill is required", nil)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Identification{}, apperrors.Wrap(apperrors.CodeInvalidInput, "only image uploads are supported", nil)
	}

	resp, err := s.client.GenerateContent(ctx, s.model, gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Parts: []gemini.Part{
			{InlineData: &gemini.InlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
			{Text: identifyPrompt},
		}}},
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   identifySchema(),
		},
	})
	if err != nil {
		return Identification{}, apperrors.Wrap(apperrors.CodeTransportError, "failed to identify the pill, please ensure the image is clear and well-lit", err)
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return Identification{}, apperrors.Wrap(apperrors.CodeModelError, "received an empty response from the model", nil)
	}

	var result Identification
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return Identification{}, apperrors.Wrap(apperrors.CodeFormatError, "the model returned pill data in an unexpected format", err)
	}
	if strings.TrimSpace(result.Name) == "" {
		return Identification{}, apperrors.Wrap(apperrors.CodeModelError, "the pill could not be identified from the image", nil)
	}
	s.logger.Debug("pill identified", "name", result.Name)
	return result, nil
}

func identifySchema() *gemini.Schema {
	return gemini.Object(map[string]*gemini.Schema{
		"name":             gemini.String("The most likely name of the medicine."),
		"strength":         gemini.String("The dosage strength (e.g., '500 mg'). Null if not identifiable."),
		"imprint":          gemini.String("The markings or imprint on the pill. Null if none or unclear."),
		"color":            gemini.String("The color of the pill. Null if not identifiable."),
		"shape":            gemini.String("The shape of the pill (e.g., 'Round', 'Oval'). Null if not identifiable."),
		"manufacturer":     gemini.String("The likely manufacturer. Null if not identifiable."),
		"usageDescription": gemini.String("A brief description of what the medicine is typically used for."),
	}, "name", "usageDescription")
}
