package prescription

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/llm/gemini"
	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
	"github.com/gauriiiiiiiiiiii/genmeds-api/pkg/metrics"
)

// Service exposes the prescription analysis flow.
type Service interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType string) ([]Medicine, error)
	FindAlternatives(ctx context.Context, names []string) (map[string]BrandedAnalysis, error)
	AnalyzePrescription(ctx context.Context, image []byte, mimeType string, onFetch func()) (FlowResult, error)
}

// GenerateClient is the slice of the Gemini client this domain needs.
type GenerateClient interface {
	GenerateContent(ctx context.Context, model string, req gemini.GenerateContentRequest) (gemini.GenerateContentResponse, error)
}

// ImageArchive stores uploaded images for later audit. Archival is best
// effort and never blocks the analysis.
type ImageArchive interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) error
}

// Config configures the prescription domain.
type Config struct {
	Model       string
	Temperature float32
}

type service struct {
	cfg     Config
	client  GenerateClient
	archive ImageArchive
	logger  *slog.Logger
}

// NewService is a wire provider for the prescription domain.
func NewService(cfg Config, client GenerateClient, archive ImageArchive, logger *slog.Logger) Service {
	return &service{
		cfg:     cfg,
		client:  client,
		archive: archive,
		logger:  logger.With("component", "prescription.service"),
	}
}

const analyzeImagePrompt = "Analyze this image of a medical prescription from India. Extract the names of the medicines, their dosage, and quantity. Return the result as a JSON array of objects. If a value for dosage or quantity is unclear or not present, return null for that key."

func (s *service) AnalyzeImage(ctx context.Context, image []byte, mimeType string) ([]Medicine, error) {
	if err := validateImage(image, mimeType); err != nil {
		return nil, err
	}
	s.archiveImage(ctx, "prescription", image, mimeType)

	resp, err := s.client.GenerateContent(ctx, s.cfg.Model, gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Parts: []gemini.Part{
			{InlineData: &gemini.InlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
			{Text: analyzeImagePrompt},
		}}},
		GenerationConfig: &gemini.GenerationConfig{
			Temperature:      s.cfg.Temperature,
			ResponseMIMEType: "application/json",
			ResponseSchema:   prescriptionSchema(),
		},
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransportError, "failed to analyze the prescription, please ensure the image is clear and try again", err)
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return nil, apperrors.Wrap(apperrors.CodeModelError, "received an empty response from the model", nil)
	}
	s.logger.Debug("prescription analysis response", "usage", metrics.EstimateUsage(analyzeImagePrompt, raw))

	var medicines []Medicine
	if err := json.Unmarshal([]byte(raw), &medicines); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFormatError, "the model returned prescription data in an unexpected format", err)
	}

	out := medicines[:0]
	for _, m := range medicines {
		if strings.TrimSpace(m.Name) != "" {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *service) FindAlternatives(ctx context.Context, names []string) (map[string]BrandedAnalysis, error) {
	cleaned := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "at least one medicine name is required", nil)
	}

	prompt := buildAlternativesPrompt(cleaned)
	resp, err := s.client.GenerateContent(ctx, s.cfg.Model, gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Parts: []gemini.Part{{Text: prompt}}}},
		GenerationConfig: &gemini.GenerationConfig{
			Temperature:      s.cfg.Temperature,
			ResponseMIMEType: "application/json",
			ResponseSchema:   batchSchema(cleaned),
		},
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransportError, "failed to find generic alternatives, please try again", err)
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return nil, apperrors.Wrap(apperrors.CodeModelError, "received an empty response from the model", nil)
	}
	s.logger.Debug("alternatives response", "names", len(cleaned), "usage", metrics.EstimateUsage(prompt, raw))

	var analyses map[string]BrandedAnalysis
	if err := json.Unmarshal([]byte(raw), &analyses); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFormatError, "the model returned alternatives in an unexpected format", err)
	}
	return analyses, nil
}

// AnalyzePrescription runs the full two-step flow: OCR the image, then one
// batch alternatives lookup over the extracted names. A failure at either
// step aborts the whole flow. onFetch, when non-nil, is invoked once the OCR
// step has finished and the alternatives lookup is about to start, so
// callers can surface the stage change while it is in flight.
func (s *service) AnalyzePrescription(ctx context.Context, image []byte, mimeType string, onFetch func()) (FlowResult, error) {
	medicines, err := s.AnalyzeImage(ctx, image, mimeType)
	if err != nil {
		return FlowResult{}, err
	}
	if len(medicines) == 0 {
		return FlowResult{}, apperrors.Wrap(apperrors.CodeModelError, "no medicines could be identified in the prescription, please try a clearer image", nil)
	}

	names := make([]string, 0, len(medicines))
	for _, m := range medicines {
		names = append(names, m.Name)
	}
	if onFetch != nil {
		onFetch()
	}
	analyses, err := s.FindAlternatives(ctx, names)
	if err != nil {
		return FlowResult{}, err
	}

	result := FlowResult{Medicines: make([]AnalyzedMedicine, 0, len(medicines))}
	for _, m := range medicines {
		entry := AnalyzedMedicine{BrandedMedicine: m}
		if analysis, ok := analyses[m.Name]; ok {
			entry.Analysis = &analysis
		}
		result.Medicines = append(result.Medicines, entry)
	}
	return result, nil
}

func (s *service) archiveImage(ctx context.Context, kind string, image []byte, mimeType string) {
	if s.archive == nil {
		return
	}
	key := fmt.Sprintf("%s/%s", kind, uuid.NewString())
	if err := s.archive.Put(ctx, key, image, mimeType); err != nil {
		s.logger.Warn("image archive failed", "key", key, "error", err)
	}
}

func validateImage(image []byte, mimeType string) error {
	if len(image) == 0 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "an image file is required", nil)
	}
	if !strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "please upload an image file (e.g., PNG or JPEG)", nil)
	}
	return nil
}

func buildAlternativesPrompt(names []string) string {
	return fmt.Sprintf(`For the following list of branded medicines available in India: %s.
1. For each medicine, first provide its primary salt composition.
2. Then, find up to 2 affordable and safe generic alternatives. For each alternative, provide its common generic brand name, salt composition, strength, and form.
3. Provide real-time prices for each alternative from 2-3 major Indian vendors like 'Tata 1mg', 'Apollo Pharmacy', 'NetMeds', and 'Amazon.in'. You MUST provide only the vendor name and the price in INR.
4. For each alternative, provide its regulatory status in India: its CDSCO approval status ('Approved', 'Banned', 'Under Review', 'N/A') and its drug schedule ('Schedule H', 'OTC', 'Ayurvedic', 'General', 'N/A').
5. Check for and include any recent recall notices or official warnings. If there are none, this must be null.
6. Provide a brief general safety note ONLY if the drug requires special supervision in India; otherwise, this must be null.
Return the result as a JSON object where keys are the original branded medicine names. The value for each key must be an object containing "brandedSaltComposition" (a string) and "alternatives" (an array).`, strings.Join(names, ", "))
}
