package locator

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

// Service exposes the pharmacy locator.
type Service interface {
	FindPharmacies(ctx context.Context, query LocationQuery) ([]Pharmacy, error)
	ListFavorites(ctx context.Context, deviceID string) ([]Pharmacy, error)
	ToggleFavorite(ctx context.Context, deviceID string, pharmacy Pharmacy) (favorited bool, err error)
}

type generateClient interface {
	GenerateContent(ctx context.Context, model string, req gemini.GenerateContentRequest) (gemini.GenerateContentResponse, error)
}

// FavoriteRepository persists the favorited-pharmacy set per device, keyed by
// the identity pair. Entries live until explicitly removed.
type FavoriteRepository interface {
	List(ctx context.Context, deviceID string) (map[string]Pharmacy, error)
	Save(ctx context.Context, deviceID, pharmacyID string, pharmacy Pharmacy) error
	Delete(ctx context.Context, deviceID, pharmacyID string) error
}

// Config configures the locator domain.
type Config struct {
	Model      string
	MaxResults int
}

type service struct {
	cfg       Config
	client    generateClient
	favorites FavoriteRepository
	logger    *slog.Logger
}

// NewService wires up the locator domain.
func NewService(cfg Config, client generateClient, favorites FavoriteRepository, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		client:    client,
		favorites: favorites,
		logger:    logger.With("component", "locator.service"),
	}
}

func (s *service) FindPharmacies(ctx context.Context, query LocationQuery) ([]Pharmacy, error) {
	hasPlace := strings.TrimSpace(query.Place) != ""
	if query.HasCoordinates() == hasPlace {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "provide either coordinates or a place query, not both", nil)
	}

	prompt := buildLocatorPrompt(query, s.cfg.MaxResults)
	req := gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Parts: []gemini.Part{{Text: prompt}}}},
		Tools:    []gemini.Tool{{GoogleMaps: &struct{}{}}},
	}
	if query.HasCoordinates() {
		req.ToolConfig = &gemini.ToolConfig{RetrievalConfig: &gemini.RetrievalConfig{
			LatLng: &gemini.LatLng{Latitude: *query.Latitude, Longitude: *query.Longitude},
		}}
	}

	resp, err := s.client.GenerateContent(ctx, s.cfg.Model, req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransportError, "could not find pharmacies, please check your network or refine your query", err)
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return []Pharmacy{}, nil
	}
	s.logger.Debug("pharmacy search response", "usage", metrics.EstimateUsage(prompt, raw))

	pharmacies, err := parsePharmacies(raw)
	if err != nil {
		return nil, err
	}
	pharmacies = dedupe(pharmacies)
	if s.cfg.MaxResults > 0 && len(pharmacies) > s.cfg.MaxResults {
		pharmacies = pharmacies[:s.cfg.MaxResults]
	}
	return pharmacies, nil
}

func (s *service) ListFavorites(ctx context.Context, deviceID string) ([]Pharmacy, error) {
	stored, err := s.favorites.List(ctx, deviceID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransportError, "failed to load favorite pharmacies", err)
	}
	out := make([]Pharmacy, 0, len(stored))
	for _, p := range stored {
		out = append(out, p)
	}
	return out, nil
}

// ToggleFavorite flips membership for the pharmacy's identity. Toggling
// twice returns the set to its original state.
func (s *service) ToggleFavorite(ctx context.Context, deviceID string, pharmacy Pharmacy) (bool, error) {
	if strings.TrimSpace(pharmacy.Name) == "" || strings.TrimSpace(pharmacy.Address) == "" {
		return false, apperrors.Wrap(apperrors.CodeInvalidInput, "pharmacy name and address are required", nil)
	}
	stored, err := s.favorites.List(ctx, deviceID)
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeTransportError, "failed to load favorite pharmacies", err)
	}
	id := pharmacy.ID()
	if _, ok := stored[id]; ok {
		if err := s.favorites.Delete(ctx, deviceID, id); err != nil {
			return false, apperrors.Wrap(apperrors.CodeTransportError, "failed to update favorite pharmacies", err)
		}
		return false, nil
	}
	if err := s.favorites.Save(ctx, deviceID, id, pharmacy); err != nil {
		return false, apperrors.Wrap(apperrors.CodeTransportError, "failed to update favorite pharmacies", err)
	}
	return true, nil
}

// parsePharmacies decodes the JSON-array-only contract, tolerating a fenced
// code wrapper around the payload.
func parsePharmacies(raw string) ([]Pharmacy, error) {
	cleaned := stripCodeFence(raw)
	var pharmacies []Pharmacy
	if err := json.Unmarshal([]byte(cleaned), &pharmacies); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFormatError, "the model returned pharmacy data in an unexpected format", err)
	}
	return pharmacies, nil
}

func stripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

func dedupe(pharmacies []Pharmacy) []Pharmacy {
	seen := make(map[string]struct{}, len(pharmacies))
	out := make([]Pharmacy, 0, len(pharmacies))
	for _, p := range pharmacies {
		id := p.ID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, p)
	}
	return out
}

func buildLocatorPrompt(query LocationQuery, maxResults int) string {
	var location string
	if query.HasCoordinates() {
		location = fmt.Sprintf("The user is at latitude %v and longitude %v in India.", *query.Latitude, *query.Longitude)
	} else {
		location = fmt.Sprintf("The user is searching for pharmacies near %q in India.", query.Place)
	}
	return fmt.Sprintf(`%s
Your task is to act as a reliable pharmacy locator.
Using the Google Maps tool, find a list of up to %d real, existing, and verifiable nearby pharmacies.
Prioritize well-known chains (like Apollo, MedPlus), established local pharmacies, and also include any "Pradhan Mantri Bhartiya Janaushadhi Kendra" (PMBJK) stores if they are nearby.
**Crucially, you must only return data that is directly sourced from Google Maps. Do not invent, guess, or hallucinate any information.**

For each pharmacy, provide the following details:
- name: The name of the pharmacy.
- address: The full address.
- distance: The distance from the user's location (if available).
- contact: The contact number. If not available, return null.
- latitude and longitude.
- services: A list of notable services as a string array (e.g., ["24-hour service"]). If a store is a PMBJK, YOU MUST include "Jan Aushadhi" in its services list. If no specific services are known, the services array should be empty or null.

Return the result ONLY as a valid JSON array of objects. Do not include any introductory text, markdown formatting, or explanations. If no pharmacies are found, return an empty JSON array [].`, location, maxResults)
}
