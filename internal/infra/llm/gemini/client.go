package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Part is one piece of content: either text or inline binary data.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries a base64 encoded blob, typically an uploaded image.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Content groups the parts of one conversational turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig constrains the model output.
type GenerationConfig struct {
	Temperature      float32 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema `json:"responseSchema,omitempty"`
}

// Tool enables a grounding capability for a request.
type Tool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
	GoogleMaps   *struct{} `json:"googleMaps,omitempty"`
}

// ToolConfig narrows tool behavior, e.g. anchoring maps retrieval to a point.
type ToolConfig struct {
	RetrievalConfig *RetrievalConfig `json:"retrievalConfig,omitempty"`
}

// RetrievalConfig anchors grounded retrieval.
type RetrievalConfig struct {
	LatLng *LatLng `json:"latLng,omitempty"`
}

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GenerateContentRequest is the payload for a generateContent call.
type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	Tools            []Tool            `json:"tools,omitempty"`
	ToolConfig       *ToolConfig       `json:"toolConfig,omitempty"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// GenerateContentResponse captures the reply of a generateContent call.
type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content           Content            `json:"content"`
	FinishReason      string             `json:"finishReason,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

// GroundingMetadata lists the retrieval citations attached to a candidate.
type GroundingMetadata struct {
	GroundingChunks []GroundingChunk `json:"groundingChunks,omitempty"`
}

// GroundingChunk is one citation.
type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty"`
}

// WebSource identifies a cited web page.
type WebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// Text concatenates the text parts of the first candidate.
func (r GenerateContentResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// Sources returns the grounding citations of the first candidate.
func (r GenerateContentResponse) Sources() []WebSource {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	chunks := r.Candidates[0].GroundingMetadata.GroundingChunks
	out := make([]WebSource, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Web != nil && chunk.Web.URI != "" {
			out = append(out, *chunk.Web)
		}
	}
	return out
}

type embedContentRequest struct {
	Content Content `json:"content"`
}

type embedContentResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// Client performs HTTP requests against the Gemini API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Gemini client.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key cannot be empty")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// GenerateContent triggers a sync generateContent call.
func (c *Client) GenerateContent(ctx context.Context, model string, req GenerateContentRequest) (GenerateContentResponse, error) {
	var out GenerateContentResponse
	body, err := c.doRequest(ctx, fmt.Sprintf("/models/%s:generateContent", model), req)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode generate content response: %w", err)
	}
	return out, nil
}

// EmbedContent returns an embedding vector for the given text.
func (c *Client) EmbedContent(ctx context.Context, model, text string) ([]float32, error) {
	req := embedContentRequest{Content: Content{Parts: []Part{{Text: text}}}}
	body, err := c.doRequest(ctx, fmt.Sprintf("/models/%s:embedContent", model), req)
	if err != nil {
		return nil, err
	}
	var out embedContentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode embed content response: %w", err)
	}
	return out.Embedding.Values, nil
}

func (c *Client) doRequest(ctx context.Context, path string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode gemini request: %w", err)
	}
	endpoint := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gemini request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
