package pill

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/llm/gemini"
	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
)

type stubClient struct {
	response string
	err      error
	calls    int
	lastReq  gemini.GenerateContentRequest
}

func (s *stubClient) GenerateContent(_ context.Context, _ string, req gemini.GenerateContentRequest) (gemini.GenerateContentResponse, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return gemini.GenerateContentResponse{}, s.err
	}
	return gemini.GenerateContentResponse{
		Candidates: []gemini.Candidate{{Content: gemini.Content{Parts: []gemini.Part{{Text: s.response}}}}},
	}, nil
}

func TestIdentifyRejectsNonImageUploads(t *testing.T) {
	client := &stubClient{}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	_, err := svc.Identify(context.Background(), nil, "image/png")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Identify(context.Background(), []byte("data"), "application/pdf")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	require.Zero(t, client.calls)
}

func TestIdentifyParsesResult(t *testing.T) {
	client := &stubClient{response: `{
		"name": "Dolo 650",
		"strength": "650 mg",
		"color": "White",
		"shape": "Oval",
		"usageDescription": "Used for fever and mild pain."
	}`}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	result, err := svc.Identify(context.Background(), []byte("fake-image"), "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, "Dolo 650", result.Name)
	require.Equal(t, "650 mg", result.Strength)
	require.Empty(t, result.Imprint)
}

func TestIdentifySendsImageAndPrompt(t *testing.T) {
	client := &stubClient{response: `{"name":"Dolo 650","usageDescription":"fever"}`}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	_, err := svc.Identify(context.Background(), []byte("fake-image"), "image/jpeg")
	require.NoError(t, err)

	parts := client.lastReq.Contents[0].Parts
	require.Len(t, parts, 2)
	require.Equal(t, "image/jpeg", parts[0].InlineData.MimeType)
	require.NotEmpty(t, parts[0].InlineData.Data)
	require.Contains(t, parts[1].Text, "imprint, color, shape")
	require.Equal(t, "application/json", client.lastReq.GenerationConfig.ResponseMIMEType)
}

func TestIdentifyMissingNameIsModelError(t *testing.T) {
	client := &stubClient{response: `{"name":"  ","usageDescription":"unknown"}`}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	_, err := svc.Identify(context.Background(), []byte("fake-image"), "image/jpeg")
	require.True(t, apperrors.IsCode(err, apperrors.CodeModelError))
}

func TestIdentifyEmptyResponseIsModelError(t *testing.T) {
	client := &stubClient{response: ""}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	_, err := svc.Identify(context.Background(), []byte("fake-image"), "image/jpeg")
	require.True(t, apperrors.IsCode(err, apperrors.CodeModelError))
}

func TestIdentifyMalformedResponseIsFormatError(t *testing.T) {
	client := &stubClient{response: "definitely not json"}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	_, err := svc.Identify(context.Background(), []byte("fake-image"), "image/jpeg")
	require.True(t, apperrors.IsCode(err, apperrors.CodeFormatError))
}

func TestIdentifyTransportErrorHidesDetail(t *testing.T) {
	client := &stubClient{err: errors.New("connection reset by peer")}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	_, err := svc.Identify(context.Background(), []byte("fake-image"), "image/jpeg")
	require.True(t, apperrors.IsCode(err, apperrors.CodeTransportError))
	require.NotContains(t, apperrors.UserMessage(err), "connection reset")
}
