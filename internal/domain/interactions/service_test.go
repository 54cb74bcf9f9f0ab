package interactions

import (
	"context"
	"encoding/json"
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

func TestCheckRejectsShortListsBeforeAnyCall(t *testing.T) {
	client := &stubClient{}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	for _, medicines := range [][]string{
		nil,
		{"Aspirin"},
		{"Aspirin", "aspirin"},
		{"Aspirin", "  ", ""},
	} {
		_, err := svc.Check(context.Background(), medicines)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	}
	require.Zero(t, client.calls)
}

func TestCheckParsesAnalysis(t *testing.T) {
	client := &stubClient{response: `{
		"summary": "One major interaction found.",
		"interactions": [
			{"medicines": ["Warfarin", "Aspirin"], "severity": "Major", "description": "Increased bleeding risk."}
		]
	}`}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	analysis, err := svc.Check(context.Background(), []string{"Warfarin", "Aspirin"})
	require.NoError(t, err)
	require.Equal(t, "One major interaction found.", analysis.Summary)
	require.Len(t, analysis.Interactions, 1)
	require.Equal(t, SeverityMajor, analysis.Interactions[0].Severity)
}

func TestCheckNoInteractionsYieldsEmptySlice(t *testing.T) {
	client := &stubClient{response: `{"summary": "No interactions found.", "interactions": []}`}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	analysis, err := svc.Check(context.Background(), []string{"Paracetamol", "Cetirizine"})
	require.NoError(t, err)
	require.NotNil(t, analysis.Interactions)
	require.Empty(t, analysis.Interactions)
}

func TestCheckEmptyResponseIsModelError(t *testing.T) {
	client := &stubClient{response: "   "}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	_, err := svc.Check(context.Background(), []string{"A", "B"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeModelError))
}

func TestCheckMalformedResponseIsFormatError(t *testing.T) {
	client := &stubClient{response: "not json"}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	_, err := svc.Check(context.Background(), []string{"A", "B"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeFormatError))
}

func TestCheckTransportErrorHidesDetail(t *testing.T) {
	client := &stubClient{err: errors.New("tls handshake timeout")}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	_, err := svc.Check(context.Background(), []string{"A", "B"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeTransportError))
	require.NotContains(t, apperrors.UserMessage(err), "tls")
}

func TestCheckRequestsConstrainedPairs(t *testing.T) {
	client := &stubClient{response: `{"summary": "ok", "interactions": []}`}
	svc := NewService("gemini-2.5-flash", client, slog.Default())

	_, err := svc.Check(context.Background(), []string{"A", "B"})
	require.NoError(t, err)

	schema := client.lastReq.GenerationConfig.ResponseSchema
	pair := schema.Properties["interactions"].Items.Properties["medicines"]
	require.Equal(t, 2, pair.MinItems)
	require.Equal(t, 2, pair.MaxItems)
}

func TestSeverityUnknownFallback(t *testing.T) {
	var interaction Interaction
	require.NoError(t, json.Unmarshal([]byte(`{"medicines":["A","B"],"severity":"Catastrophic","description":"d"}`), &interaction))
	require.Equal(t, SeverityUnknown, interaction.Severity)
}
