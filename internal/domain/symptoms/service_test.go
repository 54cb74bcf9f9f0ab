package symptoms

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/llm/gemini"
	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
)

const testDisclaimer = "This is an AI-generated analysis and not a substitute for professional medical advice."

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

func newTestService(client *stubClient) Service {
	return NewService(Config{
		Model:             "gemini-2.5-flash",
		MaxConditions:     3,
		DefaultDisclaimer: testDisclaimer,
	}, client, slog.Default())
}

func TestAnalyzeRequiresSymptoms(t *testing.T) {
	client := &stubClient{}
	svc := newTestService(client)

	_, err := svc.Analyze(context.Background(), "   ", nil)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Zero(t, client.calls)
}

func TestAnalyzeParsesReport(t *testing.T) {
	client := &stubClient{response: `{
		"possibleConditions": [
			{"condition": "Common Cold", "severity": "Low", "description": "Viral infection."}
		],
		"recommendation": "Rest and hydrate.",
		"nonMedicinalRemedies": [
			{"category": "Home Remedy", "remedy": "Ginger Tea", "description": "Soothes the throat."}
		],
		"disclaimer": "Not a diagnosis."
	}`}
	svc := newTestService(client)

	analysis, err := svc.Analyze(context.Background(), "sore throat and runny nose", nil)
	require.NoError(t, err)
	require.Len(t, analysis.PossibleConditions, 1)
	require.Equal(t, SeverityLow, analysis.PossibleConditions[0].Severity)
	require.Equal(t, RemedyHome, analysis.NonMedicinalRemedies[0].Category)
	require.Equal(t, "Not a diagnosis.", analysis.Disclaimer)
}

func TestAnalyzeCapsConditions(t *testing.T) {
	client := &stubClient{response: `{
		"possibleConditions": [
			{"condition": "A", "severity": "Low", "description": "a"},
			{"condition": "B", "severity": "Low", "description": "b"},
			{"condition": "C", "severity": "Low", "description": "c"},
			{"condition": "D", "severity": "Low", "description": "d"}
		],
		"recommendation": "r",
		"disclaimer": "d"
	}`}
	svc := newTestService(client)

	analysis, err := svc.Analyze(context.Background(), "headache", nil)
	require.NoError(t, err)
	require.Len(t, analysis.PossibleConditions, 3)
}

func TestAnalyzeFillsMissingDisclaimer(t *testing.T) {
	client := &stubClient{response: `{"possibleConditions": [], "recommendation": "see a doctor", "disclaimer": ""}`}
	svc := newTestService(client)

	analysis, err := svc.Analyze(context.Background(), "chest pain", nil)
	require.NoError(t, err)
	require.Equal(t, testDisclaimer, analysis.Disclaimer)
}

func TestAnalyzePersonalInfoInterpolation(t *testing.T) {
	client := &stubClient{response: `{"possibleConditions": [], "recommendation": "r", "disclaimer": "d"}`}
	svc := newTestService(client)

	_, err := svc.Analyze(context.Background(), "fatigue", &PersonalInfo{Age: "42", History: "diabetes"})
	require.NoError(t, err)

	prompt := client.lastReq.Contents[0].Parts[0].Text
	require.Contains(t, prompt, "The user is age 42")
	require.Contains(t, prompt, `with a medical history of: "diabetes"`)
	require.NotContains(t, prompt, "gender")
}

func TestAnalyzeEmptyProfileMatchesNoProfile(t *testing.T) {
	first := &stubClient{response: `{"possibleConditions": [], "recommendation": "r", "disclaimer": "d"}`}
	second := &stubClient{response: `{"possibleConditions": [], "recommendation": "r", "disclaimer": "d"}`}

	_, err := newTestService(first).Analyze(context.Background(), "fatigue", nil)
	require.NoError(t, err)
	_, err = newTestService(second).Analyze(context.Background(), "fatigue", &PersonalInfo{})
	require.NoError(t, err)

	require.Equal(t, first.lastReq.Contents[0].Parts[0].Text, second.lastReq.Contents[0].Parts[0].Text)
}

func TestAnalyzeEmptyResponseIsModelError(t *testing.T) {
	client := &stubClient{response: " "}
	svc := newTestService(client)

	_, err := svc.Analyze(context.Background(), "fever", nil)
	require.True(t, apperrors.IsCode(err, apperrors.CodeModelError))
}

func TestAnalyzeTransportErrorHidesDetail(t *testing.T) {
	client := &stubClient{err: errors.New("dial tcp: i/o timeout")}
	svc := newTestService(client)

	_, err := svc.Analyze(context.Background(), "fever", nil)
	require.True(t, apperrors.IsCode(err, apperrors.CodeTransportError))
	require.NotContains(t, apperrors.UserMessage(err), "i/o timeout")
}

func TestSeverityUnknownFallback(t *testing.T) {
	client := &stubClient{response: `{
		"possibleConditions": [{"condition": "X", "severity": "Critical", "description": "x"}],
		"recommendation": "r",
		"disclaimer": "d"
	}`}
	svc := newTestService(client)

	analysis, err := svc.Analyze(context.Background(), "fever", nil)
	require.NoError(t, err)
	require.Equal(t, SeverityUnknown, analysis.PossibleConditions[0].Severity)
}
