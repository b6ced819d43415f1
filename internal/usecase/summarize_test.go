package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"turn-translator/internal/domain"
	"turn-translator/internal/integrations/openai"
)

type mockParams struct {
	vals  map[string]string
	err   error
	calls int
}

func (m *mockParams) GetParameter(_ context.Context, name string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.vals[name]
	if !ok {
		return "", fmt.Errorf("param not found: %s", name)
	}
	return v, nil
}

type capturingLLM struct {
	answer   string
	err      error
	model    string
	captured []domain.ChatMessage
	calls    int
}

func (c *capturingLLM) Chat(_ context.Context, model string, msgs []domain.ChatMessage) (string, error) {
	c.calls++
	c.model = model
	c.captured = msgs
	return c.answer, c.err
}

func validSummaryRequest() domain.SummaryRequest {
	return domain.SummaryRequest{
		Messages:       "[pt] Bom dia\n[en] Good morning",
		SourceLanguage: "pt",
		TargetLanguage: "en",
		TotalMessages:  2,
		TotalWords:     4,
		Duration:       "0m 3s",
	}
}

func newSummarizeService(t *testing.T, llm LLMClient, params *mockParams, model string) *SummarizeService {
	t.Helper()
	s, err := NewSummarizeService(params, llm, "/turn-translator", model, 100)
	require.NoError(t, err)
	return s
}

func TestNewSummarizeService_Validation(t *testing.T) {
	_, err := NewSummarizeService(nil, &capturingLLM{}, "/p", "m", 0)
	require.Error(t, err)
	_, err = NewSummarizeService(&mockParams{}, nil, "/p", "m", 0)
	require.Error(t, err)
	_, err = NewSummarizeService(&mockParams{}, &capturingLLM{}, " ", "m", 0)
	require.Error(t, err)

	s, err := NewSummarizeService(&mockParams{}, &capturingLLM{}, "/p/", "m", 0)
	require.NoError(t, err)
	require.Equal(t, defaultMaxTranscript, s.maxTranscript)
	require.Equal(t, "/p", s.paramPrefix)
}

func TestSummarize_HappyPath(t *testing.T) {
	llm := &capturingLLM{answer: `{"summary":"Two people greet each other.","keyPoints":["greeting"],"errors":[]}`}
	s := newSummarizeService(t, llm, &mockParams{}, "gpt-3.5-turbo")

	res, err := s.Summarize(context.Background(), validSummaryRequest())
	require.NoError(t, err)
	require.Equal(t, "Two people greet each other.", res.Summary)
	require.Equal(t, []string{"greeting"}, res.KeyPoints)
	require.Equal(t, []string{}, res.Errors)
	require.Equal(t, domain.SummaryStatistics{
		TotalMessages: 2, TotalWords: 4, Duration: "0m 3s", LanguagesUsed: []string{"pt", "en"},
	}, res.Statistics)

	require.Equal(t, "gpt-3.5-turbo", llm.model)
	require.Len(t, llm.captured, 2)
	require.Equal(t, "system", llm.captured[0].Role)
	require.Contains(t, llm.captured[0].Content, "Português (pt)")
	require.Contains(t, llm.captured[0].Content, "English (en)")
	require.Equal(t, "user", llm.captured[1].Role)
	require.True(t, strings.HasSuffix(llm.captured[1].Content, "[pt] Bom dia\n[en] Good morning"))
}

func TestSummarize_ModelFromParamStoreIsCached(t *testing.T) {
	params := &mockParams{vals: map[string]string{"/turn-translator/config/openai_model": " gpt-4o-mini "}}
	llm := &capturingLLM{answer: `{"summary":"ok","keyPoints":[],"errors":[]}`}
	s := newSummarizeService(t, llm, params, "")

	for i := 0; i < 3; i++ {
		_, err := s.Summarize(context.Background(), validSummaryRequest())
		require.NoError(t, err)
	}
	require.Equal(t, "gpt-4o-mini", llm.model)
	require.Equal(t, 1, params.calls)
}

func TestSummarize_ModelLoadFailure(t *testing.T) {
	s := newSummarizeService(t, &capturingLLM{}, &mockParams{err: errors.New("ssm down")}, "")
	_, err := s.Summarize(context.Background(), validSummaryRequest())
	require.Equal(t, ErrorInternal, CodeOf(err))
	require.ErrorContains(t, err, "ssm down")
}

func TestSummarize_InputValidation(t *testing.T) {
	llm := &capturingLLM{answer: `{"summary":"x"}`}
	s := newSummarizeService(t, llm, &mockParams{}, "m")

	req := validSummaryRequest()
	req.Messages = "  "
	_, err := s.Summarize(context.Background(), req)
	var ue *Error
	require.True(t, errors.As(err, &ue))
	require.Equal(t, ErrorInvalidInput, ue.Code)
	require.Equal(t, "empty_messages", ue.Reason)

	req = validSummaryRequest()
	req.Messages = strings.Repeat("a", 101)
	_, err = s.Summarize(context.Background(), req)
	require.True(t, errors.As(err, &ue))
	require.Equal(t, "transcript_too_long", ue.Reason)

	req = validSummaryRequest()
	req.TargetLanguage = ""
	_, err = s.Summarize(context.Background(), req)
	require.True(t, errors.As(err, &ue))
	require.Equal(t, "missing_language", ue.Reason)

	require.Zero(t, llm.calls)
}

func TestSummarize_UpstreamErrors(t *testing.T) {
	rate := &capturingLLM{err: &openai.HTTPStatusError{StatusCode: http.StatusTooManyRequests}}
	_, err := newSummarizeService(t, rate, &mockParams{}, "m").Summarize(context.Background(), validSummaryRequest())
	require.Equal(t, ErrorRateLimited, CodeOf(err))

	broken := &capturingLLM{err: &openai.HTTPStatusError{StatusCode: http.StatusBadGateway}}
	_, err = newSummarizeService(t, broken, &mockParams{}, "m").Summarize(context.Background(), validSummaryRequest())
	require.Equal(t, ErrorUpstream, CodeOf(err))

	network := &capturingLLM{err: errors.New("connection reset")}
	_, err = newSummarizeService(t, network, &mockParams{}, "m").Summarize(context.Background(), validSummaryRequest())
	require.Equal(t, ErrorUpstream, CodeOf(err))

	empty := &capturingLLM{answer: "   "}
	_, err = newSummarizeService(t, empty, &mockParams{}, "m").Summarize(context.Background(), validSummaryRequest())
	require.Equal(t, ErrorUpstream, CodeOf(err))
}

func TestSummarize_PlainTextAnswerBecomesSummary(t *testing.T) {
	llm := &capturingLLM{answer: "They talked about a trip."}
	res, err := newSummarizeService(t, llm, &mockParams{}, "m").Summarize(context.Background(), validSummaryRequest())
	require.NoError(t, err)
	require.Equal(t, "They talked about a trip.", res.Summary)
	require.Equal(t, []string{}, res.KeyPoints)
}
