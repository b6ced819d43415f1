package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"turn-translator/internal/domain"
	"turn-translator/internal/translation"
	"turn-translator/internal/usecase"
)

type stubSummarizer struct {
	out   domain.SummaryResult
	err   error
	in    domain.SummaryRequest
	calls int
}

func (s *stubSummarizer) Summarize(_ context.Context, req domain.SummaryRequest) (domain.SummaryResult, error) {
	s.calls++
	s.in = req
	return s.out, s.err
}

type stubTranslator struct {
	out usecase.TranslateOutput
	err error
	in  usecase.TranslateInput
}

func (s *stubTranslator) Translate(_ context.Context, in usecase.TranslateInput) (usecase.TranslateOutput, error) {
	s.in = in
	return s.out, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeEvent(path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       path,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

const summaryBody = `{"messages":"[pt] Bom dia\n[en] Good morning","sourceLanguage":"pt","targetLanguage":"en",
	"totalMessages":2,"totalWords":4,"duration":"0m 3s"}`

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil, nil, nil)
	require.Error(t, err)
}

func TestHandle_Summarize(t *testing.T) {
	uc := &stubSummarizer{out: domain.SummaryResult{
		Summary:   "Greetings.",
		KeyPoints: []string{"greeting"},
		Errors:    []string{},
		Statistics: domain.SummaryStatistics{
			TotalMessages: 2, TotalWords: 4, Duration: "0m 3s", LanguagesUsed: []string{"pt", "en"},
		},
	}}
	h, err := NewHandler(uc, nil, quietLogger())
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent("/summarize", summaryBody))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])

	require.Equal(t, domain.SummaryRequest{
		Messages: "[pt] Bom dia\n[en] Good morning", SourceLanguage: "pt", TargetLanguage: "en",
		TotalMessages: 2, TotalWords: 4, Duration: "0m 3s",
	}, uc.in)

	out := parseBody[domain.SummaryResult](t, resp.Body)
	require.Equal(t, uc.out, out)
}

func TestHandle_SummarizeBase64Body(t *testing.T) {
	uc := &stubSummarizer{out: domain.SummaryResult{Summary: "ok"}}
	h, err := NewHandler(uc, nil, quietLogger())
	require.NoError(t, err)

	event := makeEvent("/prod/summarize/", base64.StdEncoding.EncodeToString([]byte(summaryBody)))
	event.IsBase64Encoded = true
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "pt", uc.in.SourceLanguage)
}

func TestHandle_Translate(t *testing.T) {
	tr := &stubTranslator{out: usecase.TranslateOutput{
		TranslatedText: "hello", Source: translation.SourceOffline,
	}}
	h, err := NewHandler(&stubSummarizer{}, tr, quietLogger())
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent("/translate", `{"text":"olá","sourceLanguage":"pt","targetLanguage":"en"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, usecase.TranslateInput{Text: "olá", SourceLanguage: "pt", TargetLanguage: "en"}, tr.in)
	require.JSONEq(t, `{"translatedText":"hello","source":"offline"}`, resp.Body)
}

func TestHandle_TranslateNotConfigured(t *testing.T) {
	h, err := NewHandler(&stubSummarizer{}, nil, quietLogger())
	require.NoError(t, err)
	resp, err := h.Handle(context.Background(), makeEvent("/translate", `{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandle_MethodAndRoute(t *testing.T) {
	uc := &stubSummarizer{}
	h, err := NewHandler(uc, nil, quietLogger())
	require.NoError(t, err)

	event := makeEvent("/summarize", "")
	event.HTTPMethod = http.MethodGet
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.Equal(t, "METHOD_NOT_ALLOWED", parseBody[errorResponse](t, resp.Body).Error)

	resp, err = h.Handle(context.Background(), makeEvent("/ask", summaryBody))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Zero(t, uc.calls)
}

func TestHandle_InvalidBody(t *testing.T) {
	uc := &stubSummarizer{}
	h, err := NewHandler(uc, &stubTranslator{}, quietLogger())
	require.NoError(t, err)

	for _, path := range []string{"/summarize", "/translate"} {
		resp, err := h.Handle(context.Background(), makeEvent(path, `not-json`))
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		out := parseBody[errorResponse](t, resp.Body)
		require.Equal(t, string(usecase.ErrorInvalidInput), out.Error)
		require.Equal(t, "invalid_json", out.Reason)
	}

	event := makeEvent("/summarize", "%%%")
	event.IsBase64Encoded = true
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = h.Handle(context.Background(), makeEvent("/summarize", strings.Repeat(" ", maxBodyBytes+1)))
	require.NoError(t, err)
	require.Equal(t, "body_too_large", parseBody[errorResponse](t, resp.Body).Reason)
	require.Zero(t, uc.calls)
}

func TestHandle_MapsUseCaseErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid input", err: &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "empty_messages"}, status: http.StatusBadRequest, code: string(usecase.ErrorInvalidInput)},
		{name: "empty conversation", err: &usecase.Error{Code: usecase.ErrorEmptyConversation, Reason: "no_messages"}, status: http.StatusBadRequest, code: string(usecase.ErrorEmptyConversation)},
		{name: "rate limited", err: &usecase.Error{Code: usecase.ErrorRateLimited, Reason: "openai_rate_limited"}, status: http.StatusTooManyRequests, code: string(usecase.ErrorRateLimited)},
		{name: "upstream", err: &usecase.Error{Code: usecase.ErrorUpstream, Reason: "openai_error"}, status: http.StatusBadGateway, code: string(usecase.ErrorUpstream)},
		{name: "unavailable", err: &usecase.Error{Code: usecase.ErrorSummaryUnavailable, Reason: "x"}, status: http.StatusServiceUnavailable, code: string(usecase.ErrorSummaryUnavailable)},
		{name: "internal", err: &usecase.Error{Code: usecase.ErrorInternal, Reason: "ssm_load_error"}, status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := NewHandler(&stubSummarizer{err: tc.err}, nil, quietLogger())
			require.NoError(t, err)

			resp, err := h.Handle(context.Background(), makeEvent("/summarize", summaryBody))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			require.Equal(t, tc.code, parseBody[errorResponse](t, resp.Body).Error)
		})
	}
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	h, err := NewHandler(&stubSummarizer{out: domain.SummaryResult{Summary: "ok"}}, nil, quietLogger())
	require.NoError(t, err)

	event := makeEvent("/summarize", summaryBody)
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])
}
