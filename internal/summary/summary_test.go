package summary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"turn-translator/internal/domain"
)

func twoMessages() []domain.Message {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []domain.Message{
		{Text: "Bom dia, como foi a viagem?", Language: "pt", Timestamp: t0},
		{Text: "Good morning, how's traveling?", Language: "en", Timestamp: t0.Add(125 * time.Second), IsTranslation: true},
	}
}

func TestBuildRequest_Statistics(t *testing.T) {
	req, err := BuildRequest(twoMessages(), "pt", "en")
	require.NoError(t, err)
	require.Equal(t, 2, req.TotalMessages)
	require.Equal(t, 10, req.TotalWords)
	require.Equal(t, "2m 5s", req.Duration)
	require.Equal(t, "pt", req.SourceLanguage)
	require.Equal(t, "en", req.TargetLanguage)
	require.Equal(t, "[pt] Bom dia, como foi a viagem?\n[en] Good morning, how's traveling?", req.Messages)
}

func TestBuildRequest_Empty(t *testing.T) {
	_, err := BuildRequest(nil, "pt", "en")
	require.ErrorIs(t, err, ErrEmptyConversation)
}

func TestBuildRequest_SingleMessageHasZeroDuration(t *testing.T) {
	req, err := BuildRequest(twoMessages()[:1], "pt", "en")
	require.NoError(t, err)
	require.Equal(t, "0m 0s", req.Duration)
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "0m 0s", FormatDuration(0))
	require.Equal(t, "0m 59s", FormatDuration(59*time.Second+900*time.Millisecond))
	require.Equal(t, "61m 1s", FormatDuration(61*time.Minute+time.Second))
	require.Equal(t, "0m 0s", FormatDuration(-5*time.Second))
}

func TestCountWords_CollapsesWhitespace(t *testing.T) {
	msgs := []domain.Message{{Text: "  one\ttwo \n three "}, {Text: ""}}
	require.Equal(t, 3, CountWords(msgs))
}

func TestInterpretResponse(t *testing.T) {
	res, err := InterpretResponse([]byte(`{"summary":"A greeting.","statistics":{"totalMessages":2}}`))
	require.NoError(t, err)
	require.Equal(t, "A greeting.", res.Summary)
	require.Equal(t, []string{}, res.KeyPoints)
	require.Equal(t, []string{}, res.Errors)
	require.Equal(t, 2, res.Statistics.TotalMessages)

	_, err = InterpretResponse([]byte(`<html>`))
	require.ErrorIs(t, err, ErrSummaryUnavailable)

	_, err = InterpretResponse([]byte(`{"summary":"  "}`))
	require.ErrorIs(t, err, ErrSummaryUnavailable)
}

func TestClient_Summarize(t *testing.T) {
	var got domain.SummaryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"summary":"Trip talk.","keyPoints":["travel"],"errors":[],
			"statistics":{"totalMessages":2,"totalWords":10,"duration":"2m 5s","languagesUsed":["pt","en"]}}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	req, err := BuildRequest(twoMessages(), "pt", "en")
	require.NoError(t, err)
	res, err := c.Summarize(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "Trip talk.", res.Summary)
	require.Equal(t, []string{"travel"}, res.KeyPoints)
	require.Equal(t, []string{"pt", "en"}, res.Statistics.LanguagesUsed)
	require.Equal(t, req, got)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"RATE_LIMITED","reason":"slow down"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	_, err = c.Summarize(context.Background(), domain.SummaryRequest{Messages: "[pt] oi"})
	require.ErrorIs(t, err, ErrSummaryUnavailable)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusTooManyRequests, statusErr.HTTPStatusCode())
	require.Equal(t, "slow down", statusErr.Body)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)
	_, err = c.Summarize(context.Background(), domain.SummaryRequest{Messages: "[pt] oi"})
	require.ErrorIs(t, err, ErrSummaryUnavailable)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClient_EmptyURL(t *testing.T) {
	_, err := NewClient("  ")
	require.Error(t, err)
}
