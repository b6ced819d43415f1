// Package summary builds summarizer requests from conversation messages and
// interprets the summarizer's structured answer.
package summary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"turn-translator/internal/domain"
)

var (
	// ErrEmptyConversation means there is nothing to summarize; the remote
	// summarizer must not be called.
	ErrEmptyConversation = errors.New("summary: conversation has no messages")
	// ErrSummaryUnavailable wraps every failure of the remote call.
	ErrSummaryUnavailable = errors.New("summary: summary unavailable")
)

// BuildRequest renders messages, in conversation order, into the summarizer
// request body.
func BuildRequest(messages []domain.Message, source, target string) (domain.SummaryRequest, error) {
	if len(messages) == 0 {
		return domain.SummaryRequest{}, ErrEmptyConversation
	}
	var span time.Duration
	if len(messages) > 1 {
		span = messages[len(messages)-1].Timestamp.Sub(messages[0].Timestamp)
	}
	return domain.SummaryRequest{
		Messages:       FormatTranscript(messages),
		SourceLanguage: source,
		TargetLanguage: target,
		TotalMessages:  len(messages),
		TotalWords:     CountWords(messages),
		Duration:       FormatDuration(span),
	}, nil
}

// FormatTranscript renders one "[lang] text" line per message.
func FormatTranscript(messages []domain.Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[" + m.Language + "] " + m.Text)
	}
	return b.String()
}

// CountWords sums whitespace-delimited tokens across all message texts.
func CountWords(messages []domain.Message) int {
	n := 0
	for _, m := range messages {
		n += len(strings.Fields(m.Text))
	}
	return n
}

// FormatDuration renders d as "{minutes}m {seconds}s", floored to whole
// seconds. Negative durations render as zero.
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

// InterpretResponse decodes a summarizer answer. A body that is not JSON or
// carries no summary is reported as ErrSummaryUnavailable.
func InterpretResponse(raw []byte) (domain.SummaryResult, error) {
	var res domain.SummaryResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return domain.SummaryResult{}, fmt.Errorf("%w: malformed response: %v", ErrSummaryUnavailable, err)
	}
	if strings.TrimSpace(res.Summary) == "" {
		return domain.SummaryResult{}, fmt.Errorf("%w: response has no summary", ErrSummaryUnavailable)
	}
	if res.KeyPoints == nil {
		res.KeyPoints = []string{}
	}
	if res.Errors == nil {
		res.Errors = []string{}
	}
	if res.Statistics.LanguagesUsed == nil {
		res.Statistics.LanguagesUsed = []string{}
	}
	return res, nil
}
