package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"turn-translator/internal/domain"
)

// timestamp accepts RFC 3339 strings (the format written by this package and
// by JavaScript's Date.toJSON) as well as epoch milliseconds.
type timestamp time.Time

func (t *timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = timestamp(time.Time{})
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := parseTimestamp(s)
		if err != nil {
			return err
		}
		*t = timestamp(parsed)
		return nil
	}
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("history: invalid timestamp %s", b)
	}
	*t = timestamp(time.UnixMilli(ms).UTC())
	return nil
}

func (t timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339Nano))
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("history: invalid timestamp %q: %w", s, err)
	}
	return parsed.UTC(), nil
}

type messageRecord struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Language      string    `json:"language"`
	Timestamp     timestamp `json:"timestamp"`
	IsTranslation bool      `json:"isTranslation,omitempty"`
}

type conversationRecord struct {
	ID             string          `json:"id"`
	SourceLanguage string          `json:"sourceLanguage"`
	TargetLanguage string          `json:"targetLanguage"`
	Messages       []messageRecord `json:"messages"`
	CreatedAt      timestamp       `json:"createdAt"`
	UpdatedAt      timestamp       `json:"updatedAt"`
}

func encodeHistory(convs []domain.Conversation) ([]byte, error) {
	records := make([]conversationRecord, len(convs))
	for i, c := range convs {
		rec := conversationRecord{
			ID:             c.ID,
			SourceLanguage: c.SourceLanguage,
			TargetLanguage: c.TargetLanguage,
			Messages:       make([]messageRecord, len(c.Messages)),
			CreatedAt:      timestamp(c.CreatedAt),
			UpdatedAt:      timestamp(c.UpdatedAt),
		}
		for j, m := range c.Messages {
			rec.Messages[j] = messageRecord{
				ID:            m.ID,
				Text:          m.Text,
				Language:      m.Language,
				Timestamp:     timestamp(m.Timestamp),
				IsTranslation: m.IsTranslation,
			}
		}
		records[i] = rec
	}
	buf, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("history: encode: %w", err)
	}
	return buf, nil
}

// decodeHistory rehydrates the persisted list into domain values with real
// time.Time timestamps.
func decodeHistory(raw []byte) ([]domain.Conversation, error) {
	var records []conversationRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("history: decode: %w", err)
	}
	out := make([]domain.Conversation, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		conv := domain.Conversation{
			ID:             rec.ID,
			SourceLanguage: rec.SourceLanguage,
			TargetLanguage: rec.TargetLanguage,
			Messages:       make([]domain.Message, len(rec.Messages)),
			CreatedAt:      time.Time(rec.CreatedAt).UTC(),
			UpdatedAt:      time.Time(rec.UpdatedAt).UTC(),
		}
		for j, m := range rec.Messages {
			conv.Messages[j] = domain.Message{
				ID:            m.ID,
				Text:          m.Text,
				Language:      m.Language,
				Timestamp:     time.Time(m.Timestamp).UTC(),
				IsTranslation: m.IsTranslation,
			}
		}
		if conv.UpdatedAt.Before(conv.CreatedAt) {
			conv.UpdatedAt = conv.CreatedAt
		}
		out = append(out, conv)
	}
	return out, nil
}
