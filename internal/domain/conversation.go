package domain

import "time"

// Message is a single utterance or translation inside a conversation.
// Messages are never edited once appended.
type Message struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Language      string    `json:"language"`
	Timestamp     time.Time `json:"timestamp"`
	IsTranslation bool      `json:"isTranslation"`
}

// Conversation is an ordered, append-only sequence of messages between two
// fixed languages.
type Conversation struct {
	ID             string    `json:"id"`
	SourceLanguage string    `json:"sourceLanguage"`
	TargetLanguage string    `json:"targetLanguage"`
	Messages       []Message `json:"messages"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers cannot alias the message slice.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
