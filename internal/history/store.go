// Package history keeps the bounded, most-recent-first list of conversations
// and persists it as one JSON document under a single storage key.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"turn-translator/internal/domain"
	"turn-translator/internal/storage"
)

const (
	DefaultKey      = "translator_conversations"
	DefaultCapacity = 50
)

// Store owns the conversation list and the current conversation.
// In-memory state is authoritative; persistence failures are logged and
// remembered but never roll back a mutation.
type Store struct {
	kv       storage.KV
	key      string
	capacity int
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger

	mu            sync.Mutex
	conversations []domain.Conversation
	currentID     string
	persistErr    error
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if k := strings.TrimSpace(key); k != "" {
			s.key = k
		}
	}
}

func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty store. Call Open to load persisted history.
func New(kv storage.KV, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, errors.New("history: storage must not be nil")
	}
	s := &Store{
		kv:       kv,
		key:      DefaultKey,
		capacity: DefaultCapacity,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open replaces in-memory history with the persisted list. A missing key is
// an empty history; an unreadable payload is logged and also treated as empty.
func (s *Store) Open(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("history: load: %w", err)
	}

	var convs []domain.Conversation
	if ok && strings.TrimSpace(raw) != "" {
		convs, err = decodeHistory([]byte(raw))
		if err != nil {
			s.logger.Error("failed to decode persisted history, starting empty", "key", s.key, "err", err)
			convs = nil
		}
	}
	if len(convs) > s.capacity {
		convs = convs[:s.capacity]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = convs
	if s.indexOf(s.currentID) < 0 {
		s.currentID = ""
	}
	return nil
}

// CreateConversation starts an empty conversation, puts it at the front of
// the history and makes it current. The oldest entries beyond capacity are
// evicted.
func (s *Store) CreateConversation(ctx context.Context, sourceLang, targetLang string) domain.Conversation {
	now := s.now().UTC()
	conv := domain.Conversation{
		ID:             s.newID(),
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		Messages:       []domain.Message{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	s.mu.Lock()
	updated := make([]domain.Conversation, 0, len(s.conversations)+1)
	updated = append(updated, conv)
	updated = append(updated, s.conversations...)
	if len(updated) > s.capacity {
		for _, evicted := range updated[s.capacity:] {
			s.logger.Info("evicting conversation from history", "conversation_id", evicted.ID)
		}
		updated = updated[:s.capacity]
	}
	s.conversations = updated
	s.currentID = conv.ID
	s.persistLocked(ctx)
	s.mu.Unlock()

	return expose(conv)
}

// ArchiveConversation leaves the current conversation in history as it is and
// starts a fresh one.
func (s *Store) ArchiveConversation(ctx context.Context, sourceLang, targetLang string) domain.Conversation {
	return s.CreateConversation(ctx, sourceLang, targetLang)
}

// AddMessage appends msg to the current conversation. It reports false and
// does nothing when no conversation is current.
func (s *Store) AddMessage(ctx context.Context, msg domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(s.currentID)
	if idx < 0 {
		return false
	}

	now := s.now().UTC()
	if msg.ID == "" {
		msg.ID = s.newID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}
	msg.Timestamp = msg.Timestamp.UTC()

	conv := s.conversations[idx].Clone()
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = latest(conv.UpdatedAt, now, msg.Timestamp)
	s.conversations[idx] = conv

	s.persistLocked(ctx)
	return true
}

// DeleteConversation removes a conversation. Deleting the current
// conversation leaves no conversation current.
func (s *Store) DeleteConversation(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	updated := make([]domain.Conversation, 0, len(s.conversations)-1)
	updated = append(updated, s.conversations[:idx]...)
	updated = append(updated, s.conversations[idx+1:]...)
	s.conversations = updated
	if s.currentID == id {
		s.currentID = ""
	}
	s.persistLocked(ctx)
	return true
}

// ClearAllConversations empties the history and the current conversation.
func (s *Store) ClearAllConversations(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = nil
	s.currentID = ""
	s.persistLocked(ctx)
}

// LoadConversation makes a stored conversation current.
func (s *Store) LoadConversation(id string) (domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Conversation{}, false
	}
	s.currentID = id
	return expose(s.conversations[idx]), true
}

// Current returns the active conversation, if any.
func (s *Store) Current() (domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(s.currentID)
	if idx < 0 {
		return domain.Conversation{}, false
	}
	return expose(s.conversations[idx]), true
}

// Get returns a stored conversation without changing the current one.
func (s *Store) Get(id string) (domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Conversation{}, false
	}
	return expose(s.conversations[idx]), true
}

// Conversations returns the history, most recent first.
func (s *Store) Conversations() []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = expose(c)
	}
	return out
}

// LastPersistError returns the error of the most recent save, or nil once a
// later save succeeds.
func (s *Store) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, c := range s.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked serializes the whole list. Callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context) {
	payload, err := encodeHistory(s.conversations)
	if err == nil {
		err = s.kv.Set(ctx, s.key, string(payload))
	}
	if err != nil {
		s.logger.Error("failed to persist conversation history", "key", s.key, "conversations", len(s.conversations), "err", err)
		s.persistErr = fmt.Errorf("history: persist: %w", err)
		return
	}
	s.persistErr = nil
}

// expose is the single read path for every conversation handed out.
func expose(c domain.Conversation) domain.Conversation {
	out := c.Clone()
	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()
	for i := range out.Messages {
		out.Messages[i].Timestamp = out.Messages[i].Timestamp.UTC()
	}
	return out
}

func latest(ts ...time.Time) time.Time {
	var out time.Time
	for _, t := range ts {
		if t.After(out) {
			out = t
		}
	}
	return out
}
