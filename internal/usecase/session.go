package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"turn-translator/internal/domain"
	"turn-translator/internal/history"
	"turn-translator/internal/speech"
	"turn-translator/internal/summary"
	"turn-translator/internal/translation"
	"turn-translator/internal/turn"
)

// HistoryStore is satisfied by *history.Store.
type HistoryStore interface {
	Open(ctx context.Context) error
	CreateConversation(ctx context.Context, sourceLang, targetLang string) domain.Conversation
	ArchiveConversation(ctx context.Context, sourceLang, targetLang string) domain.Conversation
	AddMessage(ctx context.Context, msg domain.Message) bool
	DeleteConversation(ctx context.Context, id string) bool
	ClearAllConversations(ctx context.Context)
	LoadConversation(id string) (domain.Conversation, bool)
	Current() (domain.Conversation, bool)
	Get(id string) (domain.Conversation, bool)
	Conversations() []domain.Conversation
	LastPersistError() error
}

// Summarizer is satisfied by *summary.Client.
type Summarizer interface {
	Summarize(ctx context.Context, req domain.SummaryRequest) (domain.SummaryResult, error)
}

// Exchange is the outcome of one utterance: what was said, what it became,
// and who speaks next.
type Exchange struct {
	Original    domain.Message
	Translation domain.Message
	Result      translation.Result
	Speaker     turn.Speaker
	NextSpeaker turn.Speaker
	// PersistErr is set when the history could not be saved durably. The
	// exchange is still kept in memory.
	PersistErr error
	// PlaybackErr is set when auto-play failed.
	PlaybackErr error
}

// Session drives a live two-party conversation: it owns the turn machine and
// routes each utterance through the resolver into the history store.
type Session struct {
	resolver   Resolver
	store      HistoryStore
	player     speech.Playback
	summarizer Summarizer
	machine    *turn.Machine
	autoPlay   bool
	now        func() time.Time
	newID      func() string
	logger     *slog.Logger
}

type SessionOption func(*Session)

func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func WithSessionIDs(newID func() string) SessionOption {
	return func(s *Session) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func WithAutoPlay(on bool) SessionOption {
	return func(s *Session) {
		s.autoPlay = on
	}
}

// WithSummarizer enables Summarize.
func WithSummarizer(sum Summarizer) SessionOption {
	return func(s *Session) {
		s.summarizer = sum
	}
}

// NewSession wires a session for the source/target pair. player may be nil,
// which disables playback.
func NewSession(r Resolver, store HistoryStore, player speech.Playback, source, target string, opts ...SessionOption) (*Session, error) {
	if r == nil {
		return nil, errors.New("usecase: resolver must not be nil")
	}
	if store == nil {
		return nil, errors.New("usecase: history store must not be nil")
	}
	source, target, err := validatePair(source, target)
	if err != nil {
		return nil, err
	}
	s := &Session{
		resolver: r,
		store:    store,
		player:   player,
		machine:  turn.New(source, target),
		autoPlay: true,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func validatePair(source, target string) (string, string, error) {
	source = domain.NormalizeLanguage(source)
	target = domain.NormalizeLanguage(target)
	if !domain.IsSupported(source) {
		return "", "", newError(ErrorInvalidInput, "unsupported_source_language", fmt.Errorf("language %q", source))
	}
	if !domain.IsSupported(target) {
		return "", "", newError(ErrorInvalidInput, "unsupported_target_language", fmt.Errorf("language %q", target))
	}
	return source, target, nil
}

// Start loads persisted history and opens a conversation for the session's
// language pair.
func (s *Session) Start(ctx context.Context) error {
	if err := s.store.Open(ctx); err != nil {
		return newError(ErrorInternal, "history_load_error", err)
	}
	if _, ok := s.store.Current(); !ok {
		src, tgt := s.machine.Languages()
		conv := s.store.CreateConversation(ctx, src, tgt)
		s.logger.Info("conversation started", "conversation_id", conv.ID, "source", src, "target", tgt)
	}
	return nil
}

// HandleUtterance processes one final transcript from the current speaker.
// The original is stored before its translation, the translation is spoken
// once, and the turn passes to the other speaker unless it was switched
// manually meanwhile.
func (s *Session) HandleUtterance(ctx context.Context, text string) (Exchange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Exchange{}, newError(ErrorInvalidInput, "empty_utterance", nil)
	}

	u, err := s.machine.Begin()
	if err != nil {
		return Exchange{}, newError(ErrorTurnInProgress, "translation_in_progress", err)
	}

	conv := s.ensureConversation(ctx)
	logger := s.logger.With("conversation_id", conv.ID, "seq", u.Seq)

	original := domain.Message{
		ID:        s.newID(),
		Text:      text,
		Language:  u.Spoken,
		Timestamp: s.now().UTC(),
	}
	s.store.AddMessage(ctx, original)

	res := s.resolver.Resolve(ctx, text, u.Spoken, u.Other)
	if res.UsedFallback() {
		logger.Warn("translation fell back to original text", "failures", len(res.Failures))
	}

	translated := domain.Message{
		ID:            s.newID(),
		Text:          res.Text,
		Language:      u.Other,
		Timestamp:     s.now().UTC(),
		IsTranslation: true,
	}
	s.store.AddMessage(ctx, translated)

	ex := Exchange{
		Original:    original,
		Translation: translated,
		Result:      res,
		Speaker:     u.Speaker,
		PersistErr:  s.store.LastPersistError(),
	}

	if s.autoPlay && s.player != nil {
		if err := s.player.Speak(ctx, res.Text, u.Other); err != nil {
			logger.Warn("playback failed", "err", err)
			ex.PlaybackErr = err
		}
	}

	if _, flipped := s.machine.Complete(u.Seq); !flipped {
		logger.Debug("speaker kept after manual change")
	}
	ex.NextSpeaker = s.machine.Current()
	return ex, nil
}

func (s *Session) ensureConversation(ctx context.Context) domain.Conversation {
	if conv, ok := s.store.Current(); ok {
		return conv
	}
	src, tgt := s.machine.Languages()
	return s.store.CreateConversation(ctx, src, tgt)
}

// SwitchSpeaker hands the turn to the other participant.
func (s *Session) SwitchSpeaker() turn.Speaker {
	return s.machine.Switch()
}

// SwapLanguages exchanges source and target. The current conversation keeps
// going.
func (s *Session) SwapLanguages() (source, target string) {
	if s.player != nil {
		s.player.Stop()
	}
	return s.machine.Swap()
}

// SetLanguages changes the pair and starts a new conversation for it.
func (s *Session) SetLanguages(ctx context.Context, source, target string) (domain.Conversation, error) {
	source, target, err := validatePair(source, target)
	if err != nil {
		return domain.Conversation{}, err
	}
	s.machine.SetLanguages(source, target)
	return s.store.ArchiveConversation(ctx, source, target), nil
}

// Archive leaves the current conversation in history and starts a fresh one
// with the session's current pair.
func (s *Session) Archive(ctx context.Context) domain.Conversation {
	src, tgt := s.machine.Languages()
	s.machine.SetLanguages(src, tgt)
	conv := s.store.ArchiveConversation(ctx, src, tgt)
	s.logger.Info("conversation archived", "conversation_id", conv.ID)
	return conv
}

// LoadConversation resumes a stored conversation with its language pair.
func (s *Session) LoadConversation(id string) (domain.Conversation, error) {
	conv, ok := s.store.LoadConversation(strings.TrimSpace(id))
	if !ok {
		return domain.Conversation{}, newError(ErrorNotFound, "conversation_not_found", nil)
	}
	s.machine.SetLanguages(conv.SourceLanguage, conv.TargetLanguage)
	return conv, nil
}

func (s *Session) DeleteConversation(ctx context.Context, id string) error {
	if !s.store.DeleteConversation(ctx, strings.TrimSpace(id)) {
		return newError(ErrorNotFound, "conversation_not_found", nil)
	}
	return nil
}

func (s *Session) ClearHistory(ctx context.Context) {
	s.store.ClearAllConversations(ctx)
}

// Replay speaks a stored message again. The current conversation is searched
// first, then the rest of the history.
func (s *Session) Replay(ctx context.Context, messageID string) (domain.Message, error) {
	messageID = strings.TrimSpace(messageID)
	msg, ok := s.findMessage(messageID)
	if !ok {
		return domain.Message{}, newError(ErrorNotFound, "message_not_found", nil)
	}
	if s.player == nil {
		return domain.Message{}, newError(ErrorInternal, "playback_not_configured", nil)
	}
	s.player.Stop()
	if err := s.player.Speak(ctx, msg.Text, msg.Language); err != nil {
		return domain.Message{}, newError(ErrorUpstream, "playback_error", err)
	}
	return msg, nil
}

func (s *Session) findMessage(id string) (domain.Message, bool) {
	if id == "" {
		return domain.Message{}, false
	}
	convs := s.store.Conversations()
	if cur, ok := s.store.Current(); ok {
		convs = append([]domain.Conversation{cur}, convs...)
	}
	for _, c := range convs {
		for _, m := range c.Messages {
			if m.ID == id {
				return m, true
			}
		}
	}
	return domain.Message{}, false
}

// Summarize asks the remote summarizer about the current conversation.
func (s *Session) Summarize(ctx context.Context) (domain.SummaryResult, error) {
	conv, ok := s.store.Current()
	if !ok {
		return domain.SummaryResult{}, newError(ErrorEmptyConversation, "no_current_conversation", summary.ErrEmptyConversation)
	}
	req, err := summary.BuildRequest(conv.Messages, conv.SourceLanguage, conv.TargetLanguage)
	if err != nil {
		return domain.SummaryResult{}, newError(ErrorEmptyConversation, "no_messages", err)
	}
	if s.summarizer == nil {
		return domain.SummaryResult{}, newError(ErrorSummaryUnavailable, "summarizer_not_configured", summary.ErrSummaryUnavailable)
	}
	res, err := s.summarizer.Summarize(ctx, req)
	if err != nil {
		s.logger.Warn("summary request failed", "conversation_id", conv.ID, "err", err)
		return domain.SummaryResult{}, newError(ErrorSummaryUnavailable, "summary_request_failed", err)
	}
	return res, nil
}

// Export renders a conversation as text. An empty id exports the current one.
func (s *Session) Export(id string) (string, error) {
	var (
		conv domain.Conversation
		ok   bool
	)
	if id = strings.TrimSpace(id); id == "" {
		conv, ok = s.store.Current()
	} else {
		conv, ok = s.store.Get(id)
	}
	if !ok {
		return "", newError(ErrorNotFound, "conversation_not_found", nil)
	}
	return history.Export(conv), nil
}

func (s *Session) Current() (domain.Conversation, bool) {
	return s.store.Current()
}

func (s *Session) Conversations() []domain.Conversation {
	return s.store.Conversations()
}

func (s *Session) Speaker() turn.Speaker {
	return s.machine.Current()
}

// Roles returns the language of the current speaker and the one their next
// utterance will be translated into.
func (s *Session) Roles() (spoken, other string) {
	return s.machine.Roles()
}

func (s *Session) Languages() (source, target string) {
	return s.machine.Languages()
}
