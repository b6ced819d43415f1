package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"turn-translator/internal/domain"
)

const defaultMaxTranscript = 20000

type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
}

// SummarizeService is the server side of the remote summarizer.
type SummarizeService struct {
	params        ParamGetter
	llm           LLMClient
	paramPrefix   string
	maxTranscript int

	modelMu sync.RWMutex
	model   string
}

// NewSummarizeService builds the service. When model is empty it is read
// from paramPrefix + "/config/openai_model" on first use.
func NewSummarizeService(p ParamGetter, llm LLMClient, paramPrefix, model string, maxTranscript int) (*SummarizeService, error) {
	if p == nil {
		return nil, errors.New("usecase: param getter must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("usecase: parameter prefix must not be empty")
	}
	if maxTranscript <= 0 {
		maxTranscript = defaultMaxTranscript
	}
	return &SummarizeService{
		params:        p,
		llm:           llm,
		paramPrefix:   paramPrefix,
		maxTranscript: maxTranscript,
		model:         strings.TrimSpace(model),
	}, nil
}

func (s *SummarizeService) Summarize(ctx context.Context, req domain.SummaryRequest) (domain.SummaryResult, error) {
	transcript := strings.TrimSpace(req.Messages)
	if transcript == "" {
		return domain.SummaryResult{}, newError(ErrorInvalidInput, "empty_messages", nil)
	}
	if len(transcript) > s.maxTranscript {
		return domain.SummaryResult{}, newError(ErrorInvalidInput, "transcript_too_long", nil)
	}
	source := domain.NormalizeLanguage(req.SourceLanguage)
	target := domain.NormalizeLanguage(req.TargetLanguage)
	if source == "" || target == "" {
		return domain.SummaryResult{}, newError(ErrorInvalidInput, "missing_language", nil)
	}

	model, err := s.ensureModel(ctx)
	if err != nil {
		return domain.SummaryResult{}, newError(ErrorInternal, "ssm_load_error", err)
	}

	raw, err := s.llm.Chat(ctx, model, buildSummaryMessages(source, target, transcript))
	if err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == 429 {
			return domain.SummaryResult{}, newError(ErrorRateLimited, "openai_rate_limited", err)
		}
		return domain.SummaryResult{}, newError(ErrorUpstream, "openai_error", err)
	}
	if strings.TrimSpace(raw) == "" {
		return domain.SummaryResult{}, newError(ErrorUpstream, "openai_empty_response", nil)
	}

	answer := parseSummaryAnswer(raw)
	return domain.SummaryResult{
		Summary:   answer.Summary,
		KeyPoints: answer.KeyPoints,
		Errors:    answer.Errors,
		Statistics: domain.SummaryStatistics{
			TotalMessages: req.TotalMessages,
			TotalWords:    req.TotalWords,
			Duration:      req.Duration,
			LanguagesUsed: []string{source, target},
		},
	}, nil
}

func (s *SummarizeService) ensureModel(ctx context.Context) (string, error) {
	s.modelMu.RLock()
	model := s.model
	s.modelMu.RUnlock()
	if model != "" {
		return model, nil
	}

	s.modelMu.Lock()
	defer s.modelMu.Unlock()
	if s.model != "" {
		return s.model, nil
	}
	v, err := s.params.GetParameter(ctx, s.paramPrefix+"/config/openai_model")
	if err != nil {
		return "", fmt.Errorf("usecase: load openai model: %w", err)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", errors.New("usecase: openai model parameter is empty")
	}
	s.model = v
	return v, nil
}
