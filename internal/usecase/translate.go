package usecase

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"turn-translator/internal/domain"
	"turn-translator/internal/translation"
)

const defaultMaxTranslateText = 5000

// Resolver is satisfied by *translation.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, text, source, target string) translation.Result
}

type TranslateInput struct {
	Text           string
	SourceLanguage string
	TargetLanguage string
}

type TranslateOutput struct {
	TranslatedText string
	Source         translation.Source
	Provider       string
	Notice         string
}

// TranslateService exposes the cascade over the API.
type TranslateService struct {
	resolver Resolver
	maxText  int
}

func NewTranslateService(r Resolver, maxText int) (*TranslateService, error) {
	if r == nil {
		return nil, errors.New("usecase: resolver must not be nil")
	}
	if maxText <= 0 {
		maxText = defaultMaxTranslateText
	}
	return &TranslateService{resolver: r, maxText: maxText}, nil
}

func (s *TranslateService) Translate(ctx context.Context, in TranslateInput) (TranslateOutput, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return TranslateOutput{}, newError(ErrorInvalidInput, "empty_text", nil)
	}
	if utf8.RuneCountInString(text) > s.maxText {
		return TranslateOutput{}, newError(ErrorInvalidInput, "text_too_long", nil)
	}
	if domain.NormalizeLanguage(in.SourceLanguage) == "" || domain.NormalizeLanguage(in.TargetLanguage) == "" {
		return TranslateOutput{}, newError(ErrorInvalidInput, "missing_language", nil)
	}

	res := s.resolver.Resolve(ctx, text, in.SourceLanguage, in.TargetLanguage)
	return TranslateOutput{
		TranslatedText: res.Text,
		Source:         res.Source,
		Provider:       res.Provider,
		Notice:         res.Notice,
	}, nil
}
