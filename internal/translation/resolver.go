package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"turn-translator/internal/domain"
)

const (
	defaultStageTimeout = 5 * time.Second

	// NoticeUnavailable is attached to passthrough results.
	NoticeUnavailable = "Translation service unavailable. Showing original text."
)

// Source tells which step of the cascade produced a Result.
type Source string

const (
	SourceEmpty       Source = "empty"
	SourceOffline     Source = "offline"
	SourceProvider    Source = "provider"
	SourcePassthrough Source = "passthrough"
)

// Provider is a remote translation service.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Stage is one cascade step. A zero Timeout uses the resolver default.
type Stage struct {
	Provider Provider
	Timeout  time.Duration
}

// Result is the outcome of Resolve. Text is always usable.
type Result struct {
	Text          string
	Source        Source
	Provider      string
	ProviderIndex int
	Notice        string
	Failures      []*ProviderError
}

// UsedFallback reports whether the original text was returned because every
// provider failed.
func (r Result) UsedFallback() bool {
	return r.Source == SourcePassthrough && r.Notice != ""
}

// Resolver runs the offline -> providers -> passthrough cascade.
type Resolver struct {
	dict           *Dictionary
	stages         []Stage
	defaultTimeout time.Duration
	logger         *slog.Logger
}

type Option func(*Resolver)

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithDefaultTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.defaultTimeout = d
		}
	}
}

// NewResolver builds a resolver. A nil dictionary disables offline lookup.
func NewResolver(dict *Dictionary, stages []Stage, opts ...Option) (*Resolver, error) {
	for i, s := range stages {
		if s.Provider == nil {
			return nil, fmt.Errorf("translation: stage %d provider must not be nil", i)
		}
	}
	r := &Resolver{
		dict:           dict,
		stages:         append([]Stage(nil), stages...),
		defaultTimeout: defaultStageTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve translates text from source to target. It never fails: when nothing
// in the cascade succeeds the original text comes back with a notice.
func (r *Resolver) Resolve(ctx context.Context, text, source, target string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{Source: SourceEmpty, ProviderIndex: -1}
	}
	source = domain.NormalizeLanguage(source)
	target = domain.NormalizeLanguage(target)

	if source == target {
		return Result{Text: trimmed, Source: SourcePassthrough, ProviderIndex: -1}
	}

	if v, ok := r.dict.Lookup(trimmed, source, target); ok {
		return Result{Text: v, Source: SourceOffline, ProviderIndex: -1}
	}

	if !domain.IsSupported(source) || !domain.IsSupported(target) {
		r.logger.Warn("unsupported language pair, passing text through", "source", source, "target", target)
		return Result{Text: trimmed, Source: SourcePassthrough, ProviderIndex: -1, Notice: NoticeUnavailable}
	}

	var failures []*ProviderError
	for i, stage := range r.stages {
		out, perr := r.attempt(ctx, stage, trimmed, source, target)
		if perr == nil {
			return Result{
				Text:          out,
				Source:        SourceProvider,
				Provider:      stage.Provider.Name(),
				ProviderIndex: i,
				Failures:      failures,
			}
		}
		r.logger.Warn("translation provider failed", "provider", perr.Provider, "kind", string(perr.Kind), "err", perr.Err)
		failures = append(failures, perr)
	}

	r.logger.Warn("all translation providers exhausted", "attempts", len(failures), "source", source, "target", target)
	return Result{
		Text:          trimmed,
		Source:        SourcePassthrough,
		ProviderIndex: -1,
		Notice:        NoticeUnavailable,
		Failures:      failures,
	}
}

type outcome struct {
	text string
	err  error
}

// attempt races one provider call against its timeout. The call runs in its
// own goroutine and reports on a buffered channel, so a call abandoned at the
// deadline finishes in the background and its result is dropped.
func (r *Resolver) attempt(ctx context.Context, stage Stage, text, source, target string) (string, *ProviderError) {
	name := stage.Provider.Name()
	timeout := stage.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		out, err := stage.Provider.Translate(callCtx, text, source, target)
		done <- outcome{text: out, err: err}
	}()

	select {
	case <-callCtx.Done():
		err := callCtx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &ProviderError{Provider: name, Kind: FailureTimeout, Err: err}
		}
		return "", &ProviderError{Provider: name, Kind: FailureNetwork, Err: err}
	case o := <-done:
		if o.err != nil {
			return "", classify(name, o.err)
		}
		// Empty translations are treated as schema failures for every provider.
		if strings.TrimSpace(o.text) == "" {
			return "", &ProviderError{Provider: name, Kind: FailureSchema, Err: fmt.Errorf("%w: empty translation", ErrSchemaMismatch)}
		}
		return o.text, nil
	}
}
