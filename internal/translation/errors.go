package translation

import (
	"context"
	"errors"
	"fmt"
)

// ErrSchemaMismatch is returned by providers whose response does not carry a
// translated text in the expected shape.
var ErrSchemaMismatch = errors.New("translation: response schema mismatch")

// FailureKind classifies why a single provider attempt failed.
type FailureKind string

const (
	FailureTimeout FailureKind = "timeout"
	FailureNetwork FailureKind = "network"
	FailureStatus  FailureKind = "status"
	FailureSchema  FailureKind = "schema"
)

// ProviderError records one failed cascade attempt. It is never returned to
// callers of Resolve; it only shows up in Result.Failures and in logs.
type ProviderError struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("translation: provider %s failed (%s)", e.Provider, e.Kind)
	}
	return fmt.Sprintf("translation: provider %s failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// classify maps a raw provider error onto the failure taxonomy.
func classify(provider string, err error) *ProviderError {
	kind := FailureNetwork
	var statusErr httpStatusCoder
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = FailureTimeout
	case errors.Is(err, ErrSchemaMismatch):
		kind = FailureSchema
	case errors.As(err, &statusErr):
		kind = FailureStatus
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}
