package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"turn-translator/internal/domain"
)

const defaultTimeout = 30 * time.Second

// HTTPStatusError captures non-2xx responses from the summarizer.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("summary: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// serverError is the error body returned by the summarizer handler.
type serverError struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// Client calls the remote summarizer endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewClient(url string, opts ...Option) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("summary: url must not be empty")
	}
	c := &Client{
		url:        url,
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Summarize posts req and interprets the answer. Every failure wraps
// ErrSummaryUnavailable.
func (c *Client) Summarize(ctx context.Context, req domain.SummaryRequest) (domain.SummaryResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("%w: marshal request: %v", ErrSummaryUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("%w: create request: %v", ErrSummaryUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("%w: %w", ErrSummaryUnavailable, err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("%w: read response body: %w", ErrSummaryUnavailable, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		statusErr := &HTTPStatusError{StatusCode: res.StatusCode, URL: c.url, Body: string(raw)}
		var se serverError
		if json.Unmarshal(raw, &se) == nil && se.Reason != "" {
			statusErr.Body = se.Reason
		}
		return domain.SummaryResult{}, fmt.Errorf("%w: %w", ErrSummaryUnavailable, statusErr)
	}

	return InterpretResponse(raw)
}
