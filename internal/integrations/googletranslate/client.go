package googletranslate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"turn-translator/internal/translation"
)

const (
	defaultBaseURL   = "https://translate.googleapis.com"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// HTTPStatusError captures non-2xx upstream responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("googletranslate: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client talks to the public "gtx" endpoint, which answers with nested JSON
// arrays instead of an object.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	httpClient *http.Client
}

func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

func buildOptions(def string, opts []Option) clientOptions {
	o := clientOptions{baseURL: def, httpClient: &http.Client{Timeout: 15 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.baseURL == "" {
		o.baseURL = def
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	o.baseURL = strings.TrimRight(o.baseURL, "/")
	return o
}

func NewClient(opts ...Option) *Client {
	o := buildOptions(defaultBaseURL, opts)
	return &Client{baseURL: o.baseURL, httpClient: o.httpClient, userAgent: defaultUserAgent}
}

func (c *Client) Name() string { return "google-gtx" }

func singleURL(baseURL, text, source, target string) string {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)
	return baseURL + "/translate_a/single?" + q.Encode()
}

func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	endpoint := singleURL(c.baseURL, text, source, target)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("googletranslate: create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	raw, err := doRequest(c.httpClient, req, endpoint)
	if err != nil {
		return "", fmt.Errorf("googletranslate: request failed: %w", err)
	}
	out, err := parseSingleResponse(raw)
	if err != nil {
		return "", fmt.Errorf("googletranslate: %w", err)
	}
	return out, nil
}

// parseSingleResponse normalizes the gtx payload, e.g.
// [[["hello","olá",null,null,10]],null,"pt"], into the joined segment texts.
func parseSingleResponse(raw []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", translation.ErrSchemaMismatch, err)
	}
	if len(top) == 0 {
		return "", fmt.Errorf("%w: empty response", translation.ErrSchemaMismatch)
	}
	var segments [][]json.RawMessage
	if err := json.Unmarshal(top[0], &segments); err != nil {
		return "", fmt.Errorf("%w: decode segments: %v", translation.ErrSchemaMismatch, err)
	}
	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		b.WriteString(part)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: no translated segments", translation.ErrSchemaMismatch)
	}
	return b.String(), nil
}

func doRequest(httpClient *http.Client, req *http.Request, endpoint string) ([]byte, error) {
	res, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{StatusCode: res.StatusCode, URL: endpoint, Body: string(buf)}
	}
	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if len(buf) == 0 {
		return nil, errors.New("empty response body")
	}
	return buf, nil
}
