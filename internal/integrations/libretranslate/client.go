package libretranslate

import (
	"bytes"
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

// DefaultServers are the public instances tried in order when none are configured.
var DefaultServers = []string{
	"https://libretranslate.de/translate",
	"https://libretranslate.pussthecat.org/translate",
	"https://translate.argosopentech.com/translate",
	"https://translate.mentality.rip/translate",
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText *string `json:"translatedText"`
	Error          string  `json:"error"`
}

// HTTPStatusError captures non-2xx upstream responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("libretranslate: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is bound to a single LibreTranslate server.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient accepts either a server root or the full /translate endpoint.
func NewClient(server string, opts ...Option) (*Client, error) {
	endpoint, err := translateURL(server)
	if err != nil {
		return nil, err
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c, nil
}

func translateURL(server string) (string, error) {
	server = strings.TrimRight(strings.TrimSpace(server), "/")
	if server == "" {
		return "", errors.New("libretranslate: server must not be empty")
	}
	u, err := url.Parse(server)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("libretranslate: invalid server url %q", server)
	}
	if strings.HasSuffix(u.Path, "/translate") {
		return server, nil
	}
	return server + "/translate", nil
}

// Name identifies the provider by host so each server logs separately.
func (c *Client) Name() string {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "libretranslate"
	}
	return "libretranslate:" + u.Host
}

func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	body, err := json.Marshal(translateRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("libretranslate: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("libretranslate: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("libretranslate: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", &HTTPStatusError{StatusCode: res.StatusCode, URL: c.endpoint, Body: string(buf)}
	}

	var payload translateResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&payload); err != nil {
		return "", fmt.Errorf("libretranslate: %w: decode response: %v", translation.ErrSchemaMismatch, err)
	}
	if payload.TranslatedText == nil {
		return "", fmt.Errorf("libretranslate: %w: translatedText missing", translation.ErrSchemaMismatch)
	}
	return *payload.TranslatedText, nil
}
