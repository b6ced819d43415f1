package googletranslate

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"turn-translator/internal/translation"
)

const defaultMobileBaseURL = "https://translate.google.com"

// MobileClient scrapes the lightweight HTML translation page. It is a
// fallback for when the gtx endpoint is throttled.
type MobileClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func NewMobileClient(opts ...Option) *MobileClient {
	o := buildOptions(defaultMobileBaseURL, opts)
	return &MobileClient{baseURL: o.baseURL, httpClient: o.httpClient, userAgent: defaultUserAgent}
}

func (c *MobileClient) Name() string { return "google-mobile" }

func mobileURL(baseURL, text, source, target string) string {
	q := url.Values{}
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("q", text)
	return baseURL + "/m?" + q.Encode()
}

func (c *MobileClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	endpoint := mobileURL(c.baseURL, text, source, target)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("googletranslate: create mobile request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	raw, err := doRequest(c.httpClient, req, endpoint)
	if err != nil {
		return "", fmt.Errorf("googletranslate: mobile request failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("googletranslate: %w: parse html: %v", translation.ErrSchemaMismatch, err)
	}
	node := doc.Find("div.result-container").First()
	if node.Length() == 0 {
		return "", fmt.Errorf("googletranslate: %w: result container not found", translation.ErrSchemaMismatch)
	}
	return strings.TrimSpace(node.Text()), nil
}
