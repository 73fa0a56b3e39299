// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves page HTML with a selectable strategy: plain
// HTTP, a headless browser, or auto (HTTP with browser fallback when the
// site blocks the request).
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/net/html/charset"

	"github.com/pdiddy/commentary-engine/internal/httputil"
	"github.com/pdiddy/commentary-engine/pkg/types"
)

// ErrMissingScheme indicates a URL without an explicit http/https
// scheme. The caller-facing message tells the user to add the prefix.
var ErrMissingScheme = errors.New("URL is missing its scheme: add the https:// prefix")

// ErrBlocked indicates the site refused the plain HTTP request
// (401/403/429) and the browser fallback was unavailable or also failed.
var ErrBlocked = errors.New("request blocked by site")

// DefaultUserAgent is a desktop browser identity. Several commentary
// sites return 403 to anything that looks like a script.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ValidateURL checks that rawURL parses and carries an http or https
// scheme. Bare host names ("www.example.com/page") fail with
// ErrMissingScheme.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		return nil
	case "":
		return fmt.Errorf("%q: %w", rawURL, ErrMissingScheme)
	default:
		return fmt.Errorf("unsupported URL scheme %q in %q", u.Scheme, rawURL)
	}
}

// Fetcher retrieves the HTML of a single page.
type Fetcher interface {
	// Fetch returns the page HTML decoded to UTF-8 and a short note
	// naming the mechanism used ("http" or "browser").
	Fetch(ctx context.Context, pageURL string) (html string, note string, err error)
}

// HTTPFetcher fetches pages with net/http, sending browser-like headers
// and decoding the body per the declared (or sniffed) charset.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher builds an HTTPFetcher from shared HTTP settings.
func NewHTTPFetcher(cfg types.HTTPConfig) *HTTPFetcher {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: cfg.Timeout},
		UserAgent: ua,
	}
}

// Get performs the request and returns the decoded body and status
// code. Callers that need the blocked/not-blocked distinction use the
// status; Fetch wraps this with error classification.
func (f *HTTPFetcher) Get(ctx context.Context, pageURL string) (string, int, error) {
	if err := ValidateURL(pageURL); err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,zh-CN;q=0.8")
	// Accept-Encoding is left to the transport so gzip is decompressed
	// transparently.

	resp, err := httputil.DoWithRetry(ctx, f.Client, req, 0)
	if err != nil {
		return "", 0, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("decoding %s: %w", pageURL, err)
	}
	return body, resp.StatusCode, nil
}

// Fetch implements Fetcher. Non-2xx statuses are errors; blocking
// statuses wrap ErrBlocked so the auto strategy can fall back.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, string, error) {
	body, status, err := f.Get(ctx, pageURL)
	if err != nil {
		return "", "", err
	}
	if blockedStatus(status) {
		return "", "", fmt.Errorf("HTTP %d for %s: %w", status, pageURL, ErrBlocked)
	}
	if status >= 400 {
		return "", "", fmt.Errorf("HTTP %d for %s", status, pageURL)
	}
	return body, "http", nil
}

// blockedStatus reports whether a status suggests bot blocking rather
// than a genuinely missing page.
func blockedStatus(status int) bool {
	return status == http.StatusUnauthorized ||
		status == http.StatusForbidden ||
		status == http.StatusTooManyRequests
}

// decodeBody converts the response body to UTF-8 using the Content-Type
// charset when declared, sniffing otherwise.
func decodeBody(resp *http.Response) (string, error) {
	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("selecting charset: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// AutoFetcher tries HTTP first and falls back to the browser when the
// site blocks the plain request.
type AutoFetcher struct {
	HTTP    *HTTPFetcher
	Browser Fetcher
}

// Fetch implements Fetcher.
func (f *AutoFetcher) Fetch(ctx context.Context, pageURL string) (string, string, error) {
	html, note, err := f.HTTP.Fetch(ctx, pageURL)
	if err == nil {
		return html, note, nil
	}
	if !errors.Is(err, ErrBlocked) || f.Browser == nil {
		return "", "", err
	}

	html, note, berr := f.Browser.Fetch(ctx, pageURL)
	if berr != nil {
		return "", "", fmt.Errorf("%v; browser fallback failed (%v): rerun with --fetch browser once Chromium is available: %w",
			err, berr, ErrBlocked)
	}
	return html, note, nil
}

// New builds a Fetcher for the given strategy.
func New(strategy types.FetchStrategy, cfg types.HTTPConfig) (Fetcher, error) {
	if strategy == "" {
		strategy = types.FetchAuto
	}
	if !types.ValidFetchStrategy(strategy) {
		return nil, fmt.Errorf("fetch strategy must be one of: %s, %s, %s",
			types.FetchAuto, types.FetchHTTP, types.FetchBrowser)
	}

	httpFetcher := NewHTTPFetcher(cfg)
	switch strategy {
	case types.FetchHTTP:
		return httpFetcher, nil
	case types.FetchBrowser:
		return NewBrowserFetcher(cfg), nil
	default:
		return &AutoFetcher{HTTP: httpFetcher, Browser: NewBrowserFetcher(cfg)}, nil
	}
}
