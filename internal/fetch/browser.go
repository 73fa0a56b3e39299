// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/pdiddy/commentary-engine/pkg/types"
)

// BrowserFetcher renders pages in headless Chromium via go-rod. It is
// the strategy for JavaScript-rendered pages and for sites that block
// plain HTTP clients. Chromium is launched per fetch and closed when
// done; rod downloads a managed browser on first use if none is found.
type BrowserFetcher struct {
	UserAgent string
	Timeout   time.Duration
}

// NewBrowserFetcher builds a BrowserFetcher from shared HTTP settings.
func NewBrowserFetcher(cfg types.HTTPConfig) *BrowserFetcher {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &BrowserFetcher{UserAgent: ua, Timeout: timeout}
}

// Fetch implements Fetcher.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (string, string, error) {
	if err := ValidateURL(pageURL); err != nil {
		return "", "", err
	}

	wsURL, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return "", "", fmt.Errorf("launching headless browser: %w", err)
	}

	browser := rod.New().ControlURL(wsURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", "", fmt.Errorf("connecting to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", "", fmt.Errorf("opening page: %w", err)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      f.UserAgent,
		AcceptLanguage: "en-US",
	}); err != nil {
		return "", "", fmt.Errorf("setting user agent: %w", err)
	}

	page = page.Timeout(f.Timeout)
	if err := page.Navigate(pageURL); err != nil {
		return "", "", fmt.Errorf("navigating to %s: %w", pageURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", "", fmt.Errorf("waiting for %s to load: %w", pageURL, err)
	}
	// Give late XHR-driven pages a moment to settle; load-event-only
	// pages are already final and the wait errs on the safe side.
	page.WaitRequestIdle(2*time.Second, nil, nil, nil)()

	html, err := page.HTML()
	if err != nil {
		return "", "", fmt.Errorf("reading page HTML: %w", err)
	}
	return html, "browser", nil
}
