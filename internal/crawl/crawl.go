// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl batch-converts the article links found on an index
// page. It scans the page (optionally walking ?page=N pagination),
// converts each discovered article to CPF, and records any PDF links
// in a pdf-links.txt manifest for separate handling.
package crawl

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/commentary-engine/internal/convert"
	"github.com/pdiddy/commentary-engine/internal/cpf"
	"github.com/pdiddy/commentary-engine/internal/fetch"
	"github.com/pdiddy/commentary-engine/pkg/types"
)

const (
	defaultDelay    = time.Second
	defaultMaxPages = 50

	// PDFManifest is the file in the output directory listing PDF
	// links found during the crawl, one URL per line.
	PDFManifest = "pdf-links.txt"
)

// Options controls one crawl run.
type Options struct {
	Config  types.CrawlConfig
	DocType types.DocType

	// TitlePrefix is prepended to every converted document's title.
	TitlePrefix string

	// MaxPages caps pagination walking (default 50).
	MaxPages int

	// Fetcher overrides the strategy-selected fetcher.
	Fetcher fetch.Fetcher
}

// Summary reports what a crawl run did.
type Summary struct {
	PagesScanned int
	LinksFound   int
	Converted    int
	Failed       int
	PDFLinks     int
}

// HasFailures reports whether any conversion failed.
func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}

// Crawl scans indexURL for article links and converts each to a CPF
// file in the configured output directory, writing progress to w.
func Crawl(ctx context.Context, indexURL string, opts Options, w io.Writer) (*Summary, error) {
	if err := fetch.ValidateURL(indexURL); err != nil {
		return nil, err
	}
	if !types.ValidDocType(opts.DocType) {
		return nil, fmt.Errorf("invalid document type %q: use book or article", opts.DocType)
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		var err error
		fetcher, err = fetch.New(opts.Config.Convert.Fetch, opts.Config.Convert.HTTPConfig)
		if err != nil {
			return nil, err
		}
	}

	delay := opts.Config.Delay
	if delay <= 0 {
		delay = defaultDelay
	}
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	summary := &Summary{}
	seen := map[string]bool{}
	var articles, pdfs []string

	pages, firstHTML, err := indexPages(ctx, indexURL, opts, fetcher, limiter)
	if err != nil {
		return nil, err
	}

	for i, pageURL := range pages {
		html := ""
		if i == 0 {
			html = firstHTML
		} else {
			if err := limiter.Wait(ctx); err != nil {
				return summary, err
			}
			html, _, err = fetcher.Fetch(ctx, pageURL)
			if err != nil {
				fmt.Fprintf(w, "  page %s: %v\n", pageURL, err)
				continue
			}
		}
		summary.PagesScanned++

		links, err := scanLinks(pageURL, html, opts.Config.SameDomain)
		if err != nil {
			fmt.Fprintf(w, "  page %s: %v\n", pageURL, err)
			continue
		}
		for _, a := range links.Articles {
			if !seen[a] {
				seen[a] = true
				articles = append(articles, a)
			}
		}
		for _, p := range links.PDFs {
			if !seen[p] {
				seen[p] = true
				pdfs = append(pdfs, p)
			}
		}
	}

	summary.LinksFound = len(articles) + len(pdfs)
	summary.PDFLinks = len(pdfs)

	if len(pdfs) > 0 {
		manifest := filepath.Join(opts.Config.OutDir, PDFManifest)
		if err := cpf.WriteFile(manifest, []byte(strings.Join(pdfs, "\n")+"\n")); err != nil {
			return summary, fmt.Errorf("writing PDF manifest: %w", err)
		}
		fmt.Fprintf(w, "Recorded %d PDF link(s) in %s\n", len(pdfs), manifest)
	}

	if opts.Config.Limit > 0 && len(articles) > opts.Config.Limit {
		articles = articles[:opts.Config.Limit]
	}
	if len(articles) == 0 {
		fmt.Fprintln(w, "No article links found.")
		return summary, nil
	}

	fmt.Fprintf(w, "Converting %d article link(s)...\n", len(articles))
	for i, link := range articles {
		if err := limiter.Wait(ctx); err != nil {
			return summary, err
		}

		res, err := convert.ConvertPage(ctx, link, convert.Options{
			Config:  opts.Config.Convert,
			DocType: opts.DocType,
			Title:   prefixedTitle(opts.TitlePrefix, link),
			OutDir:  opts.Config.OutDir,
			Fetcher: fetcher,
		})
		if err != nil {
			summary.Failed++
			fmt.Fprintf(w, "  [%d/%d] FAILED %s: %v\n", i+1, len(articles), link, err)
			continue
		}
		summary.Converted++
		fmt.Fprintf(w, "  [%d/%d] %s (%d paragraphs) -> %s\n",
			i+1, len(articles), res.Title, res.Paragraphs, res.OutPath)
	}

	return summary, nil
}

// indexPages returns the index page URLs to scan, plus the first
// page's HTML so it is fetched only once. With AllPages set, the first
// page's pagination links determine the rest; the original index uses
// page=1 for its second page, so indices run 1..last.
func indexPages(ctx context.Context, indexURL string, opts Options, fetcher fetch.Fetcher, limiter *rate.Limiter) ([]string, string, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, "", err
	}
	html, _, err := fetcher.Fetch(ctx, indexURL)
	if err != nil {
		return nil, "", err
	}

	pages := []string{indexURL}
	if !opts.Config.AllPages {
		return pages, html, nil
	}

	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	last := lastPageIndex(indexURL, html)
	if last < 0 {
		return pages, html, nil
	}
	for n := 1; n <= last && len(pages) < maxPages; n++ {
		pages = append(pages, withPageParam(indexURL, n))
	}
	return pages, html, nil
}

// prefixedTitle gives crawled documents a stable placeholder title
// derived from the link, with the optional prefix applied. Extraction
// titles are not used here so batches sort predictably.
func prefixedTitle(prefix, link string) string {
	if prefix == "" {
		return ""
	}
	return strings.TrimSpace(prefix + cpf.TitleFromURL(link))
}
