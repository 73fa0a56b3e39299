// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pageLinks is what one scanned index page yields: article links to
// convert and PDF links to record.
type pageLinks struct {
	Articles []string
	PDFs     []string
}

// isPDFURL reports whether u points at a PDF, by extension or by a
// .pdf?query / .pdf#fragment form.
func isPDFURL(u string) bool {
	l := strings.ToLower(u)
	return strings.HasSuffix(l, ".pdf") || strings.Contains(l, ".pdf?") || strings.Contains(l, ".pdf#")
}

func sameHost(a, b *url.URL) bool {
	return strings.EqualFold(a.Host, b.Host)
}

// resolveLink joins href against the page URL and strips any fragment.
// Only http(s) results are kept.
func resolveLink(base *url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil, false
	}
	u, err := base.Parse(href)
	if err != nil {
		return nil, false
	}
	u.Fragment = ""
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}

// scanLinks collects the links on one index page. Anchor hrefs split
// into article and PDF links; iframe/embed/object sources count only
// when they carry a PDF. Links back to the index page's own path are
// pagination or self links and are dropped from the article set.
func scanLinks(pageURL, html string, sameDomainOnly bool) (pageLinks, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return pageLinks{}, fmt.Errorf("parsing page URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return pageLinks{}, fmt.Errorf("parsing index page HTML: %w", err)
	}

	articles := map[string]bool{}
	pdfs := map[string]bool{}

	keep := func(u *url.URL) bool {
		return !sameDomainOnly || sameHost(base, u)
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, ok := resolveLink(base, href)
		if !ok || !keep(u) {
			return
		}
		full := u.String()
		if isPDFURL(full) {
			pdfs[full] = true
			return
		}
		if u.Path == base.Path && sameHost(base, u) {
			return
		}
		articles[full] = true
	})

	for _, sel := range []struct{ tag, attr string }{
		{"iframe", "src"}, {"embed", "src"}, {"object", "data"},
	} {
		doc.Find(sel.tag + "[" + sel.attr + "]").Each(func(_ int, s *goquery.Selection) {
			src, _ := s.Attr(sel.attr)
			u, ok := resolveLink(base, src)
			if !ok || !keep(u) || !isPDFURL(u.String()) {
				return
			}
			pdfs[u.String()] = true
		})
	}

	return pageLinks{Articles: sortedKeys(articles), PDFs: sortedKeys(pdfs)}, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// lastPageIndex finds the highest ?page=N among links on the index
// page's own path. Returns -1 when the page carries no pagination.
func lastPageIndex(pageURL, html string) int {
	base, err := url.Parse(pageURL)
	if err != nil {
		return -1
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return -1
	}

	max := -1
	doc.Find(`a[href*="page="]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, ok := resolveLink(base, href)
		if !ok || !sameHost(base, u) || u.Path != base.Path {
			return
		}
		if idx, err := strconv.Atoi(u.Query().Get("page")); err == nil && idx > max {
			max = idx
		}
	})
	return max
}

// withPageParam returns pageURL with its page query parameter set to n.
func withPageParam(pageURL string, n int) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	return u.String()
}
