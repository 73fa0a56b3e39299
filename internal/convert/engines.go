// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/pdiddy/commentary-engine/pkg/types"
)

// Extraction is the output of one extraction engine: optional metadata
// plus the main body text with blank-line paragraph breaks.
type Extraction struct {
	Title  string
	Author string
	Text   string
}

// extractReadability runs go-readability article extraction and flattens
// the content fragment to text.
func extractReadability(pageURL, html string) (Extraction, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Extraction{}, fmt.Errorf("parsing URL: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return Extraction{}, fmt.Errorf("readability extraction: %w", err)
	}

	text, err := fragmentText(article.Content)
	if err != nil {
		return Extraction{}, err
	}
	return Extraction{
		Title:  strings.TrimSpace(article.Title),
		Author: strings.TrimSpace(article.Byline),
		Text:   text,
	}, nil
}

// noiseSelectors are elements removed before DOM extraction. They carry
// navigation, chrome, or media rather than commentary text.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header", "aside",
	"iframe", "video", "audio", "svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// extractDOM strips noise elements and takes the text of the best
// content container, trying <main>, <article>, then <body>.
func extractDOM(html string) (Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Extraction{}, fmt.Errorf("parsing HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		if sel := doc.Find(tag); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		return Extraction{}, fmt.Errorf("no content container found in HTML")
	}

	var blocks []string
	content.Find("h1,h2,h3,h4,h5,h6,p,li,blockquote,pre").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Filter("p,li,blockquote").Length() > 0 {
			return
		}
		if t := collapseText(s.Text()); t != "" {
			blocks = append(blocks, t)
		}
	})
	if len(blocks) == 0 {
		if t := collapseText(content.Text()); t != "" {
			blocks = append(blocks, t)
		}
	}

	return Extraction{Title: title, Text: strings.Join(blocks, "\n\n")}, nil
}

// extractMarkdown runs readability for the content fragment, then
// converts it to Markdown so emphasis and list markers survive as
// inline text.
func extractMarkdown(pageURL, html string) (Extraction, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Extraction{}, fmt.Errorf("parsing URL: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return Extraction{}, fmt.Errorf("readability extraction: %w", err)
	}

	conv := md.NewConverter(u.Host, true, nil)
	markdown, err := conv.ConvertString(article.Content)
	if err != nil {
		return Extraction{}, fmt.Errorf("markdown conversion: %w", err)
	}

	return Extraction{
		Title:  strings.TrimSpace(article.Title),
		Author: strings.TrimSpace(article.Byline),
		Text:   markdown,
	}, nil
}

// fragmentText flattens an HTML fragment to text, one block element per
// paragraph, <br> runs becoming line breaks.
func fragmentText(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parsing content fragment: %w", err)
	}
	doc.Find("script,style,noscript").Remove()
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})

	var blocks []string
	doc.Find("h1,h2,h3,h4,h5,h6,p,li,blockquote,pre").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Filter("p,li,blockquote").Length() > 0 {
			return
		}
		if t := collapseText(s.Text()); t != "" {
			blocks = append(blocks, t)
		}
	})
	if len(blocks) == 0 {
		return collapseText(doc.Text()), nil
	}
	return strings.Join(blocks, "\n\n"), nil
}

// collapseText trims a block and squeezes internal whitespace runs.
func collapseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// runEngine dispatches to one named engine. EngineAuto is resolved by
// the caller.
func runEngine(engine types.ExtractEngine, pageURL, html string) (Extraction, error) {
	switch engine {
	case types.EngineReadability:
		return extractReadability(pageURL, html)
	case types.EngineDOM:
		return extractDOM(html)
	case types.EngineMarkdown:
		return extractMarkdown(pageURL, html)
	default:
		return Extraction{}, fmt.Errorf("unknown extraction engine %q", engine)
	}
}
