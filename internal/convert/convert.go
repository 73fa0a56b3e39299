// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns a webpage into a CPF document: fetch the HTML,
// extract the main content, normalize it into paragraphs, and write the
// tagged plain-text file.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/commentary-engine/internal/cpf"
	"github.com/pdiddy/commentary-engine/internal/fetch"
	"github.com/pdiddy/commentary-engine/pkg/types"
)

const maxFilenameLen = 160

// Options controls a single conversion.
type Options struct {
	Config  types.ConvertConfig
	DocType types.DocType

	// Title, Author and Source override what extraction finds. Source
	// defaults to the page URL.
	Title  string
	Author string
	Source string

	// OutPath is an explicit output file. When empty, the file name is
	// derived from the title and placed in OutDir.
	OutPath string
	OutDir  string

	// Fetcher overrides the strategy-selected fetcher. Used by tests
	// and by the crawler, which shares one fetcher across pages.
	Fetcher fetch.Fetcher
}

// Result reports what one conversion produced.
type Result struct {
	OutPath    string
	Title      string
	Paragraphs int
	EngineNote string
}

// ConvertPage fetches url, extracts its content, and writes a CPF file.
func ConvertPage(ctx context.Context, pageURL string, opts Options) (*Result, error) {
	if err := fetch.ValidateURL(pageURL); err != nil {
		return nil, err
	}
	if !types.ValidDocType(opts.DocType) {
		return nil, fmt.Errorf("invalid document type %q: use book or article", opts.DocType)
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		var err error
		fetcher, err = fetch.New(opts.Config.Fetch, opts.Config.HTTPConfig)
		if err != nil {
			return nil, err
		}
	}

	html, fetchNote, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	ext, extractNote, err := extract(opts.Config.Engine, pageURL, html)
	if err != nil {
		return nil, err
	}

	minChars := opts.Config.MinParaChars
	if minChars <= 0 {
		minChars = types.DefaultMinParaChars
	}
	paragraphs := cpf.SplitParagraphs(cpf.NormalizeLinebreaks(ext.Text), minChars)
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("no paragraphs of at least %d characters extracted from %s", minChars, pageURL)
	}

	meta := cpf.Meta{
		Type:   opts.DocType,
		Title:  firstNonEmpty(opts.Title, ext.Title, cpf.TitleFromURL(pageURL)),
		Author: firstNonEmpty(opts.Author, ext.Author),
		Source: firstNonEmpty(opts.Source, pageURL),
	}
	engineNote := fmt.Sprintf("fetch=%s; extract=%s", fetchNote, extractNote)

	outPath := opts.OutPath
	if outPath == "" {
		name := cpf.SanitizeFilename(meta.Title, maxFilenameLen) + cpf.Ext
		outPath = filepath.Join(opts.OutDir, name)
	} else if !strings.HasSuffix(outPath, cpf.Ext) && filepath.Ext(outPath) == "" {
		outPath += cpf.Ext
	}

	content := cpf.Build(meta, paragraphs, engineNote)
	if err := cpf.WriteFile(outPath, []byte(content)); err != nil {
		return nil, err
	}

	return &Result{
		OutPath:    outPath,
		Title:      meta.Title,
		Paragraphs: len(paragraphs),
		EngineNote: engineNote,
	}, nil
}

// extract resolves the auto engine: readability first, DOM stripping
// when readability comes back empty.
func extract(engine types.ExtractEngine, pageURL, html string) (Extraction, string, error) {
	if engine == "" {
		engine = types.EngineAuto
	}
	if engine != types.EngineAuto {
		ext, err := runEngine(engine, pageURL, html)
		return ext, string(engine), err
	}

	ext, err := extractReadability(pageURL, html)
	if err == nil && strings.TrimSpace(ext.Text) != "" {
		return ext, string(types.EngineReadability), nil
	}

	domExt, domErr := extractDOM(html)
	if domErr != nil {
		if err != nil {
			return Extraction{}, "", fmt.Errorf("readability failed (%v); DOM fallback: %w", err, domErr)
		}
		return Extraction{}, "", domErr
	}
	if ext.Title != "" && domExt.Title == "" {
		domExt.Title = ext.Title
	}
	return domExt, string(types.EngineDOM), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
