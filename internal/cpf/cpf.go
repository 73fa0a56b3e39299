// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cpf builds and parses CPF (Commentary Plain Format) documents.
//
// A CPF file is UTF-8 text: a --- delimited header of key: value lines
// (type, title, author, source, extracted_at), an optional
// "# extraction_engine:" comment, then one [P000001]-tagged paragraph
// per block. Paragraph indices are 1-based.
package cpf

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/commentary-engine/pkg/types"
)

// Ext is the conventional CPF file extension.
const Ext = ".cpf.txt"

// Meta is the CPF header block. Type is required; empty optional fields
// are omitted when building.
type Meta struct {
	Type        types.DocType
	Title       string
	Author      string
	Source      string
	ExtractedAt string
}

// Document is a parsed CPF file.
type Document struct {
	Meta Meta

	// Engine is the "# extraction_engine:" note, empty if absent.
	Engine string

	Paragraphs []types.Paragraph
}

// reParaTag matches a paragraph opening line: [P000123] text.
var reParaTag = regexp.MustCompile(`^\[P(\d{6})\]\s*(.*)$`)

// NowStamp returns the local time in the format written to extracted_at.
func NowStamp() string {
	return time.Now().Truncate(time.Second).Format(time.RFC3339)
}

// Build renders a CPF document to text. Paragraphs are tagged in order
// starting at [P000001].
func Build(meta Meta, paragraphs []string, engineNote string) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "type: %s\n", strings.TrimSpace(string(meta.Type)))
	if meta.Title != "" {
		fmt.Fprintf(&b, "title: %s\n", strings.TrimSpace(meta.Title))
	}
	if meta.Author != "" {
		fmt.Fprintf(&b, "author: %s\n", strings.TrimSpace(meta.Author))
	}
	if meta.Source != "" {
		fmt.Fprintf(&b, "source: %s\n", strings.TrimSpace(meta.Source))
	}
	stamp := meta.ExtractedAt
	if stamp == "" {
		stamp = NowStamp()
	}
	fmt.Fprintf(&b, "extracted_at: %s\n", stamp)
	b.WriteString("---\n\n")
	if engineNote != "" {
		fmt.Fprintf(&b, "# extraction_engine: %s\n\n", engineNote)
	}
	for i, p := range paragraphs {
		fmt.Fprintf(&b, "[P%06d] %s\n", i+1, p)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Parse reads a CPF document. Header keys it does not know are kept in
// no field but do not fail the parse; paragraph continuation lines are
// joined with single spaces.
func Parse(text string) (*Document, error) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil, fmt.Errorf("missing opening --- header")
	}

	meta := map[string]string{}
	i := 1
	closed := false
	for ; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "---" {
			i++
			closed = true
			break
		}
		if k, v, ok := strings.Cut(line, ":"); ok {
			meta[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	if !closed {
		return nil, fmt.Errorf("missing closing --- header")
	}

	doc := &Document{
		Meta: Meta{
			Type:        types.DocType(meta["type"]),
			Title:       meta["title"],
			Author:      meta["author"],
			Source:      meta["source"],
			ExtractedAt: meta["extracted_at"],
		},
	}
	if doc.Meta.Type == "" {
		doc.Meta.Type = types.DocArticle
	}

	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "# extraction_engine:") {
		_, v, _ := strings.Cut(lines[i], ":")
		doc.Engine = strings.TrimSpace(v)
		i++
	}

	var (
		idx     = -1
		current []string
	)
	flush := func() {
		if idx < 0 {
			return
		}
		var parts []string
		for _, s := range current {
			if t := strings.TrimSpace(s); t != "" {
				parts = append(parts, t)
			}
		}
		if joined := strings.Join(parts, " "); joined != "" {
			doc.Paragraphs = append(doc.Paragraphs, types.Paragraph{Index: idx, Text: joined})
		}
		idx = -1
		current = nil
	}

	for ; i < len(lines); i++ {
		if m := reParaTag.FindStringSubmatch(lines[i]); m != nil {
			flush()
			idx, _ = strconv.Atoi(m[1])
			current = []string{m[2]}
		} else if idx >= 0 {
			current = append(current, lines[i])
		}
	}
	flush()

	return doc, nil
}

// NormalizeLinebreaks collapses CR/LF variants, joins single line breaks
// into spaces, and squeezes blank-line runs down to paragraph breaks.
func NormalizeLinebreaks(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = reTrailWS.ReplaceAllString(text, "\n")
	text = reLeadWS.ReplaceAllString(text, "\n")
	text = reBlankRun.ReplaceAllString(text, "\n\n")
	text = reSingleNL.ReplaceAllString(text, "$1 $2")
	text = reSpaceRun.ReplaceAllString(text, " ")
	text = reParaBreak.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

var (
	reTrailWS   = regexp.MustCompile(`[ \t]+\n`)
	reLeadWS    = regexp.MustCompile(`\n[ \t]+`)
	reBlankRun  = regexp.MustCompile(`\n{3,}`)
	reSingleNL  = regexp.MustCompile(`([^\n])\n([^\n])`)
	reSpaceRun  = regexp.MustCompile(`[ \t]{2,}`)
	reParaBreak = regexp.MustCompile(` *\n\n *`)
	reAnyWS     = regexp.MustCompile(`\s+`)
)

// SplitParagraphs splits normalized text on blank lines and drops
// fragments shorter than minChars.
func SplitParagraphs(text string, minChars int) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(reAnyWS.ReplaceAllString(p, " "))
		if len(p) >= minChars {
			out = append(out, p)
		}
	}
	return out
}

// TitleFromURL derives a fallback title from the URL path's final
// segment, with the extension stripped.
func TitleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "document"
	}
	name := filepath.Base(u.Path)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" || stem == "." || stem == "/" {
		return "document"
	}
	return stem
}

var reFilenameIllegal = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename makes name safe for use as a file name on all
// supported platforms. Empty results become "document".
func SanitizeFilename(name string, maxLen int) string {
	name = strings.TrimSpace(reAnyWS.ReplaceAllString(name, " "))
	name = reFilenameIllegal.ReplaceAllString(name, "")
	name = strings.TrimRight(name, " .")
	if name == "" {
		return "document"
	}
	if maxLen > 0 && len(name) > maxLen {
		name = strings.TrimRight(name[:maxLen], " .")
	}
	if name == "" {
		return "document"
	}
	return name
}

// WriteFile writes data to path atomically: parent directories are
// created, content goes to a temp file first, then a rename.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".cpf-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
