// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cpf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/commentary-engine/pkg/types"
)

func TestBuildParseRoundTrip(t *testing.T) {
	meta := Meta{
		Type:        types.DocArticle,
		Title:       "Notes on Genesis",
		Author:      "G. Vos",
		Source:      "https://example.com/genesis",
		ExtractedAt: "2026-01-15T10:00:00Z",
	}
	text := Build(meta, []string{
		"In the beginning God created the heaven and the earth.",
		"The covenant with Abraham begins in Genesis 12:1.",
	}, "fetch=http; extract=readability")

	doc, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Meta != meta {
		t.Errorf("meta = %+v, want %+v", doc.Meta, meta)
	}
	if doc.Engine != "fetch=http; extract=readability" {
		t.Errorf("engine = %q", doc.Engine)
	}
	if len(doc.Paragraphs) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(doc.Paragraphs))
	}
	for i, p := range doc.Paragraphs {
		if p.Index != i+1 {
			t.Errorf("paragraph %d has index %d", i, p.Index)
		}
	}
	if !strings.Contains(doc.Paragraphs[1].Text, "Genesis 12:1") {
		t.Errorf("paragraph 2 = %q", doc.Paragraphs[1].Text)
	}
}

func TestBuildOmitsEmptyFields(t *testing.T) {
	text := Build(Meta{Type: types.DocBook}, []string{"Only one paragraph here."}, "")

	if strings.Contains(text, "title:") || strings.Contains(text, "author:") || strings.Contains(text, "source:") {
		t.Errorf("empty fields rendered:\n%s", text)
	}
	if strings.Contains(text, "# extraction_engine:") {
		t.Errorf("empty engine note rendered:\n%s", text)
	}
	// extracted_at is always stamped.
	if !strings.Contains(text, "extracted_at: ") {
		t.Errorf("missing extracted_at:\n%s", text)
	}
	if !strings.HasPrefix(text, "---\ntype: book\n") {
		t.Errorf("unexpected header:\n%s", text)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"no opening delimiter", "type: article\n---\n[P000001] text\n"},
		{"unclosed header", "---\ntype: article\n[P000001] text\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.text); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseContinuationLines(t *testing.T) {
	text := "---\ntype: article\n---\n\n" +
		"[P000001] First line of the paragraph\ncontinues on a second line.\n" +
		"[P000002] Another paragraph.\n"

	doc, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Paragraphs) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(doc.Paragraphs))
	}
	want := "First line of the paragraph continues on a second line."
	if doc.Paragraphs[0].Text != want {
		t.Errorf("paragraph 1 = %q, want %q", doc.Paragraphs[0].Text, want)
	}
}

func TestParseDefaultsToArticle(t *testing.T) {
	doc, err := Parse("---\ntitle: Untyped\n---\n\n[P000001] Some text.\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Meta.Type != types.DocArticle {
		t.Errorf("type = %q, want article", doc.Meta.Type)
	}
}

func TestNormalizeLinebreaks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"single breaks join into spaces",
			"one line\nbroken in two",
			"one line broken in two",
		},
		{
			"crlf normalized",
			"first\r\n\r\nsecond",
			"first\n\nsecond",
		},
		{
			"blank run squeezed",
			"first\n\n\n\n\nsecond",
			"first\n\nsecond",
		},
		{
			"surrounding space trimmed",
			"  padded  \n\n  text  ",
			"padded\n\ntext",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeLinebreaks(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitParagraphs(t *testing.T) {
	text := "This paragraph is long enough to keep.\n\nshort\n\nAnother keeper with plenty of characters."
	got := SplitParagraphs(text, 20)
	if len(got) != 2 {
		t.Fatalf("got %d paragraphs, want 2: %v", len(got), got)
	}
	if got[0] != "This paragraph is long enough to keep." {
		t.Errorf("first = %q", got[0])
	}
}

func TestTitleFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/articles/genesis-commentary.html", "genesis-commentary"},
		{"https://example.com/sermons/On%20Prayer.pdf", "On Prayer"},
		{"https://example.com/", "document"},
		{"", "document"},
	}
	for _, tt := range tests {
		if got := TitleFromURL(tt.url); got != tt.want {
			t.Errorf("TitleFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"illegal characters removed", `He said: "go"`, 0, "He said go"},
		{"whitespace collapsed", "a   lot\t of\nspace", 0, "a lot of space"},
		{"trailing dots trimmed", "chapter one. ", 0, "chapter one"},
		{"nothing usable", "///", 0, "document"},
		{"truncated", "abcdefgh", 4, "abcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.cpf.txt")

	if err := WriteFile(path, []byte("hello\n")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("content = %q", data)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}
