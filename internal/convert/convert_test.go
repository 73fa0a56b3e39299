// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/commentary-engine/internal/cpf"
	"github.com/pdiddy/commentary-engine/internal/fetch"
	"github.com/pdiddy/commentary-engine/pkg/types"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Notes on Genesis</title></head>
<body>
<nav>Home | About | Contact</nav>
<main>
<h1>Notes on Genesis</h1>
<p>The opening chapters describe the creation of the world in a
structured seven day framework that the rest of the book builds on.</p>
<p>Later chapters turn to the patriarchal narratives, beginning with
the call of Abram in Genesis 12:1 and following his family south.</p>
<p>ok</p>
</main>
<footer>Copyright 2026</footer>
</body>
</html>`

type stubFetcher struct {
	html string
	err  error
}

func (s *stubFetcher) Fetch(_ context.Context, _ string) (string, string, error) {
	return s.html, "stub", s.err
}

func TestConvertPage(t *testing.T) {
	dir := t.TempDir()
	res, err := ConvertPage(context.Background(), "https://example.com/genesis-notes", Options{
		Config:  types.ConvertConfig{Engine: types.EngineDOM},
		DocType: types.DocArticle,
		OutDir:  dir,
		Fetcher: &stubFetcher{html: samplePage},
	})
	if err != nil {
		t.Fatalf("ConvertPage: %v", err)
	}

	if res.Title != "Notes on Genesis" {
		t.Errorf("title = %q, want %q", res.Title, "Notes on Genesis")
	}
	if res.EngineNote != "fetch=stub; extract=dom" {
		t.Errorf("engine note = %q", res.EngineNote)
	}
	if want := filepath.Join(dir, "Notes on Genesis"+cpf.Ext); res.OutPath != want {
		t.Errorf("out path = %q, want %q", res.OutPath, want)
	}

	data, err := os.ReadFile(res.OutPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	doc, err := cpf.Parse(string(data))
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	if doc.Meta.Type != types.DocArticle {
		t.Errorf("type = %q, want article", doc.Meta.Type)
	}
	if doc.Meta.Source != "https://example.com/genesis-notes" {
		t.Errorf("source = %q", doc.Meta.Source)
	}
	// Two body paragraphs; the heading and the "ok" fragment fall under
	// the minimum length.
	if len(doc.Paragraphs) != 2 {
		t.Fatalf("paragraphs = %d, want 2", len(doc.Paragraphs))
	}
	if !strings.Contains(doc.Paragraphs[1].Text, "Genesis 12:1") {
		t.Errorf("last paragraph = %q", doc.Paragraphs[1].Text)
	}
}

func TestConvertPageExplicitOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "custom.cpf.txt")
	res, err := ConvertPage(context.Background(), "https://example.com/x", Options{
		Config:  types.ConvertConfig{Engine: types.EngineDOM},
		DocType: types.DocBook,
		Title:   "Override Title",
		OutPath: out,
		Fetcher: &stubFetcher{html: samplePage},
	})
	if err != nil {
		t.Fatalf("ConvertPage: %v", err)
	}
	if res.OutPath != out {
		t.Errorf("out path = %q, want %q", res.OutPath, out)
	}
	if res.Title != "Override Title" {
		t.Errorf("title = %q", res.Title)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output file: %v", err)
	}
}

func TestConvertPageErrors(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		docType types.DocType
		fetcher fetch.Fetcher
		wantErr error
	}{
		{
			name:    "missing scheme",
			url:     "example.com/page",
			docType: types.DocArticle,
			fetcher: &stubFetcher{html: samplePage},
			wantErr: fetch.ErrMissingScheme,
		},
		{
			name:    "empty URL",
			url:     "",
			docType: types.DocArticle,
			fetcher: &stubFetcher{html: samplePage},
			wantErr: fetch.ErrMissingScheme,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertPage(context.Background(), tt.url, Options{
				Config:  types.ConvertConfig{Engine: types.EngineDOM},
				DocType: tt.docType,
				OutDir:  t.TempDir(),
				Fetcher: tt.fetcher,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := ConvertPage(context.Background(), "https://example.com", Options{
		Config:  types.ConvertConfig{Engine: types.EngineDOM},
		DocType: "memo",
		OutDir:  t.TempDir(),
		Fetcher: &stubFetcher{html: samplePage},
	}); err == nil {
		t.Error("invalid doc type accepted")
	}

	fetchErr := errors.New("connection refused")
	if _, err := ConvertPage(context.Background(), "https://example.com", Options{
		Config:  types.ConvertConfig{Engine: types.EngineDOM},
		DocType: types.DocArticle,
		OutDir:  t.TempDir(),
		Fetcher: &stubFetcher{err: fetchErr},
	}); !errors.Is(err, fetchErr) {
		t.Errorf("err = %v, want fetch error", err)
	}
}

func TestExtractDOMStripsNoise(t *testing.T) {
	ext, err := extractDOM(samplePage)
	if err != nil {
		t.Fatalf("extractDOM: %v", err)
	}
	if ext.Title != "Notes on Genesis" {
		t.Errorf("title = %q", ext.Title)
	}
	for _, noise := range []string{"Home | About", "Copyright 2026"} {
		if strings.Contains(ext.Text, noise) {
			t.Errorf("noise %q survived extraction", noise)
		}
	}
	if !strings.Contains(ext.Text, "patriarchal narratives") {
		t.Errorf("body text missing: %q", ext.Text)
	}
}

func TestExtractAutoFallsBackToDOM(t *testing.T) {
	// Too little text for readability to score as an article.
	page := `<html><head><title>Stub</title></head><body><main><p>` +
		strings.Repeat("word ", 10) + `</p></main></body></html>`
	ext, note, err := extract(types.EngineAuto, "https://example.com/stub", page)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.TrimSpace(ext.Text) == "" {
		t.Fatal("empty extraction")
	}
	if note != "readability" && note != "dom" {
		t.Errorf("note = %q", note)
	}
}
