// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/commentary-engine/internal/bible"
	"github.com/pdiddy/commentary-engine/internal/cpf"
	"github.com/pdiddy/commentary-engine/internal/store"
	"github.com/pdiddy/commentary-engine/pkg/types"
)

type mockBackend struct {
	calls     int
	failUntil int
	resp      Response
	err       error
}

func (m *mockBackend) ExtractCommentary(_ context.Context, req Request) (Response, error) {
	m.calls++
	if m.calls <= m.failUntil {
		return Response{}, fmt.Errorf("transient failure %d", m.calls)
	}
	if m.err != nil {
		return Response{}, m.err
	}
	resp := m.resp
	resp.VerseRef = req.VerseRef
	resp.Raw = `{"has_commentary":true}`
	return resp, nil
}

func setupCorpus(t *testing.T) (*store.Store, *bible.Store) {
	t.Helper()

	s, err := store.Open(types.CorpusConfig{DBPath: filepath.Join(t.TempDir(), "commentary.db")})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	dir := t.TempDir()
	content := cpf.Build(cpf.Meta{
		Type: types.DocArticle, Title: "Notes on John", Author: "G. Vos",
		Source: "https://example.com/john", ExtractedAt: "2026-08-01T10:00:00Z",
	}, []string{
		"John 3:16 stands at the center of the gospel's witness to divine love.",
		"The author returns to the same theme throughout the farewell discourse.",
	}, "fetch=http; extract=readability")
	if err := os.WriteFile(filepath.Join(dir, "john"+cpf.Ext), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := s.ImportDir(context.Background(), dir, "", &buf); err != nil {
		t.Fatalf("ImportDir: %v", err)
	}
	if _, err := s.ExtractMentions(context.Background(), store.MentionOptions{}, &buf); err != nil {
		t.Fatalf("ExtractMentions: %v", err)
	}

	b, err := bible.Open(filepath.Join(t.TempDir(), "bible.db"))
	if err != nil {
		t.Fatalf("bible.Open: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	usfx := `<usfx><book id="JHN"><c id="3"/><v id="16"/>For God so loved the world.<ve/></book></usfx>`
	if _, err := b.ImportUSFX(context.Background(), strings.NewReader(usfx), bible.USFXOptions{
		Version: bible.Version{Version: "KJV", Name: "King James Version"},
	}, &buf); err != nil {
		t.Fatalf("ImportUSFX: %v", err)
	}

	return s, b
}

func TestExtractAll(t *testing.T) {
	s, b := setupCorpus(t)

	backend := &mockBackend{resp: Response{
		HasCommentary: true,
		SummaryEN:     "The verse is treated as the heart of the gospel.",
		BulletsEN:     []string{"Divine love grounds the gift of life."},
	}}

	var buf bytes.Buffer
	summary, err := ExtractAll(context.Background(), backend, s, b,
		types.AIConfig{Model: "claude-sonnet-4-5", PromptVersion: "v1"}, Options{}, &buf)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if summary.Extracted != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, output:\n%s", summary, buf.String())
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}

	// Resume skips the stored verse.
	summary, err = ExtractAll(context.Background(), backend, s, b,
		types.AIConfig{Model: "claude-sonnet-4-5", PromptVersion: "v1"}, Options{Resume: true}, &buf)
	if err != nil {
		t.Fatalf("ExtractAll resume: %v", err)
	}
	if summary.SkippedDone != 1 || summary.Extracted != 0 {
		t.Errorf("resume summary = %+v", summary)
	}
	if backend.calls != 1 {
		t.Errorf("backend called on resume: %d", backend.calls)
	}
}

func TestExtractAllRecordsFailure(t *testing.T) {
	s, b := setupCorpus(t)

	old := backoffBase
	backoffBase = time.Millisecond
	defer func() { backoffBase = old }()

	backend := &mockBackend{err: errors.New("model refused")}
	var buf bytes.Buffer
	summary, err := ExtractAll(context.Background(), backend, s, b,
		types.AIConfig{Model: "claude-sonnet-4-5", MaxRetries: 1}, Options{}, &buf)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}

	// The error slot is occupied, so resume does not retry.
	summary, err = ExtractAll(context.Background(), backend, s, b,
		types.AIConfig{Model: "claude-sonnet-4-5", MaxRetries: 1}, Options{Resume: true}, &buf)
	if err != nil {
		t.Fatalf("ExtractAll resume: %v", err)
	}
	if summary.SkippedDone != 1 {
		t.Errorf("resume summary = %+v", summary)
	}
}

func TestCallWithRetry(t *testing.T) {
	old := backoffBase
	backoffBase = time.Millisecond
	defer func() { backoffBase = old }()

	backend := &mockBackend{failUntil: 2, resp: Response{HasCommentary: true}}
	resp, err := callWithRetry(context.Background(), backend, Request{VerseRef: "John 3:16"}, 3)
	if err != nil {
		t.Fatalf("callWithRetry: %v", err)
	}
	if !resp.HasCommentary {
		t.Error("response lost through retries")
	}
	if backend.calls != 3 {
		t.Errorf("calls = %d, want 3", backend.calls)
	}
}

func TestValidCitations(t *testing.T) {
	evidence := []store.Evidence{{ParaID: 7}, {ParaID: 9}}
	citations := []types.ParagraphCitation{
		{ParaID: 7, Reason: "direct exposition"},
		{ParaID: 42, Reason: "invented by the model"},
	}
	got := validCitations(citations, evidence)
	if len(got) != 1 || got[0].ParaID != 7 {
		t.Errorf("validCitations = %+v", got)
	}
}

func TestClaudeBackend(t *testing.T) {
	reply := Response{
		VerseRef:      "John 3:16",
		HasCommentary: true,
		SummaryEN:     "Summary.",
		Citations:     []types.ParagraphCitation{{ParaID: 7, Reason: "direct"}},
	}
	replyJSON, _ := json.Marshal(reply)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		var req claudeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "TARGET VERSE: John 3:16") {
			t.Errorf("prompt missing verse: %+v", req.Messages)
		}
		if !strings.Contains(req.Messages[0].Content, "PARA_ID 7") {
			t.Errorf("prompt missing evidence tag")
		}
		json.NewEncoder(w).Encode(claudeResponse{Content: []claudeContent{
			{Type: "text", Text: string(replyJSON)},
		}})
	}))
	defer srv.Close()

	oldURL := claudeAPIURL
	claudeAPIURL = srv.URL
	defer func() { claudeAPIURL = oldURL }()

	backend := &ClaudeBackend{APIKey: "test-key", Model: "claude-sonnet-4-5"}
	resp, err := backend.ExtractCommentary(context.Background(), Request{
		VerseRef: "John 3:16",
		TextEN:   "For God so loved the world.",
		Evidence: []store.Evidence{{ParaID: 7, PIndex: 1, DocID: 1, DocTitle: "Notes on John", Text: "John 3:16 stands at the center."}},
	})
	if err != nil {
		t.Fatalf("ExtractCommentary: %v", err)
	}
	if !resp.HasCommentary || resp.SummaryEN != "Summary." {
		t.Errorf("response = %+v", resp)
	}
	if resp.Raw == "" {
		t.Error("raw JSON not preserved")
	}
}

func TestClaudeBackendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	oldURL := claudeAPIURL
	claudeAPIURL = srv.URL
	defer func() { claudeAPIURL = oldURL }()

	backend := &ClaudeBackend{APIKey: "test-key", Model: "claude-sonnet-4-5"}
	if _, err := backend.ExtractCommentary(context.Background(), Request{VerseRef: "John 3:16"}); err == nil {
		t.Error("API error not surfaced")
	}
}
