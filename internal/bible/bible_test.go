// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bible

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

const sampleUSFX = `<?xml version="1.0" encoding="utf-8"?>
<usfx xmlns="http://eBible.org/usfx.xsd">
 <book id="GEN">
  <h>Genesis</h>
  <c id="1"/>
  <p>
   <v id="1"/>In the beginning God created the heaven and the earth.<ve/>
   <v id="2"/>And the earth was without form, and void.
     <f>footnote text that must not appear</f>
     And darkness was upon the face of the deep.<ve/>
  </p>
  <c id="2"/>
  <p>
   <v id="1"/>Thus the heavens and the earth were finished.<ve/>
  </p>
 </book>
 <book id="FRT">
  <p>Front matter to be ignored.</p>
 </book>
 <book id="JHN">
  <c id="3"/>
  <p>
   <v id="16"/>For God so loved the world.<ve/>
  </p>
 </book>
</usfx>`

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "bible.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func importSample(t *testing.T, s *Store) USFXSummary {
	t.Helper()
	var buf bytes.Buffer
	summary, err := s.ImportUSFX(context.Background(), strings.NewReader(sampleUSFX), USFXOptions{
		Version: Version{Version: "KJV", Name: "King James Version"},
	}, &buf)
	if err != nil {
		t.Fatalf("ImportUSFX: %v", err)
	}
	return summary
}

func TestImportUSFX(t *testing.T) {
	s := openTestStore(t)
	summary := importSample(t, s)

	if summary.Books != 2 {
		t.Errorf("books = %d, want 2", summary.Books)
	}
	if summary.Stored != 4 {
		t.Errorf("stored = %d, want 4", summary.Stored)
	}

	text, ok, err := s.VerseText(context.Background(), "KJV", "Gen", 1, 2)
	if err != nil || !ok {
		t.Fatalf("VerseText: ok=%v err=%v", ok, err)
	}
	if strings.Contains(text, "footnote") {
		t.Errorf("footnote leaked into verse text: %q", text)
	}
	if !strings.Contains(text, "without form") || !strings.Contains(text, "face of the deep") {
		t.Errorf("verse text = %q", text)
	}

	if _, ok, _ := s.VerseText(context.Background(), "KJV", "Gen", 1, 3); ok {
		t.Error("nonexistent verse reported present")
	}
	if _, ok, _ := s.VerseText(context.Background(), "CUVS", "Gen", 1, 1); ok {
		t.Error("wrong version reported present")
	}

	text, ok, err = s.VerseText(context.Background(), "KJV", "John", 3, 16)
	if err != nil || !ok {
		t.Fatalf("John 3:16: ok=%v err=%v", ok, err)
	}
	if text != "For God so loved the world." {
		t.Errorf("John 3:16 = %q", text)
	}
}

func TestRangeText(t *testing.T) {
	s := openTestStore(t)
	importSample(t, s)

	got, err := s.RangeText(context.Background(), "KJV", "Gen", 1, 1, 2)
	if err != nil {
		t.Fatalf("RangeText: %v", err)
	}
	if !strings.HasPrefix(got, "In the beginning") || !strings.Contains(got, "without form") {
		t.Errorf("range text = %q", got)
	}

	// Single verse when end precedes start.
	got, err = s.RangeText(context.Background(), "KJV", "Gen", 2, 1, 0)
	if err != nil {
		t.Fatalf("RangeText: %v", err)
	}
	if got != "Thus the heavens and the earth were finished." {
		t.Errorf("range text = %q", got)
	}
}

func TestImportUSFXReset(t *testing.T) {
	s := openTestStore(t)
	importSample(t, s)

	// Re-import with reset keeps counts stable.
	var buf bytes.Buffer
	summary, err := s.ImportUSFX(context.Background(), strings.NewReader(sampleUSFX), USFXOptions{
		Version: Version{Version: "KJV", Name: "King James Version"},
		Reset:   true,
	}, &buf)
	if err != nil {
		t.Fatalf("ImportUSFX: %v", err)
	}
	if summary.Stored != 4 {
		t.Errorf("stored = %d, want 4", summary.Stored)
	}

	versions, err := s.Versions(context.Background())
	if err != nil {
		t.Fatalf("Versions: %v", err)
	}
	if len(versions) != 1 || versions[0].Version != "KJV" {
		t.Errorf("versions = %+v", versions)
	}
}
