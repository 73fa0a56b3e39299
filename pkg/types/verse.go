// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// ParseStatus classifies how completely a scripture reference was parsed.
type ParseStatus string

const (
	// ParseOK is a fully resolved book + chapter + verse reference.
	ParseOK ParseStatus = "ok"
	// ParseChapterOnly is a book + chapter reference with no verse.
	ParseChapterOnly ParseStatus = "chapter_only"
	// ParseUnparsed is a match that looked like a reference but failed
	// validation (e.g. chapter out of range for the book).
	ParseUnparsed ParseStatus = "unparsed"
)

// VerseKey identifies a verse or contiguous verse range in OSIS form.
type VerseKey struct {
	Book       string `json:"book_osis" yaml:"book_osis"`
	Chapter    int    `json:"chapter" yaml:"chapter"`
	VerseStart int    `json:"verse_start" yaml:"verse_start"`
	VerseEnd   int    `json:"verse_end" yaml:"verse_end"`
}

// Ref renders the key in the conventional "Book C:V" or "Book C:V1-V2" form.
func (k VerseKey) Ref() string {
	if k.VerseEnd == 0 || k.VerseEnd == k.VerseStart {
		return fmt.Sprintf("%s %d:%d", k.Book, k.Chapter, k.VerseStart)
	}
	return fmt.Sprintf("%s %d:%d-%d", k.Book, k.Chapter, k.VerseStart, k.VerseEnd)
}

// VerseMention is one scripture reference found in a corpus paragraph.
type VerseMention struct {
	ID     int64 `json:"id" yaml:"id"`
	DocID  int64 `json:"doc_id" yaml:"doc_id"`
	PIndex int   `json:"p_index" yaml:"p_index"`
	ParaID int64 `json:"para_id" yaml:"para_id"`

	// RawMatch is the matched text exactly as it appears in the paragraph.
	RawMatch string `json:"raw_match" yaml:"raw_match"`

	Book        string      `json:"book_osis,omitempty" yaml:"book_osis,omitempty"`
	Chapter     int         `json:"chapter,omitempty" yaml:"chapter,omitempty"`
	VerseStart  int         `json:"verse_start,omitempty" yaml:"verse_start,omitempty"`
	VerseEnd    int         `json:"verse_end,omitempty" yaml:"verse_end,omitempty"`
	ParseStatus ParseStatus `json:"parse_status" yaml:"parse_status"`
}

// Key returns the verse range this mention resolves to. Only meaningful
// when ParseStatus is ParseOK.
func (m VerseMention) Key() VerseKey {
	end := m.VerseEnd
	if end == 0 {
		end = m.VerseStart
	}
	return VerseKey{Book: m.Book, Chapter: m.Chapter, VerseStart: m.VerseStart, VerseEnd: end}
}
