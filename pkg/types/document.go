// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DocType categorizes a source document in the corpus.
type DocType string

const (
	DocBook    DocType = "book"
	DocArticle DocType = "article"
)

// ValidDocType reports whether t is an accepted document type.
func ValidDocType(t DocType) bool {
	return t == DocBook || t == DocArticle
}

// Document is a converted source (one CPF file) as stored in the corpus
// database. ID is zero until the record has been inserted.
type Document struct {
	ID          int64   `json:"id" yaml:"id"`
	DocType     DocType `json:"doc_type" yaml:"doc_type"`
	Title       string  `json:"title" yaml:"title"`
	Author      string  `json:"author" yaml:"author"`
	Source      string  `json:"source" yaml:"source"`
	ExtractedAt string  `json:"extracted_at" yaml:"extracted_at"`

	// Engine records how the document was produced
	// (e.g. "fetch=http; extract=readability").
	Engine string `json:"engine" yaml:"engine"`

	// Lang is the detected document language as an ISO 639-1 code
	// ("en", "zh"), or empty when detection was inconclusive.
	Lang string `json:"lang,omitempty" yaml:"lang,omitempty"`

	// LocalPath is where the CPF file lives on disk.
	LocalPath string `json:"local_path" yaml:"local_path"`

	// SHA256 is the hex digest of the CPF file, used for import dedupe.
	SHA256 string `json:"sha256" yaml:"sha256"`
}

// Paragraph is one body paragraph of a Document. Index is 1-based and
// matches the [P000001] tag in the CPF file.
type Paragraph struct {
	ID    int64  `json:"id" yaml:"id"`
	DocID int64  `json:"doc_id" yaml:"doc_id"`
	Index int    `json:"p_index" yaml:"p_index"`
	Text  string `json:"text" yaml:"text"`
}
