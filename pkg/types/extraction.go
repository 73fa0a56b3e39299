// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExtractionStatus records the outcome of one AI extraction attempt.
type ExtractionStatus string

const (
	ExtractionOK ExtractionStatus = "ok"
	// ExtractionNoVerse means the target verse text was missing from the
	// Bible database, so no prompt was sent.
	ExtractionNoVerse ExtractionStatus = "skipped_no_verse"
	ExtractionError   ExtractionStatus = "error"
)

// ParagraphCitation links an AI extraction back to a source paragraph.
type ParagraphCitation struct {
	ParaID int64  `json:"para_id" yaml:"para_id"`
	Reason string `json:"reason" yaml:"reason"`
}

// AIExtraction is the stored result of asking the model to distill
// commentary for one verse range.
type AIExtraction struct {
	ID            int64  `json:"id" yaml:"id"`
	CreatedAt     string `json:"created_at" yaml:"created_at"`
	Model         string `json:"model" yaml:"model"`
	PromptVersion string `json:"prompt_version" yaml:"prompt_version"`

	VerseKey `yaml:",inline"`

	HasCommentary bool     `json:"has_commentary" yaml:"has_commentary"`
	SummaryEN     string   `json:"summary_en" yaml:"summary_en"`
	SummaryZH     string   `json:"summary_zh" yaml:"summary_zh"`
	BulletsEN     []string `json:"bullet_points_en" yaml:"bullet_points_en"`
	BulletsZH     []string `json:"bullet_points_zh" yaml:"bullet_points_zh"`

	Citations []ParagraphCitation `json:"citations" yaml:"citations"`

	// RawJSON preserves the full model response for audit.
	RawJSON string           `json:"raw_json" yaml:"raw_json"`
	Status  ExtractionStatus `json:"status" yaml:"status"`
	Error   string           `json:"error,omitempty" yaml:"error,omitempty"`
}
