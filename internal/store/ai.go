// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/pdiddy/commentary-engine/pkg/types"
)

// EnsureAITables creates the AI extraction tables when missing. Kept
// out of the base schema so `db init` does not imply the AI stage.
func (s *Store) EnsureAITables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ai_extractions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at       TEXT NOT NULL,
			model            TEXT NOT NULL,
			prompt_version   TEXT NOT NULL,
			book_osis        TEXT NOT NULL,
			chapter          INTEGER NOT NULL,
			verse_start      INTEGER NOT NULL,
			verse_end        INTEGER NOT NULL,
			has_commentary   INTEGER NOT NULL,
			summary_en       TEXT NOT NULL,
			summary_zh       TEXT NOT NULL,
			bullet_points_en TEXT NOT NULL,
			bullet_points_zh TEXT NOT NULL,
			cited_para_ids   TEXT NOT NULL,
			raw_json         TEXT NOT NULL,
			status           TEXT NOT NULL,
			error            TEXT,
			UNIQUE(model, prompt_version, book_osis, chapter, verse_start, verse_end)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ai_extractions_ref
			ON ai_extractions(book_osis, chapter, verse_start, verse_end)`,
		`CREATE TABLE IF NOT EXISTS ai_extraction_citations (
			extraction_id INTEGER NOT NULL,
			para_id       INTEGER NOT NULL,
			reason        TEXT NOT NULL,
			PRIMARY KEY (extraction_id, para_id),
			FOREIGN KEY(extraction_id) REFERENCES ai_extractions(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ai_citations_para
			ON ai_extraction_citations(para_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating AI tables: %w", err)
		}
	}
	return nil
}

// Evidence is one source paragraph offered to the model for a verse.
type Evidence struct {
	ParaID    int64
	PIndex    int
	DocID     int64
	DocTitle  string
	DocAuthor string
	DocSource string
	Text      string
}

// EvidenceParagraphs returns the distinct paragraphs tagged as
// mentioning exactly the given verse range, capped at maxParas.
func (s *Store) EvidenceParagraphs(ctx context.Context, key types.VerseKey, maxParas int) ([]Evidence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT
			p.id, p.p_index, d.id,
			COALESCE(d.title, ''), COALESCE(d.author, ''), COALESCE(d.source, ''),
			p.text
		FROM verse_mentions vm
		JOIN paragraphs p ON p.id = vm.para_id
		JOIN documents d ON d.id = p.doc_id
		WHERE vm.parse_status = ?
		  AND vm.book_osis = ? AND vm.chapter = ? AND vm.verse_start = ? AND vm.verse_end = ?
		ORDER BY d.id, p.p_index
		LIMIT ?`,
		string(types.ParseOK), key.Book, key.Chapter, key.VerseStart, key.VerseEnd, maxParas,
	)
	if err != nil {
		return nil, fmt.Errorf("querying evidence: %w", err)
	}
	defer rows.Close()

	var out []Evidence
	for rows.Next() {
		var e Evidence
		if err := rows.Scan(&e.ParaID, &e.PIndex, &e.DocID,
			&e.DocTitle, &e.DocAuthor, &e.DocSource, &e.Text); err != nil {
			return nil, fmt.Errorf("scanning evidence: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AlreadyExtracted reports whether an extraction is stored for the
// verse range under the given model and prompt version.
func (s *Store) AlreadyExtracted(ctx context.Context, model, promptVersion string, key types.VerseKey) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM ai_extractions
		 WHERE model = ? AND prompt_version = ?
		   AND book_osis = ? AND chapter = ? AND verse_start = ? AND verse_end = ?`,
		model, promptVersion, key.Book, key.Chapter, key.VerseStart, key.VerseEnd,
	).Scan(&one)
	if err == nil {
		return true, nil
	}
	if err == sql.ErrNoRows {
		return false, nil
	}
	return false, fmt.Errorf("checking extraction: %w", err)
}

// SaveExtraction stores one extraction result with its citations in a
// single transaction.
func (s *Store) SaveExtraction(ctx context.Context, rec *types.AIExtraction) error {
	bulletsEN, _ := json.Marshal(orEmpty(rec.BulletsEN))
	bulletsZH, _ := json.Marshal(orEmpty(rec.BulletsZH))
	citedIDs := make([]int64, 0, len(rec.Citations))
	for _, c := range rec.Citations {
		citedIDs = append(citedIDs, c.ParaID)
	}
	citedJSON, _ := json.Marshal(citedIDs)

	hasCommentary := 0
	if rec.HasCommentary {
		hasCommentary = 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO ai_extractions (
			created_at, model, prompt_version,
			book_osis, chapter, verse_start, verse_end,
			has_commentary, summary_en, summary_zh,
			bullet_points_en, bullet_points_zh, cited_para_ids,
			raw_json, status, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CreatedAt, rec.Model, rec.PromptVersion,
		rec.Book, rec.Chapter, rec.VerseStart, rec.VerseEnd,
		hasCommentary, rec.SummaryEN, rec.SummaryZH,
		string(bulletsEN), string(bulletsZH), string(citedJSON),
		rec.RawJSON, string(rec.Status), rec.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting extraction: %w", err)
	}
	extractionID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading extraction id: %w", err)
	}
	rec.ID = extractionID

	for _, c := range rec.Citations {
		if c.Reason == "" {
			continue
		}
		reason := c.Reason
		if len(reason) > 500 {
			cut := 500
			for cut > 0 && !utf8.RuneStart(reason[cut]) {
				cut--
			}
			reason = reason[:cut]
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO ai_extraction_citations (extraction_id, para_id, reason)
			 VALUES (?, ?, ?)`,
			extractionID, c.ParaID, reason,
		)
		if err != nil {
			return fmt.Errorf("inserting citation: %w", err)
		}
	}

	return tx.Commit()
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
