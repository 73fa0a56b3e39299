// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/pdiddy/commentary-engine/internal/verse"
	"github.com/pdiddy/commentary-engine/pkg/types"
)

// MentionOptions controls a mention extraction run.
type MentionOptions struct {
	// Reset deletes existing mentions before re-extracting.
	Reset bool

	// Limit caps paragraphs scanned (0 = all), for quick tests.
	Limit int

	// KeepChapterOnly stores bare book+chapter references alongside
	// full chapter:verse ones.
	KeepChapterOnly bool
}

// MentionSummary reports a mention extraction run.
type MentionSummary struct {
	Paragraphs int
	Mentions   int
}

// ExtractMentions scans every paragraph for scripture references and
// stores the matches in verse_mentions.
func (s *Store) ExtractMentions(ctx context.Context, opts MentionOptions, w io.Writer) (MentionSummary, error) {
	var summary MentionSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if opts.Reset {
		if _, err := tx.ExecContext(ctx, `DELETE FROM verse_mentions`); err != nil {
			return summary, fmt.Errorf("resetting mentions: %w", err)
		}
	}

	q := `SELECT id, doc_id, p_index, text FROM paragraphs ORDER BY doc_id, p_index`
	args := []any{}
	if opts.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, opts.Limit)
	}
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return summary, fmt.Errorf("listing paragraphs: %w", err)
	}

	type paragraph struct {
		id     int64
		docID  int64
		pIndex int
		text   string
	}
	var paras []paragraph
	for rows.Next() {
		var p paragraph
		if err := rows.Scan(&p.id, &p.docID, &p.pIndex, &p.text); err != nil {
			rows.Close()
			return summary, fmt.Errorf("scanning paragraph: %w", err)
		}
		paras = append(paras, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return summary, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO verse_mentions (doc_id, p_index, para_id, raw_match, book_osis, chapter, verse_start, verse_end, parse_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range paras {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		summary.Paragraphs++
		for _, m := range verse.Extract(p.text, opts.KeepChapterOnly) {
			_, err := stmt.ExecContext(ctx,
				p.docID, p.pIndex, p.id, m.Raw,
				nullString(m.Book), nullInt(m.Chapter), nullInt(m.VerseStart), nullInt(m.VerseEnd),
				string(m.Status),
			)
			if err != nil {
				return summary, fmt.Errorf("inserting mention %q: %w", m.Raw, err)
			}
			summary.Mentions++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, err
	}
	fmt.Fprintf(w, "scanned %d paragraph(s), stored %d mention(s)\n", summary.Paragraphs, summary.Mentions)
	return summary, nil
}

// TargetVerses lists the distinct fully parsed verse ranges mentioned
// in the corpus, in canonical order.
func (s *Store) TargetVerses(ctx context.Context) ([]types.VerseKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT book_osis, chapter, verse_start, verse_end
		 FROM verse_mentions
		 WHERE parse_status = ?
		   AND book_osis IS NOT NULL AND chapter IS NOT NULL
		   AND verse_start IS NOT NULL AND verse_end IS NOT NULL
		 GROUP BY book_osis, chapter, verse_start, verse_end
		 ORDER BY book_osis, chapter, verse_start, verse_end`,
		string(types.ParseOK),
	)
	if err != nil {
		return nil, fmt.Errorf("listing target verses: %w", err)
	}
	defer rows.Close()

	var out []types.VerseKey
	for rows.Next() {
		var k types.VerseKey
		if err := rows.Scan(&k.Book, &k.Chapter, &k.VerseStart, &k.VerseEnd); err != nil {
			return nil, fmt.Errorf("scanning verse key: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return sql.NullString{}
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return sql.NullInt64{}
	}
	return n
}
