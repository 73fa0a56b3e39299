// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/commentary-engine/internal/bible"
	"github.com/pdiddy/commentary-engine/pkg/types"
)

// Verse text columns come from these two translations; the review
// spreadsheets pair English and Chinese side by side.
const (
	versionEN = "KJV"
	versionZH = "CUVS"
)

// utf8BOM keeps Excel happy with UTF-8 CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReviewOptions controls the flat review queue export.
type ReviewOptions struct {
	// OnlyStatus filters verse_mentions.parse_status (default "ok").
	OnlyStatus types.ParseStatus

	// Limit caps exported rows (0 = no limit).
	Limit int
}

// ExportReviewCSV writes one CSV row per verse mention, joined with
// its source paragraph, document, and the mentioned verse's text in
// both translations.
func (s *Store) ExportReviewCSV(ctx context.Context, b *bible.Store, opts ReviewOptions, outPath string) (int, error) {
	status := opts.OnlyStatus
	if status == "" {
		status = types.ParseOK
	}

	q := `SELECT
			vm.id, vm.raw_match, vm.book_osis, vm.chapter, vm.verse_start, COALESCE(vm.verse_end, vm.verse_start), vm.parse_status,
			d.id, d.doc_type, COALESCE(d.title, ''), COALESCE(d.source, ''), COALESCE(d.extracted_at, ''),
			p.id, p.p_index, p.text
		FROM verse_mentions vm
		JOIN paragraphs p ON p.id = vm.para_id
		JOIN documents d ON d.id = p.doc_id
		WHERE vm.parse_status = ?
		  AND vm.chapter IS NOT NULL
		  AND vm.verse_start IS NOT NULL
		ORDER BY d.id, p.p_index, vm.id`
	args := []any{string(status)}
	if opts.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("querying mentions: %w", err)
	}
	defer rows.Close()

	w, f, err := openCSV(outPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	header := []string{
		"mention_id", "raw_match", "book_osis", "chapter", "verse_start", "verse_end", "parse_status",
		"doc_id", "doc_type", "doc_title", "doc_source", "doc_extracted_at",
		"para_id", "para_order", "para_text",
		"kjv_text", "cuvs_text",
	}
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	n := 0
	for rows.Next() {
		var (
			mentionID, docID, paraID   int64
			rawMatch, parseStatus      string
			book                       sql.NullString
			chapter, verseStart        int
			verseEnd, pIndex           int
			docType, docTitle          string
			docSource, docExtracted    string
			paraText                   string
		)
		if err := rows.Scan(
			&mentionID, &rawMatch, &book, &chapter, &verseStart, &verseEnd, &parseStatus,
			&docID, &docType, &docTitle, &docSource, &docExtracted,
			&paraID, &pIndex, &paraText,
		); err != nil {
			return n, fmt.Errorf("scanning row: %w", err)
		}

		kjv, cuvs := "", ""
		if book.Valid {
			kjv, _, err = b.VerseText(ctx, versionEN, book.String, chapter, verseStart)
			if err != nil {
				return n, err
			}
			cuvs, _, err = b.VerseText(ctx, versionZH, book.String, chapter, verseStart)
			if err != nil {
				return n, err
			}
		}

		record := []string{
			strconv.FormatInt(mentionID, 10), rawMatch, book.String,
			strconv.Itoa(chapter), strconv.Itoa(verseStart), strconv.Itoa(verseEnd), parseStatus,
			strconv.FormatInt(docID, 10), docType, docTitle, docSource, docExtracted,
			strconv.FormatInt(paraID, 10), strconv.Itoa(pIndex), paraText,
			kjv, cuvs,
		}
		if err := w.Write(record); err != nil {
			return n, fmt.Errorf("writing row: %w", err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return n, fmt.Errorf("flushing CSV: %w", err)
	}
	return n, f.Close()
}

// GroupedOptions controls the verse-centric grouped export.
type GroupedOptions struct {
	OnlyStatus types.ParseStatus

	// Limit caps mention rows scanned (0 = no limit).
	Limit int

	// MaxParasPerVerse caps evidence paragraphs kept per verse group
	// (default 10).
	MaxParasPerVerse int

	// MaxParaChars trims each evidence snippet (default 800).
	MaxParaChars int
}

type verseGroup struct {
	key      types.VerseKey
	sources  map[string]bool
	evidence []string
}

// ExportGroupedCSV writes one CSV row per distinct verse range, with
// the verse text in both translations and a compact multi-line
// evidence cell listing the paragraphs that mention it.
func (s *Store) ExportGroupedCSV(ctx context.Context, b *bible.Store, opts GroupedOptions, outPath string) (int, error) {
	status := opts.OnlyStatus
	if status == "" {
		status = types.ParseOK
	}
	maxParas := opts.MaxParasPerVerse
	if maxParas <= 0 {
		maxParas = 10
	}
	maxChars := opts.MaxParaChars
	if maxChars <= 0 {
		maxChars = 800
	}

	q := `SELECT
			vm.book_osis, vm.chapter, vm.verse_start, COALESCE(vm.verse_end, vm.verse_start),
			COALESCE(d.title, ''), COALESCE(d.source, ''),
			p.id, p.p_index, p.text
		FROM verse_mentions vm
		JOIN paragraphs p ON p.id = vm.para_id
		JOIN documents d ON d.id = p.doc_id
		WHERE vm.parse_status = ?
		  AND vm.book_osis IS NOT NULL
		  AND vm.chapter IS NOT NULL
		  AND vm.verse_start IS NOT NULL
		ORDER BY vm.book_osis, vm.chapter, vm.verse_start, COALESCE(vm.verse_end, vm.verse_start),
		         d.id, p.p_index, vm.id`
	args := []any{string(status)}
	if opts.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("querying mentions: %w", err)
	}
	defer rows.Close()

	groups := map[types.VerseKey]*verseGroup{}
	for rows.Next() {
		var (
			key              types.VerseKey
			docTitle, docSrc string
			paraID           int64
			pIndex           int
			paraText         string
		)
		if err := rows.Scan(&key.Book, &key.Chapter, &key.VerseStart, &key.VerseEnd,
			&docTitle, &docSrc, &paraID, &pIndex, &paraText); err != nil {
			return 0, fmt.Errorf("scanning row: %w", err)
		}

		g := groups[key]
		if g == nil {
			g = &verseGroup{key: key, sources: map[string]bool{}}
			groups[key] = g
		}
		if docSrc != "" {
			g.sources[docSrc] = true
		}

		if len(g.evidence) >= maxParas {
			continue
		}
		text := strings.Join(strings.Fields(paraText), " ")
		if len(text) > maxChars {
			cut := maxChars
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = strings.TrimRight(text[:cut], " ") + " …"
		}
		label := docTitle
		if label == "" {
			label = docSrc
		}
		if label != "" {
			g.evidence = append(g.evidence, fmt.Sprintf("- %s (para_id=%d, p_index=%d): %s", label, paraID, pIndex, text))
		} else {
			g.evidence = append(g.evidence, fmt.Sprintf("- (para_id=%d, p_index=%d): %s", paraID, pIndex, text))
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	keys := make([]types.VerseKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, c := keys[i], keys[j]
		if a.Book != c.Book {
			return a.Book < c.Book
		}
		if a.Chapter != c.Chapter {
			return a.Chapter < c.Chapter
		}
		if a.VerseStart != c.VerseStart {
			return a.VerseStart < c.VerseStart
		}
		return a.VerseEnd < c.VerseEnd
	})

	w, f, err := openCSV(outPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	header := []string{
		"ref",
		"book_osis", "chapter", "verse_start", "verse_end",
		"kjv_text", "cuvs_text",
		"source_count", "sources",
		"evidence",
	}
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, k := range keys {
		g := groups[k]

		kjv, err := b.RangeText(ctx, versionEN, k.Book, k.Chapter, k.VerseStart, k.VerseEnd)
		if err != nil {
			return 0, err
		}
		cuvs, err := b.RangeText(ctx, versionZH, k.Book, k.Chapter, k.VerseStart, k.VerseEnd)
		if err != nil {
			return 0, err
		}

		sources := make([]string, 0, len(g.sources))
		for src := range g.sources {
			sources = append(sources, src)
		}
		sort.Strings(sources)

		record := []string{
			k.Ref(),
			k.Book, strconv.Itoa(k.Chapter), strconv.Itoa(k.VerseStart), strconv.Itoa(k.VerseEnd),
			kjv, cuvs,
			strconv.Itoa(len(sources)), strings.Join(sources, " | "),
			strings.Join(g.evidence, "\n"),
		}
		if err := w.Write(record); err != nil {
			return 0, fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flushing CSV: %w", err)
	}
	return len(keys), f.Close()
}

// openCSV creates outPath (and parents), writes the UTF-8 BOM, and
// returns a CSV writer over the file.
func openCSV(outPath string) (*csv.Writer, *os.File, error) {
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", outPath, err)
	}
	if _, err := f.Write(utf8BOM); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("writing BOM: %w", err)
	}
	return csv.NewWriter(f), f, nil
}
