// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/commentary-engine/internal/cpf"
	"github.com/pdiddy/commentary-engine/internal/lang"
)

// ImportSummary holds counts from a CPF import run.
type ImportSummary struct {
	Imported int
	Skipped  int
	Failed   int
}

// Total returns the number of files processed.
func (s ImportSummary) Total() int {
	return s.Imported + s.Skipped + s.Failed
}

// HasFailures reports whether any file failed to import.
func (s ImportSummary) HasFailures() bool {
	return s.Failed > 0
}

// ImportDir imports every file in dir matching pattern (default
// *.cpf.txt). Files whose content hash is already stored are skipped,
// so re-running after adding files is cheap. Each document commits in
// its own transaction.
func (s *Store) ImportDir(ctx context.Context, dir, pattern string, w io.Writer) (ImportSummary, error) {
	if pattern == "" {
		pattern = "*" + cpf.Ext
	}
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return ImportSummary{}, fmt.Errorf("globbing %s: %w", pattern, err)
	}
	sort.Strings(files)

	var summary ImportSummary
	if len(files) == 0 {
		fmt.Fprintf(w, "No CPF files matched %s in %s\n", pattern, dir)
		return summary, nil
	}

	for _, path := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := filepath.Base(path)

		data, err := os.ReadFile(path)
		if err != nil {
			summary.Failed++
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			continue
		}

		sum := sha256.Sum256(data)
		digest := hex.EncodeToString(sum[:])

		var existing int64
		err = s.db.QueryRowContext(ctx,
			`SELECT id FROM documents WHERE sha256 = ?`, digest,
		).Scan(&existing)
		if err == nil {
			summary.Skipped++
			fmt.Fprintf(w, "skipped %s\n", name)
			continue
		}

		doc, err := cpf.Parse(string(data))
		if err != nil {
			summary.Failed++
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			continue
		}

		if err := s.importDocument(ctx, path, digest, doc); err != nil {
			summary.Failed++
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			continue
		}
		summary.Imported++
		fmt.Fprintf(w, "imported %s (%d paragraphs)\n", name, len(doc.Paragraphs))
	}

	fmt.Fprintf(w, "\nimported: %d, skipped: %d, failed: %d\n",
		summary.Imported, summary.Skipped, summary.Failed)
	return summary, nil
}

func (s *Store) importDocument(ctx context.Context, path, digest string, doc *cpf.Document) error {
	texts := make([]string, len(doc.Paragraphs))
	for i, p := range doc.Paragraphs {
		texts[i] = p.Text
	}
	docLang := lang.DetectParagraphs(texts)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (doc_type, title, author, source, extracted_at, engine, lang, local_path, sha256)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(doc.Meta.Type), doc.Meta.Title, doc.Meta.Author, doc.Meta.Source,
		doc.Meta.ExtractedAt, doc.Engine, docLang, path, digest,
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading document id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO paragraphs (doc_id, p_index, text) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range doc.Paragraphs {
		if _, err := stmt.ExecContext(ctx, docID, p.Index, p.Text); err != nil {
			return fmt.Errorf("inserting paragraph %d: %w", p.Index, err)
		}
	}

	return tx.Commit()
}
