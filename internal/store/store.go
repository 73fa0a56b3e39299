// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store manages the commentary corpus SQLite database:
// imported CPF documents with their paragraphs, extracted verse
// mentions, a full-text index, review exports, and stored AI
// extraction results.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/commentary-engine/pkg/types"
)

const defaultMaxResults = 20

// Store manages the commentary corpus SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the corpus database per cfg and ensures the
// schema exists.
func Open(cfg types.CorpusConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_type      TEXT NOT NULL,
			title         TEXT,
			author        TEXT,
			source        TEXT,
			extracted_at  TEXT,
			engine        TEXT,
			lang          TEXT,
			local_path    TEXT NOT NULL,
			sha256        TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS paragraphs (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_id    INTEGER NOT NULL,
			p_index   INTEGER NOT NULL,
			text      TEXT NOT NULL,
			FOREIGN KEY(doc_id) REFERENCES documents(id) ON DELETE CASCADE,
			UNIQUE(doc_id, p_index)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_paragraphs_doc ON paragraphs(doc_id)`,
		`CREATE TABLE IF NOT EXISTS verse_mentions (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_id       INTEGER NOT NULL,
			p_index      INTEGER NOT NULL,
			para_id      INTEGER,
			raw_match    TEXT NOT NULL,
			book_osis    TEXT,
			chapter      INTEGER,
			verse_start  INTEGER,
			verse_end    INTEGER,
			parse_status TEXT NOT NULL,
			FOREIGN KEY(doc_id) REFERENCES documents(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mentions_doc ON verse_mentions(doc_id)`,
		`CREATE INDEX IF NOT EXISTS idx_mentions_para ON verse_mentions(para_id)`,
		`CREATE INDEX IF NOT EXISTS idx_mentions_book_ch ON verse_mentions(book_osis, chapter)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='paragraphs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE paragraphs_fts USING fts5(text, content=paragraphs, content_rowid=id)`,
			`CREATE TRIGGER paragraphs_ai AFTER INSERT ON paragraphs BEGIN
				INSERT INTO paragraphs_fts(rowid, text) VALUES (new.id, new.text);
			END`,
			`CREATE TRIGGER paragraphs_ad AFTER DELETE ON paragraphs BEGIN
				INSERT INTO paragraphs_fts(paragraphs_fts, rowid, text) VALUES('delete', old.id, old.text);
			END`,
			`CREATE TRIGGER paragraphs_au AFTER UPDATE ON paragraphs BEGIN
				INSERT INTO paragraphs_fts(paragraphs_fts, rowid, text) VALUES('delete', old.id, old.text);
				INSERT INTO paragraphs_fts(rowid, text) VALUES (new.id, new.text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Stats summarizes corpus contents.
type Stats struct {
	Documents  int
	Paragraphs int
	Mentions   int
}

// Stats returns corpus row counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	for _, q := range []struct {
		sql  string
		dest *int
	}{
		{`SELECT COUNT(*) FROM documents`, &st.Documents},
		{`SELECT COUNT(*) FROM paragraphs`, &st.Paragraphs},
		{`SELECT COUNT(*) FROM verse_mentions`, &st.Mentions},
	} {
		if err := s.db.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return st, fmt.Errorf("counting rows: %w", err)
		}
	}
	return st, nil
}
