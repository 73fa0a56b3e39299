// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bible manages the bible text SQLite database: version
// records, verse storage keyed by (version, book, chapter, verse), and
// USFX imports.
package bible

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Version describes one imported bible translation.
type Version struct {
	Version string
	Name    string
	Source  string
	License string
}

// Verse is one stored verse row.
type Verse struct {
	Version  string
	BookOSIS string
	Chapter  int
	Verse    int
	Text     string
}

// Store manages the bible SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the bible database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening bible database: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS bible_versions (
			version TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			source TEXT,
			license TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS verses (
			version TEXT NOT NULL,
			book_osis TEXT NOT NULL,
			chapter INTEGER NOT NULL,
			verse INTEGER NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (version, book_osis, chapter, verse)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_verses_lookup
			ON verses(version, book_osis, chapter, verse)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertVersion records or refreshes a translation's metadata.
func (s *Store) UpsertVersion(ctx context.Context, v Version) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO bible_versions (version, name, source, license)
		 VALUES (?, ?, ?, ?)`,
		v.Version, v.Name, v.Source, v.License,
	)
	if err != nil {
		return fmt.Errorf("upserting version %s: %w", v.Version, err)
	}
	return nil
}

// ResetVersion deletes all verses stored for a version.
func (s *Store) ResetVersion(ctx context.Context, version string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM verses WHERE version = ?`, version); err != nil {
		return fmt.Errorf("resetting version %s: %w", version, err)
	}
	return nil
}

// Versions lists the recorded translations.
func (s *Store) Versions(ctx context.Context) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT version, name, COALESCE(source, ''), COALESCE(license, '')
		 FROM bible_versions ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.Version, &v.Name, &v.Source, &v.License); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CountVerses returns the number of verses stored for a version.
func (s *Store) CountVerses(ctx context.Context, version string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM verses WHERE version = ?`, version,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting verses: %w", err)
	}
	return n, nil
}

// VerseText looks up a single verse. The second return is false when
// the verse is not stored.
func (s *Store) VerseText(ctx context.Context, version, bookOSIS string, chapter, verse int) (string, bool, error) {
	var text string
	err := s.db.QueryRowContext(ctx,
		`SELECT text FROM verses WHERE version = ? AND book_osis = ? AND chapter = ? AND verse = ?`,
		version, bookOSIS, chapter, verse,
	).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up verse: %w", err)
	}
	return text, true, nil
}

// RangeText returns the verses from verseStart through verseEnd joined
// with single spaces. Missing verses inside the range are simply
// absent from the result.
func (s *Store) RangeText(ctx context.Context, version, bookOSIS string, chapter, verseStart, verseEnd int) (string, error) {
	if verseEnd < verseStart {
		verseEnd = verseStart
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM verses
		 WHERE version = ? AND book_osis = ? AND chapter = ? AND verse BETWEEN ? AND ?
		 ORDER BY verse`,
		version, bookOSIS, chapter, verseStart, verseEnd,
	)
	if err != nil {
		return "", fmt.Errorf("looking up verse range: %w", err)
	}
	defer rows.Close()

	var parts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return "", fmt.Errorf("scanning verse: %w", err)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " "), rows.Err()
}

// insertVerses writes a batch of verse rows in one transaction,
// replacing rows already stored for the same key.
func (s *Store) insertVerses(ctx context.Context, verses []Verse) error {
	if len(verses) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO verses (version, book_osis, chapter, verse, text)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range verses {
		if _, err := stmt.ExecContext(ctx, v.Version, v.BookOSIS, v.Chapter, v.Verse, v.Text); err != nil {
			return fmt.Errorf("inserting %s %d:%d: %w", v.BookOSIS, v.Chapter, v.Verse, err)
		}
	}
	return tx.Commit()
}
