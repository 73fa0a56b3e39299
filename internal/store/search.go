// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for full-text corpus searches.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// DocID restricts results to one document.
	DocID int64

	// Lang filters by detected document language ("en", "zh").
	Lang string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// SearchResult is a matching paragraph with its document context.
type SearchResult struct {
	ParaID    int64
	DocID     int64
	PIndex    int
	Text      string
	DocTitle  string
	DocAuthor string
	DocSource string
}

// Search runs an FTS5 query over paragraph text, ranked by relevance.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]SearchResult, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var qb strings.Builder
	qb.WriteString(
		`SELECT p.id, p.doc_id, p.p_index, p.text,
			COALESCE(d.title, ''), COALESCE(d.author, ''), COALESCE(d.source, '')
		FROM paragraphs_fts
		JOIN paragraphs p ON p.id = paragraphs_fts.rowid
		JOIN documents d ON d.id = p.doc_id
		WHERE paragraphs_fts MATCH ?`)
	args := []any{opts.Query}

	if opts.DocID > 0 {
		qb.WriteString(` AND p.doc_id = ?`)
		args = append(args, opts.DocID)
	}
	if opts.Lang != "" {
		qb.WriteString(` AND d.lang = ?`)
		args = append(args, opts.Lang)
	}

	qb.WriteString(` ORDER BY paragraphs_fts.rank LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying corpus: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ParaID, &r.DocID, &r.PIndex, &r.Text,
			&r.DocTitle, &r.DocAuthor, &r.DocSource); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
