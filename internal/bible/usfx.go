// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bible

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// usfmToOSIS maps USFX/USFM book codes to the OSIS identifiers used
// throughout the corpus. Codes absent from the map (front matter,
// apocrypha) are skipped on import.
var usfmToOSIS = map[string]string{
	"GEN": "Gen", "EXO": "Exod", "LEV": "Lev", "NUM": "Num", "DEU": "Deut",
	"JOS": "Josh", "JDG": "Judg", "RUT": "Ruth",
	"1SA": "1Sam", "2SA": "2Sam", "1KI": "1Kgs", "2KI": "2Kgs",
	"1CH": "1Chr", "2CH": "2Chr", "EZR": "Ezra", "NEH": "Neh", "EST": "Esth",
	"JOB": "Job", "PSA": "Ps", "PRO": "Prov", "ECC": "Eccl", "SNG": "Song",
	"ISA": "Isa", "JER": "Jer", "LAM": "Lam", "EZK": "Ezek", "DAN": "Dan",
	"HOS": "Hos", "JOL": "Joel", "AMO": "Amos", "OBA": "Obad", "JON": "Jonah",
	"MIC": "Mic", "NAM": "Nah", "HAB": "Hab", "ZEP": "Zeph", "HAG": "Hag",
	"ZEC": "Zech", "MAL": "Mal",
	"MAT": "Matt", "MRK": "Mark", "LUK": "Luke", "JHN": "John", "ACT": "Acts",
	"ROM": "Rom", "1CO": "1Cor", "2CO": "2Cor", "GAL": "Gal", "EPH": "Eph",
	"PHP": "Phil", "COL": "Col", "1TH": "1Thess", "2TH": "2Thess",
	"1TI": "1Tim", "2TI": "2Tim", "TIT": "Titus", "PHM": "Phlm",
	"HEB": "Heb", "JAS": "Jas", "1PE": "1Pet", "2PE": "2Pet",
	"1JN": "1John", "2JN": "2John", "3JN": "3John", "JUD": "Jude", "REV": "Rev",
}

// skipElements hold footnote and cross-reference text that must not
// leak into verse text.
var skipElements = map[string]bool{
	"note": true, "f": true, "fn": true, "ft": true,
	"x": true, "xo": true, "xt": true, "ref": true,
}

var (
	reDigits = regexp.MustCompile(`\d+`)
	reWS     = regexp.MustCompile(`\s+`)
)

const importBatchSize = 5000

// USFXOptions controls one USFX import run.
type USFXOptions struct {
	Version Version

	// Reset deletes verses already stored for the version before
	// importing.
	Reset bool
}

// USFXSummary reports an import run.
type USFXSummary struct {
	Books    int
	Inserted int

	// Stored is the row count for the version after import, which can
	// be lower than Inserted when the file repeats verse markers.
	Stored int
}

// ImportUSFX streams a USFX XML document into the verses table.
// Chapter and verse markers are milestones in USFX: text between one
// <v> marker and the next belongs to the current verse, wherever it
// sits in the element tree.
func (s *Store) ImportUSFX(ctx context.Context, r io.Reader, opts USFXOptions, w io.Writer) (USFXSummary, error) {
	if opts.Version.Version == "" {
		return USFXSummary{}, fmt.Errorf("version identifier is required")
	}
	if err := s.UpsertVersion(ctx, opts.Version); err != nil {
		return USFXSummary{}, err
	}
	if opts.Reset {
		if err := s.ResetVersion(ctx, opts.Version.Version); err != nil {
			return USFXSummary{}, err
		}
	}

	var (
		summary  USFXSummary
		batch    []Verse
		buf      strings.Builder
		bookOSIS string
		chapter  int
		verse    int
		skip     int
	)

	flush := func() {
		if bookOSIS == "" || chapter == 0 || verse == 0 {
			buf.Reset()
			return
		}
		text := strings.TrimSpace(reWS.ReplaceAllString(buf.String(), " "))
		buf.Reset()
		if text == "" {
			return
		}
		batch = append(batch, Verse{
			Version:  opts.Version.Version,
			BookOSIS: bookOSIS,
			Chapter:  chapter,
			Verse:    verse,
			Text:     text,
		})
	}
	commit := func() error {
		if err := s.insertVerses(ctx, batch); err != nil {
			return err
		}
		summary.Inserted += len(batch)
		batch = batch[:0]
		return nil
	}

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("parsing USFX: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if skipElements[name] {
				skip++
				continue
			}
			switch name {
			case "book":
				flush()
				code := strings.ToUpper(strings.TrimSpace(attr(t, "id", "code")))
				bookOSIS = usfmToOSIS[code]
				chapter, verse = 0, 0
				if bookOSIS != "" {
					summary.Books++
					fmt.Fprintf(w, "  %s\n", bookOSIS)
				}
			case "c", "chapter":
				flush()
				chapter = lastInt(attr(t, "id", "n", "number", "sid", "ref"))
				verse = 0
			case "v", "verse":
				if isEndMarker(t) {
					continue
				}
				flush()
				verse = lastInt(attr(t, "id", "n", "number", "sid", "ref"))
			}
		case xml.EndElement:
			if skipElements[t.Name.Local] && skip > 0 {
				skip--
				continue
			}
			if t.Name.Local == "book" {
				flush()
				bookOSIS = ""
				if len(batch) >= importBatchSize {
					if err := commit(); err != nil {
						return summary, err
					}
				}
			}
		case xml.CharData:
			if skip == 0 && bookOSIS != "" && chapter > 0 && verse > 0 {
				buf.Write(t)
			}
		}
	}
	flush()
	if err := commit(); err != nil {
		return summary, err
	}

	stored, err := s.CountVerses(ctx, opts.Version.Version)
	if err != nil {
		return summary, err
	}
	summary.Stored = stored
	return summary, nil
}

// attr returns the first non-empty attribute among keys.
func attr(el xml.StartElement, keys ...string) string {
	for _, k := range keys {
		for _, a := range el.Attr {
			if a.Name.Local == k && strings.TrimSpace(a.Value) != "" {
				return a.Value
			}
		}
	}
	return ""
}

// isEndMarker reports a pure verse end marker: an eid attribute with no
// verse number attributes.
func isEndMarker(el xml.StartElement) bool {
	hasEID := false
	for _, a := range el.Attr {
		switch a.Name.Local {
		case "eid":
			hasEID = true
		case "id", "n", "number", "sid", "ref":
			return false
		}
	}
	return hasEID
}

// lastInt extracts the final run of digits in s, for attribute values
// like "GEN.1.3". Zero when s carries no digits.
func lastInt(s string) int {
	hits := reDigits.FindAllString(s, -1)
	if len(hits) == 0 {
		return 0
	}
	n := 0
	for _, c := range hits[len(hits)-1] {
		n = n*10 + int(c-'0')
	}
	return n
}
