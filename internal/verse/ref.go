// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verse

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/commentary-engine/pkg/types"
)

// Mention is one reference match within a text, with its byte span.
type Mention struct {
	Raw        string
	Book       string
	Chapter    int
	VerseStart int
	VerseEnd   int
	Status     types.ParseStatus
	Start, End int
}

var (
	// reRef matches book chapter:verse forms, including Chinese
	// chapter/verse markers: "John 3:16", "约3:16", "约3章16节",
	// with an optional verse range ("John 3:16-18", "约3章16~18节").
	reRef *regexp.Regexp

	// reChapOnly matches bare book+chapter forms: "John 3", "约3章".
	reChapOnly *regexp.Regexp
)

// compilePatterns builds the shared regexes from the alias table. Called
// once from the package init after aliases are registered. Tokens are
// sorted longest-first so full Chinese book names win over single-char
// abbreviations.
func compilePatterns() {
	tokens := make([]string, 0, len(bookAliases))
	for t := range bookAliases {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	escaped := make([]string, len(tokens))
	for i, t := range tokens {
		escaped[i] = regexp.QuoteMeta(t)
	}
	alt := strings.Join(escaped, "|")

	const dash = `(?:-|–|—|~)`
	reRef = regexp.MustCompile(
		`(?i)(?P<book>` + alt + `)\s*` +
			`(?P<chap>\d{1,3})\s*` +
			`(?:[:：]|章)\s*` +
			`(?P<v1>\d{1,3})` +
			`(?:\s*` + dash + `\s*(?P<v2>\d{1,3}))?` +
			`(?:\s*节)?`)
	reChapOnly = regexp.MustCompile(
		`(?i)(?P<book>` + alt + `)\s*` +
			`(?P<chap>\d{1,3})` +
			`(?:\s*章)?`)
}

// Extract finds scripture references in text. Chapter:verse matches with
// implausible chapters come back with status unparsed; chapter-only
// matches (status chapter_only) are reported when keepChapterOnly is set
// and they do not overlap a chapter:verse match, and implausible
// chapter-only candidates are dropped outright since most are page
// numbers.
func Extract(text string, keepChapterOnly bool) []Mention {
	var out []Mention
	var refSpans [][2]int

	for _, m := range reRef.FindAllStringSubmatchIndex(text, -1) {
		raw := text[m[0]:m[1]]
		book, _ := NormalizeBook(group(text, m, reRef, "book"))
		chap := atoiGroup(text, m, reRef, "chap")
		v1 := atoiGroup(text, m, reRef, "v1")
		v2 := atoiGroup(text, m, reRef, "v2")
		if v2 == 0 {
			v2 = v1
		}

		if !ChapterInRange(book, chap) {
			out = append(out, Mention{Raw: raw, Status: types.ParseUnparsed, Start: m[0], End: m[1]})
			continue
		}

		out = append(out, Mention{
			Raw: raw, Book: book, Chapter: chap,
			VerseStart: v1, VerseEnd: v2,
			Status: types.ParseOK, Start: m[0], End: m[1],
		})
		refSpans = append(refSpans, [2]int{m[0], m[1]})
	}

	if !keepChapterOnly {
		return out
	}

	for _, m := range reChapOnly.FindAllStringSubmatchIndex(text, -1) {
		raw := text[m[0]:m[1]]
		if strings.ContainsAny(raw, ":：") {
			continue
		}
		if overlapsAny(m[0], m[1], refSpans) {
			continue
		}

		book, _ := NormalizeBook(group(text, m, reChapOnly, "book"))
		chap := atoiGroup(text, m, reChapOnly, "chap")
		if !ChapterInRange(book, chap) {
			continue
		}

		out = append(out, Mention{
			Raw: raw, Book: book, Chapter: chap,
			Status: types.ParseChapterOnly, Start: m[0], End: m[1],
		})
	}

	return out
}

func overlapsAny(a0, a1 int, spans [][2]int) bool {
	for _, s := range spans {
		if a0 < s[1] && s[0] < a1 {
			return true
		}
	}
	return false
}

// group extracts a named submatch from a FindAllStringSubmatchIndex row.
func group(text string, m []int, re *regexp.Regexp, name string) string {
	for i, n := range re.SubexpNames() {
		if n == name && m[2*i] >= 0 {
			return text[m[2*i]:m[2*i+1]]
		}
	}
	return ""
}

func atoiGroup(text string, m []int, re *regexp.Regexp, name string) int {
	n, _ := strconv.Atoi(group(text, m, re, name))
	return n
}
