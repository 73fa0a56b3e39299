// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cpf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// RenameSummary holds counts from a rename run.
type RenameSummary struct {
	Renamed int
	Skipped int
	Failed  int
}

// Total returns the number of files examined.
func (s RenameSummary) Total() int {
	return s.Renamed + s.Skipped + s.Failed
}

// HasFailures reports whether any files failed.
func (s RenameSummary) HasFailures() bool {
	return s.Failed > 0
}

var (
	reTitleLine = regexp.MustCompile(`(?m)^\s*title:\s*(.+?)\s*$`)
	// Title-derived names keep only letters, digits, space, dash, underscore.
	reTitleChars = regexp.MustCompile(`[^A-Za-z0-9 _-]+`)
)

const renameMaxLen = 160

// titleBasename turns a CPF header title into a file base name, or ""
// when nothing usable remains.
func titleBasename(title string) string {
	s := reTitleChars.ReplaceAllString(title, " ")
	s = strings.TrimSpace(reAnyWS.ReplaceAllString(s, " "))
	if len(s) > renameMaxLen {
		s = strings.TrimRight(s[:renameMaxLen], " ")
	}
	return s
}

// uniquePath returns dir/base+ext, appending " (2)", " (3)", ... until
// the name does not collide with an existing file.
func uniquePath(dir, base, ext string) string {
	candidate := filepath.Join(dir, base+ext)
	for k := 2; ; k++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, k, ext))
	}
}

// RenameDir renames every *.cpf.txt file in dir after its header title.
// Files with no usable title, or already named correctly, are skipped.
// Per-file status goes to w.
func RenameDir(dir string, w io.Writer) (RenameSummary, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+Ext))
	if err != nil {
		return RenameSummary{}, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(matches)

	var summary RenameSummary
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(path), err)
			summary.Failed++
			continue
		}

		var title string
		if m := reTitleLine.FindSubmatch(data); m != nil {
			title = string(m[1])
		}
		base := titleBasename(title)
		if base == "" {
			summary.Skipped++
			continue
		}

		// Already named after its title.
		if filepath.Base(path) == base+Ext {
			summary.Skipped++
			continue
		}

		newPath := uniquePath(dir, base, Ext)
		if err := os.Rename(path, newPath); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(path), err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "renamed: %q -> %q\n", filepath.Base(path), filepath.Base(newPath))
		summary.Renamed++
	}

	fmt.Fprintf(w, "\nRename summary: %d renamed, %d skipped, %d failed (total: %d)\n",
		summary.Renamed, summary.Skipped, summary.Failed, summary.Total())
	return summary, nil
}
