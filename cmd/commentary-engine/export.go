// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/commentary-engine/internal/bible"
	"github.com/pdiddy/commentary-engine/internal/store"
	"github.com/pdiddy/commentary-engine/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export verse mentions as review or per-verse CSV sheets",
	Long: `Export writes spreadsheet-ready CSV files from the corpus. The review
sheet lists every verse mention with its source paragraph and the verse
text in both translations; the grouped sheet collects all commentary
evidence per verse.

Files start with a UTF-8 byte order mark so Excel opens Chinese text
correctly.`,
}

var exportReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Export one row per verse mention for manual review",
	RunE:  runExportReview,
}

var exportGroupedCmd = &cobra.Command{
	Use:   "grouped",
	Short: "Export one row per verse with all commentary evidence",
	RunE:  runExportGrouped,
}

func init() {
	exportCmd.PersistentFlags().String("db", defaultCommentaryDB, "commentary database file")
	exportCmd.PersistentFlags().String("bible-db", defaultBibleDB, "Bible database file")
	exportCmd.PersistentFlags().String("only-status", "ok", "mention parse status to export: ok, chapter_only, or unparsed")
	exportCmd.PersistentFlags().Int("limit", 0, "cap exported rows (0 = no limit)")

	exportReviewCmd.Flags().String("out", "exports/review_queue.csv", "output CSV path")

	exportGroupedCmd.Flags().String("out", "exports/grouped_by_verse.csv", "output CSV path")
	exportGroupedCmd.Flags().Int("max-paras-per-verse", 0, "evidence paragraphs kept per verse (default 10)")
	exportGroupedCmd.Flags().Int("max-para-chars", 0, "trim each evidence snippet to this many characters (default 800)")

	exportCmd.AddCommand(exportReviewCmd)
	exportCmd.AddCommand(exportGroupedCmd)

	rootCmd.AddCommand(exportCmd)
}

// openExportStores opens the commentary and Bible databases named by the
// shared export flags.
func openExportStores(cmd *cobra.Command) (*store.Store, *bible.Store, error) {
	s, err := openCorpus(cmd)
	if err != nil {
		return nil, nil, err
	}
	biblePath, _ := cmd.Flags().GetString("bible-db")
	b, err := bible.Open(biblePath)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, b, nil
}

func runExportReview(cmd *cobra.Command, args []string) error {
	s, b, err := openExportStores(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	defer b.Close()

	status, _ := cmd.Flags().GetString("only-status")
	limit, _ := cmd.Flags().GetInt("limit")
	outPath, _ := cmd.Flags().GetString("out")

	n, err := s.ExportReviewCSV(context.Background(), b, store.ReviewOptions{
		OnlyStatus: types.ParseStatus(status),
		Limit:      limit,
	}, outPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "exported %d rows -> %s\n", n, outPath)
	return nil
}

func runExportGrouped(cmd *cobra.Command, args []string) error {
	s, b, err := openExportStores(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	defer b.Close()

	status, _ := cmd.Flags().GetString("only-status")
	limit, _ := cmd.Flags().GetInt("limit")
	outPath, _ := cmd.Flags().GetString("out")
	maxParas, _ := cmd.Flags().GetInt("max-paras-per-verse")
	maxChars, _ := cmd.Flags().GetInt("max-para-chars")

	n, err := s.ExportGroupedCSV(context.Background(), b, store.GroupedOptions{
		OnlyStatus:       types.ParseStatus(status),
		Limit:            limit,
		MaxParasPerVerse: maxParas,
		MaxParaChars:     maxChars,
	}, outPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "exported %d verse groups -> %s\n", n, outPath)
	return nil
}
