// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/commentary-engine/internal/store"
)

var mentionsCmd = &cobra.Command{
	Use:   "mentions",
	Short: "Scan corpus paragraphs for scripture references",
	Long: `Mentions scans every paragraph in the corpus for scripture references
(English and Chinese book names, chapter:verse ranges, cross-format
separators) and records them in the verse_mentions table. Each mention
keeps its raw matched text and a parse status, so partially parsed
references stay reviewable.`,
	RunE: runMentions,
}

func init() {
	mentionsCmd.Flags().String("db", defaultCommentaryDB, "commentary database file")
	mentionsCmd.Flags().Bool("reset", false, "delete existing mentions before scanning")
	mentionsCmd.Flags().Int("limit", 0, "cap paragraphs scanned (0 = all)")
	mentionsCmd.Flags().Bool("no-chapter-only", false, "drop bare book+chapter references")

	rootCmd.AddCommand(mentionsCmd)
}

func runMentions(cmd *cobra.Command, args []string) error {
	s, err := openCorpus(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	reset, _ := cmd.Flags().GetBool("reset")
	limit, _ := cmd.Flags().GetInt("limit")
	noChapterOnly, _ := cmd.Flags().GetBool("no-chapter-only")

	_, err = s.ExtractMentions(context.Background(), store.MentionOptions{
		Reset:           reset,
		Limit:           limit,
		KeepChapterOnly: !noChapterOnly,
	}, os.Stdout)
	return err
}
