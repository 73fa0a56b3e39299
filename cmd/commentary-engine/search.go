// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/commentary-engine/internal/store"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over corpus paragraphs",
	Long: `Search runs an FTS5 full-text query over imported paragraphs and prints
ranked matches with their source document. Results can be narrowed to a
single document or a detected language.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("db", defaultCommentaryDB, "commentary database file")
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = store default)")
	searchCmd.Flags().Int64("doc", 0, "restrict to one document ID")
	searchCmd.Flags().String("lang", "", "filter by detected language: en or zh")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, err := openCorpus(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	docID, _ := cmd.Flags().GetInt64("doc")
	lang, _ := cmd.Flags().GetString("lang")

	results, err := s.Search(context.Background(), store.QueryOptions{
		Query:      strings.Join(args, " "),
		DocID:      docID,
		Lang:       lang,
		MaxResults: limit,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []store.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for i, r := range results {
		text := strings.Join(strings.Fields(r.Text), " ")
		if runes := []rune(text); len(runes) > 200 {
			text = string(runes[:200]) + "..."
		}
		fmt.Fprintf(os.Stdout, "%d. [doc %d P%06d] %s\n", i+1, r.DocID, r.PIndex, r.DocTitle)
		fmt.Fprintf(os.Stdout, "   %s\n", text)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}
