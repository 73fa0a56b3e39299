// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/commentary-engine/internal/store"
	"github.com/pdiddy/commentary-engine/pkg/types"
)

const defaultCommentaryDB = "data/commentary.db"

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the commentary corpus database (init, import, stats)",
	Long: `Db manages the SQLite commentary corpus. Use subcommands to create the
schema, import CPF files, or report row counts.`,
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the commentary database schema",
	Long: `Init creates the documents, paragraphs, and verse_mentions tables plus
the FTS5 paragraph index. Running it against an existing database is safe.`,
	RunE: runDBInit,
}

var dbImportCmd = &cobra.Command{
	Use:   "import <cpf-dir>",
	Short: "Import CPF files from a directory into the corpus",
	Long: `Import parses every CPF file in the directory and loads its metadata and
paragraphs into the database. Files already imported (matched by content
hash) are skipped, so re-running after a crawl only adds new documents.`,
	Args: cobra.ExactArgs(1),
	RunE: runDBImport,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print corpus row counts",
	RunE:  runDBStats,
}

func init() {
	dbCmd.PersistentFlags().String("db", defaultCommentaryDB, "commentary database file")
	dbImportCmd.Flags().String("glob", "", "file name pattern within the directory (default *.cpf.txt)")

	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbImportCmd)
	dbCmd.AddCommand(dbStatsCmd)

	rootCmd.AddCommand(dbCmd)
}

// openCorpus opens the commentary store named by the shared --db flag.
func openCorpus(cmd *cobra.Command) (*store.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	return store.Open(types.CorpusConfig{DBPath: dbPath})
}

func runDBInit(cmd *cobra.Command, args []string) error {
	s, err := openCorpus(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	dbPath, _ := cmd.Flags().GetString("db")
	fmt.Fprintf(os.Stdout, "initialized %s\n", dbPath)
	return nil
}

func runDBImport(cmd *cobra.Command, args []string) error {
	s, err := openCorpus(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	pattern, _ := cmd.Flags().GetString("glob")
	summary, err := s.ImportDir(context.Background(), args[0], pattern, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed importing", summary.Failed)
	}
	return nil
}

func runDBStats(cmd *cobra.Command, args []string) error {
	s, err := openCorpus(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.Stats(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "documents:      %d\n", st.Documents)
	fmt.Fprintf(os.Stdout, "paragraphs:     %d\n", st.Paragraphs)
	fmt.Fprintf(os.Stdout, "verse mentions: %d\n", st.Mentions)
	return nil
}
