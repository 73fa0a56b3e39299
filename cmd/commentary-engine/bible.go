// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/commentary-engine/internal/bible"
)

const defaultBibleDB = "data/bible.db"

var bibleCmd = &cobra.Command{
	Use:   "bible",
	Short: "Manage the Bible verse database (init, import, versions)",
	Long: `Bible manages the SQLite verse database used to pair commentary with
scripture text. Verse files are imported from USFX XML, one version at a
time (e.g. KJV, CUVS).`,
}

var bibleInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Bible database schema",
	RunE:  runBibleInit,
}

var bibleImportCmd = &cobra.Command{
	Use:   "import <usfx-file>",
	Short: "Import a USFX XML Bible into the verse database",
	Long: `Import streams a USFX XML file into the verses table. Chapter and verse
markers are milestones: text between one verse marker and the next is
stored under that verse, with footnotes and cross references dropped.

Example:
  commentary-engine bible import eng-kjv.usfx.xml --version KJV --name "King James Version"`,
	Args: cobra.ExactArgs(1),
	RunE: runBibleImport,
}

var bibleVersionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List imported Bible versions and verse counts",
	RunE:  runBibleVersions,
}

func init() {
	bibleCmd.PersistentFlags().String("db", defaultBibleDB, "Bible database file")

	bibleImportCmd.Flags().String("version", "", "version code, e.g. KJV or CUVS (required)")
	bibleImportCmd.Flags().String("name", "", "human-readable version name")
	bibleImportCmd.Flags().String("source", "", "where the file came from (URL or collection)")
	bibleImportCmd.Flags().String("license", "", "license of the text")
	bibleImportCmd.Flags().Bool("reset-version", false, "delete stored verses for the version before importing")
	_ = bibleImportCmd.MarkFlagRequired("version")

	bibleCmd.AddCommand(bibleInitCmd)
	bibleCmd.AddCommand(bibleImportCmd)
	bibleCmd.AddCommand(bibleVersionsCmd)

	rootCmd.AddCommand(bibleCmd)
}

func openBible(cmd *cobra.Command) (*bible.Store, string, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	s, err := bible.Open(dbPath)
	return s, dbPath, err
}

func runBibleInit(cmd *cobra.Command, args []string) error {
	s, dbPath, err := openBible(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Fprintf(os.Stdout, "initialized %s\n", dbPath)
	return nil
}

func runBibleImport(cmd *cobra.Command, args []string) error {
	s, _, err := openBible(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	version, _ := cmd.Flags().GetString("version")
	name, _ := cmd.Flags().GetString("name")
	source, _ := cmd.Flags().GetString("source")
	license, _ := cmd.Flags().GetString("license")
	reset, _ := cmd.Flags().GetBool("reset-version")

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening USFX file: %w", err)
	}
	defer f.Close()

	summary, err := s.ImportUSFX(context.Background(), f, bible.USFXOptions{
		Version: bible.Version{
			Version: version,
			Name:    name,
			Source:  source,
			License: license,
		},
		Reset: reset,
	}, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "imported %s: %d books, %d verses stored\n", version, summary.Books, summary.Stored)
	return nil
}

func runBibleVersions(cmd *cobra.Command, args []string) error {
	s, _, err := openBible(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	versions, err := s.Versions(ctx)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Println("No versions imported.")
		return nil
	}
	for _, v := range versions {
		n, err := s.CountVerses(ctx, v.Version)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%-8s %-28s %6d verses  %s\n", v.Version, v.Name, n, v.License)
	}
	return nil
}
