// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the commentary-engine CLI, a
// pipeline for building a searchable Bible commentary corpus: convert
// webpages to CPF text, import them into SQLite, extract verse
// mentions, and export review and per-verse summary sheets.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/commentary-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir holds API keys as plain files, one per key.
const secretsDir = ".secrets/"

// rootCmd is the base command for the commentary-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "commentary-engine",
	Short: "Webpage-to-CPF conversion and Bible commentary corpus tools",
	Long: `commentary-engine builds a Bible commentary corpus from public-domain
webpages. Pages are converted into CPF plain-text files, imported into a
SQLite corpus with full-text search, scanned for scripture references,
and exported as review sheets or per-verse commentary summaries.

Each pipeline stage is a subcommand: convert, crawl, rename, db,
mentions, search, bible, export, and ai.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./commentary-engine.yaml or ~/.config/commentary-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("commentary-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "commentary-engine"))
		}
	}

	viper.SetEnvPrefix("COMMENTARY_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
