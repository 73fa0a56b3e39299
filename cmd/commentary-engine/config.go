// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/commentary-engine/pkg/types"
)

const configFileName = "commentary-engine.yaml"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the pipeline configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commentary-engine.yaml with default settings",
	Long: `Init writes a starter configuration file in the current directory.
Existing files are not overwritten unless --force is given.`,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// defaultPipelineConfig returns the settings the CLI uses when no flags
// or config file override them.
func defaultPipelineConfig() types.PipelineConfig {
	convert := types.ConvertConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout: defaultTimeout,
		},
		Fetch:        types.FetchAuto,
		Engine:       types.EngineAuto,
		MinParaChars: types.DefaultMinParaChars,
	}
	return types.PipelineConfig{
		Convert: convert,
		Crawl: types.CrawlConfig{
			Convert:    convert,
			OutDir:     "corpus",
			Delay:      time.Second,
			SameDomain: true,
		},
		Corpus: types.CorpusConfig{
			DBPath:     defaultCommentaryDB,
			MaxResults: 20,
		},
		AI: types.AIConfig{
			Model:            defaultModel,
			PromptVersion:    "v1",
			MaxRetries:       3,
			MaxParasPerVerse: 10,
			Delay:            time.Second,
		},
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	if !force {
		if _, err := os.Stat(configFileName); err == nil {
			return fmt.Errorf("%s already exists: use --force to overwrite", configFileName)
		}
	}

	data, err := yaml.Marshal(defaultPipelineConfig())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(configFileName, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configFileName, err)
	}

	fmt.Fprintf(os.Stdout, "wrote %s\n", configFileName)
	return nil
}
