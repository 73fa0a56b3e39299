// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/commentary-engine/internal/ai"
	"github.com/pdiddy/commentary-engine/internal/secrets"
	"github.com/pdiddy/commentary-engine/pkg/types"
)

const defaultModel = "claude-sonnet-4-5-20250929"

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "AI commentary extraction (init, extract)",
	Long: `Ai distills the commentary paragraphs gathered for each verse into
concise bilingual summaries using the Claude API. Extractions are stored
per (model, prompt version, verse), with citations back to the source
paragraphs.

The API key comes from the ANTHROPIC_API_KEY environment variable or the
.secrets/anthropic-api-key file.`,
}

var aiInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the AI extraction tables",
	RunE:  runAIInit,
}

var aiExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract per-verse commentary summaries with Claude",
	Long: `Extract walks every verse referenced in the corpus, gathers its
commentary paragraphs and scripture text, and asks the model for a
summary with paragraph citations. Use --resume to continue an
interrupted run; finished and failed verses are both skipped.`,
	RunE: runAIExtract,
}

func init() {
	aiCmd.PersistentFlags().String("db", defaultCommentaryDB, "commentary database file")

	aiExtractCmd.Flags().String("bible-db", defaultBibleDB, "Bible database file")
	aiExtractCmd.Flags().String("model", defaultModel, "Claude model identifier")
	aiExtractCmd.Flags().String("api-key", "", "Claude API key (default: env or .secrets/)")
	aiExtractCmd.Flags().String("prompt-version", "v1", "tag stored with each extraction")
	aiExtractCmd.Flags().Int("limit", 0, "cap verses processed (0 = all)")
	aiExtractCmd.Flags().Bool("resume", false, "skip verses already extracted for this model and prompt version")
	aiExtractCmd.Flags().Bool("zh", false, "request Chinese summaries alongside English")
	aiExtractCmd.Flags().Duration("delay", time.Second, "pause between consecutive API calls")
	aiExtractCmd.Flags().Int("max-retries", 0, "retry attempts per API call (default 3)")
	aiExtractCmd.Flags().Int("max-paras-per-verse", 0, "evidence paragraphs sent per verse (default 10)")

	aiCmd.AddCommand(aiInitCmd)
	aiCmd.AddCommand(aiExtractCmd)

	rootCmd.AddCommand(aiCmd)
}

func runAIInit(cmd *cobra.Command, args []string) error {
	s, err := openCorpus(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.EnsureAITables(context.Background()); err != nil {
		return err
	}
	dbPath, _ := cmd.Flags().GetString("db")
	fmt.Fprintf(os.Stdout, "AI tables ready in %s\n", dbPath)
	return nil
}

func runAIExtract(cmd *cobra.Command, args []string) error {
	apiKey, _ := cmd.Flags().GetString("api-key")
	if apiKey == "" {
		apiKey = secrets.APIKey(secretsDir)
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or create %s%s", secretsDir, secrets.AnthropicAPIKey)
	}

	s, b, err := openExportStores(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	defer b.Close()

	model, _ := cmd.Flags().GetString("model")
	promptVersion, _ := cmd.Flags().GetString("prompt-version")
	limit, _ := cmd.Flags().GetInt("limit")
	resume, _ := cmd.Flags().GetBool("resume")
	zh, _ := cmd.Flags().GetBool("zh")
	delay, _ := cmd.Flags().GetDuration("delay")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	maxParas, _ := cmd.Flags().GetInt("max-paras-per-verse")

	cfg := types.AIConfig{
		Model:            model,
		PromptVersion:    promptVersion,
		MaxRetries:       maxRetries,
		MaxParasPerVerse: maxParas,
		IncludeChinese:   zh,
		Delay:            delay,
	}

	backend := &ai.ClaudeBackend{
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{Timeout: 120 * time.Second},
	}

	summary, err := ai.ExtractAll(context.Background(), backend, s, b, cfg, ai.Options{
		Limit:  limit,
		Resume: resume,
	}, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d verse(s) failed extraction", summary.Failed)
	}
	return nil
}
