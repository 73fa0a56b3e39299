// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/commentary-engine/internal/convert"
	"github.com/pdiddy/commentary-engine/internal/fetch"
	"github.com/pdiddy/commentary-engine/pkg/types"
)

const defaultTimeout = 30 * time.Second

var convertCmd = &cobra.Command{
	Use:   "convert <url>",
	Short: "Convert a webpage into a CPF text file",
	Long: `Convert fetches a webpage, extracts its main content, and writes a CPF
plain-text file: a metadata header followed by [P000001]-tagged paragraphs.

The fetch strategy defaults to auto: plain HTTP first, falling back to a
headless browser when the site blocks the request. Use --fetch browser
directly for JavaScript-rendered pages.

Example:
  commentary-engine convert https://example.com/commentary/genesis --type article -o genesis.cpf.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("type", "", "document type: book or article (required)")
	convertCmd.Flags().String("title", "", "override the extracted title")
	convertCmd.Flags().String("author", "", "document author for the CPF header")
	convertCmd.Flags().String("source", "", "source attribution (default: the page URL)")
	convertCmd.Flags().String("fetch", "auto", "fetch strategy: auto, http, or browser")
	convertCmd.Flags().String("engine", "auto", "extraction engine: auto, readability, dom, or markdown")
	convertCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	convertCmd.Flags().Int("min-para-chars", 0, "drop paragraphs shorter than this (default 20)")
	convertCmd.Flags().StringP("output", "o", "", "output file path")
	convertCmd.Flags().String("outdir", ".", "output directory when --output is not given")
	_ = convertCmd.MarkFlagRequired("type")

	rootCmd.AddCommand(convertCmd)
}

// convertConfigFromFlags builds the conversion config shared by convert
// and crawl.
func convertConfigFromFlags(cmd *cobra.Command) (types.ConvertConfig, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	strategy, _ := cmd.Flags().GetString("fetch")
	engine, _ := cmd.Flags().GetString("engine")
	minChars, _ := cmd.Flags().GetInt("min-para-chars")

	cfg := types.ConvertConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: fetch.DefaultUserAgent,
		},
		Fetch:        types.FetchStrategy(strategy),
		Engine:       types.ExtractEngine(engine),
		MinParaChars: minChars,
	}
	if !types.ValidFetchStrategy(cfg.Fetch) {
		return cfg, fmt.Errorf("invalid fetch strategy %q: use auto, http, or browser", strategy)
	}
	if !types.ValidExtractEngine(cfg.Engine) {
		return cfg, fmt.Errorf("invalid extraction engine %q: use auto, readability, dom, or markdown", engine)
	}
	return cfg, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := convertConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	docType, _ := cmd.Flags().GetString("type")
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")
	source, _ := cmd.Flags().GetString("source")
	outPath, _ := cmd.Flags().GetString("output")
	outDir, _ := cmd.Flags().GetString("outdir")

	result, err := convert.ConvertPage(context.Background(), args[0], convert.Options{
		Config:  cfg,
		DocType: types.DocType(docType),
		Title:   title,
		Author:  author,
		Source:  source,
		OutPath: outPath,
		OutDir:  outDir,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "converted %s (%d paragraphs) -> %s\n", result.Title, result.Paragraphs, result.OutPath)
	return nil
}
