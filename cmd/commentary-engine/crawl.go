// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/commentary-engine/internal/crawl"
	"github.com/pdiddy/commentary-engine/pkg/types"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <index-url>",
	Short: "Convert every article linked from an index page",
	Long: `Crawl scans an index page for article links and converts each one into
a CPF file in the output directory. Links to PDF files are not converted;
their URLs are collected into pdf-links.txt for manual handling.

With --all-pages the crawler follows ?page=N pagination discovered on the
index page. Fetches are rate limited by --delay.`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().String("type", "article", "document type for converted pages: book or article")
	crawlCmd.Flags().String("fetch", "auto", "fetch strategy: auto, http, or browser")
	crawlCmd.Flags().String("engine", "auto", "extraction engine: auto, readability, dom, or markdown")
	crawlCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	crawlCmd.Flags().Int("min-para-chars", 0, "drop paragraphs shorter than this (default 20)")
	crawlCmd.Flags().String("outdir", "corpus", "output directory for CPF files")
	crawlCmd.Flags().Duration("delay", time.Second, "minimum spacing between page fetches")
	crawlCmd.Flags().Bool("same-domain", true, "only follow links on the index page's host")
	crawlCmd.Flags().Bool("all-pages", false, "follow ?page=N pagination on the index page")
	crawlCmd.Flags().Int("limit", 0, "maximum pages to convert (0 = no limit)")
	crawlCmd.Flags().Int("max-pages", 0, "maximum pagination pages to scan (default 50)")
	crawlCmd.Flags().String("title-prefix", "", "prefix for converted document titles")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	convertCfg, err := convertConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	docType, _ := cmd.Flags().GetString("type")
	outDir, _ := cmd.Flags().GetString("outdir")
	delay, _ := cmd.Flags().GetDuration("delay")
	sameDomain, _ := cmd.Flags().GetBool("same-domain")
	allPages, _ := cmd.Flags().GetBool("all-pages")
	limit, _ := cmd.Flags().GetInt("limit")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	titlePrefix, _ := cmd.Flags().GetString("title-prefix")

	cfg := types.CrawlConfig{
		Convert:    convertCfg,
		OutDir:     outDir,
		Delay:      delay,
		SameDomain: sameDomain,
		AllPages:   allPages,
		Limit:      limit,
	}

	summary, err := crawl.Crawl(context.Background(), args[0], crawl.Options{
		Config:      cfg,
		DocType:     types.DocType(docType),
		TitlePrefix: titlePrefix,
		MaxPages:    maxPages,
	}, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d page(s) failed conversion", summary.Failed)
	}
	return nil
}
