// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	// Defaults to a desktop browser string: several commentary sites
	// refuse the default Go client identity.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchStrategy selects how page HTML is retrieved.
type FetchStrategy string

const (
	// FetchAuto tries plain HTTP first and falls back to the headless
	// browser when the site blocks the request (401/403/429).
	FetchAuto FetchStrategy = "auto"
	// FetchHTTP uses net/http only.
	FetchHTTP FetchStrategy = "http"
	// FetchBrowser drives a headless Chromium via go-rod, for
	// JavaScript-rendered or bot-protected sites.
	FetchBrowser FetchStrategy = "browser"
)

// ValidFetchStrategy reports whether s is an accepted fetch strategy.
func ValidFetchStrategy(s FetchStrategy) bool {
	return s == FetchAuto || s == FetchHTTP || s == FetchBrowser
}

// ExtractEngine selects the HTML main-content extraction engine.
type ExtractEngine string

const (
	// EngineAuto tries readability first and falls back to the DOM
	// heuristic when readability yields no text.
	EngineAuto ExtractEngine = "auto"
	// EngineReadability uses go-readability article extraction.
	EngineReadability ExtractEngine = "readability"
	// EngineDOM strips noise elements and takes the main container text.
	EngineDOM ExtractEngine = "dom"
	// EngineMarkdown converts the readability content fragment to
	// Markdown before paragraph splitting, preserving emphasis and lists
	// as inline markers.
	EngineMarkdown ExtractEngine = "markdown"
)

// ValidExtractEngine reports whether e is an accepted extraction engine.
func ValidExtractEngine(e ExtractEngine) bool {
	switch e {
	case EngineAuto, EngineReadability, EngineDOM, EngineMarkdown:
		return true
	}
	return false
}

// DefaultMinParaChars is the minimum paragraph length kept by the
// conversion stage when no override is given.
const DefaultMinParaChars = 20

// ConvertConfig holds settings for the webpage-to-CPF conversion stage.
type ConvertConfig struct {
	HTTPConfig `yaml:",inline"`

	Fetch  FetchStrategy `json:"fetch" yaml:"fetch"`
	Engine ExtractEngine `json:"engine" yaml:"engine"`

	// MinParaChars drops paragraphs shorter than this many characters
	// after whitespace normalization (default 20).
	MinParaChars int `json:"min_para_chars" yaml:"min_para_chars"`
}

// CrawlConfig holds settings for batch conversion from an index page.
type CrawlConfig struct {
	Convert ConvertConfig `yaml:",inline"`

	// OutDir receives the generated CPF files.
	OutDir string `json:"outdir" yaml:"outdir"`

	// Delay is the minimum spacing between page fetches (default 1s).
	Delay time.Duration `json:"delay" yaml:"delay"`

	// SameDomain keeps only links on the index page's host.
	SameDomain bool `json:"same_domain" yaml:"same_domain"`

	// AllPages walks ?page=N pagination discovered on the index page.
	AllPages bool `json:"all_pages" yaml:"all_pages"`

	// Limit caps the number of pages converted (0 = no limit).
	Limit int `json:"limit" yaml:"limit"`
}

// CorpusConfig holds settings for the commentary corpus database.
type CorpusConfig struct {
	// DBPath is the commentary SQLite database file.
	DBPath string `json:"db" yaml:"db"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AIConfig holds settings for the AI commentary extraction stage.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// PromptVersion tags stored extractions so prompt changes can be
	// re-run side by side (default "v1").
	PromptVersion string `json:"prompt_version" yaml:"prompt_version"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxParasPerVerse caps the evidence paragraphs sent per verse (default 10).
	MaxParasPerVerse int `json:"max_paras_per_verse" yaml:"max_paras_per_verse"`

	// IncludeChinese asks the model for Chinese summaries alongside English.
	IncludeChinese bool `json:"include_chinese" yaml:"include_chinese"`

	// Delay is the pause between consecutive API calls.
	Delay time.Duration `json:"delay" yaml:"delay"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Convert ConvertConfig `json:"convert" yaml:"convert"`
	Crawl   CrawlConfig   `json:"crawl" yaml:"crawl"`
	Corpus  CorpusConfig  `json:"corpus" yaml:"corpus"`
	AI      AIConfig      `json:"ai" yaml:"ai"`
}
