// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai distills verse-focused commentary from the corpus: for
// each verse range the mention pass found, it gathers the paragraphs
// that cite the verse, pairs them with the verse text, and asks the
// model to judge and summarize the commentary.
package ai

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/pdiddy/commentary-engine/internal/bible"
	"github.com/pdiddy/commentary-engine/internal/store"
	"github.com/pdiddy/commentary-engine/pkg/types"
)

// Request is the input for one verse extraction call.
type Request struct {
	VerseRef string
	TextEN   string
	TextZH   string
	Evidence []store.Evidence

	IncludeChinese bool
}

// Response is the model's structured judgment for one verse.
type Response struct {
	VerseRef      string                    `json:"verse_ref"`
	HasCommentary bool                      `json:"has_commentary"`
	SummaryEN     string                    `json:"summary_en"`
	SummaryZH     string                    `json:"summary_zh"`
	BulletsEN     []string                  `json:"bullet_points_en"`
	BulletsZH     []string                  `json:"bullet_points_zh"`
	CitedParaIDs  []int64                   `json:"cited_para_ids"`
	Citations     []types.ParagraphCitation `json:"citations"`
	Notes         string                    `json:"notes"`

	// Raw is the unparsed model reply, kept for audit.
	Raw string `json:"-"`
}

// Backend abstracts the model API so tests can supply a mock.
type Backend interface {
	ExtractCommentary(ctx context.Context, req Request) (Response, error)
}

// Options controls a batch extraction run.
type Options struct {
	// Limit caps target verses processed (0 = all).
	Limit int

	// Resume skips verses already extracted for (model, prompt version).
	Resume bool
}

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted      int
	SkippedDone    int
	SkippedNoVerse int
	Failed         int
}

// Total returns the number of verses processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.SkippedDone + s.SkippedNoVerse + s.Failed
}

// HasFailures reports whether any extraction failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Verse text versions paired in prompts.
const (
	versionEN = "KJV"
	versionZH = "CUVS"
)

// ExtractAll walks every distinct verse range in verse_mentions and
// stores one extraction per verse. Failed model calls are recorded
// with status "error" so a later run with Resume does not retry them
// silently.
func ExtractAll(ctx context.Context, backend Backend, corpus *store.Store, b *bible.Store, cfg types.AIConfig, opts Options, w io.Writer) (BatchSummary, error) {
	var summary BatchSummary

	if err := corpus.EnsureAITables(ctx); err != nil {
		return summary, err
	}

	targets, err := corpus.TargetVerses(ctx)
	if err != nil {
		return summary, err
	}
	if opts.Limit > 0 && len(targets) > opts.Limit {
		targets = targets[:opts.Limit]
	}
	if len(targets) == 0 {
		fmt.Fprintln(w, "No target verses found. Run the mentions pass first.")
		return summary, nil
	}

	promptVersion := cfg.PromptVersion
	if promptVersion == "" {
		promptVersion = "v1"
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	maxParas := cfg.MaxParasPerVerse
	if maxParas <= 0 {
		maxParas = 10
	}

	for i, key := range targets {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if opts.Resume {
			done, err := corpus.AlreadyExtracted(ctx, cfg.Model, promptVersion, key)
			if err != nil {
				return summary, err
			}
			if done {
				summary.SkippedDone++
				continue
			}
		}

		ref := key.Ref()

		textEN, err := b.RangeText(ctx, versionEN, key.Book, key.Chapter, key.VerseStart, key.VerseEnd)
		if err != nil {
			return summary, err
		}
		textZH, err := b.RangeText(ctx, versionZH, key.Book, key.Chapter, key.VerseStart, key.VerseEnd)
		if err != nil {
			return summary, err
		}

		if textEN == "" && textZH == "" {
			rec := emptyRecord(cfg.Model, promptVersion, key, types.ExtractionNoVerse, "")
			if err := corpus.SaveExtraction(ctx, rec); err != nil {
				return summary, err
			}
			summary.SkippedNoVerse++
			fmt.Fprintf(w, "[%d/%d] no verse text %s\n", i+1, len(targets), ref)
			continue
		}

		evidence, err := corpus.EvidenceParagraphs(ctx, key, maxParas)
		if err != nil {
			return summary, err
		}
		if len(evidence) == 0 {
			rec := emptyRecord(cfg.Model, promptVersion, key, types.ExtractionOK, "")
			rec.RawJSON = `{"notes": "No evidence paragraphs found for this verse reference."}`
			if err := corpus.SaveExtraction(ctx, rec); err != nil {
				return summary, err
			}
			summary.Extracted++
			continue
		}

		resp, err := callWithRetry(ctx, backend, Request{
			VerseRef:       ref,
			TextEN:         textEN,
			TextZH:         textZH,
			Evidence:       evidence,
			IncludeChinese: cfg.IncludeChinese,
		}, maxRetries)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			rec := emptyRecord(cfg.Model, promptVersion, key, types.ExtractionError, err.Error())
			if err := corpus.SaveExtraction(ctx, rec); err != nil {
				return summary, err
			}
			summary.Failed++
			fmt.Fprintf(w, "[%d/%d] FAILED %s: %v\n", i+1, len(targets), ref, err)
			continue
		}

		rec := &types.AIExtraction{
			CreatedAt:     time.Now().Format(time.RFC3339),
			Model:         cfg.Model,
			PromptVersion: promptVersion,
			VerseKey:      key,
			HasCommentary: resp.HasCommentary,
			SummaryEN:     resp.SummaryEN,
			SummaryZH:     resp.SummaryZH,
			BulletsEN:     resp.BulletsEN,
			BulletsZH:     resp.BulletsZH,
			Citations:     validCitations(resp.Citations, evidence),
			RawJSON:       resp.Raw,
			Status:        types.ExtractionOK,
		}
		if err := corpus.SaveExtraction(ctx, rec); err != nil {
			return summary, err
		}
		summary.Extracted++
		fmt.Fprintf(w, "[%d/%d] ok %s (paras=%d)\n", i+1, len(targets), ref, len(evidence))

		if cfg.Delay > 0 && i < len(targets)-1 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(cfg.Delay):
			}
		}
	}

	fmt.Fprintf(w, "\nextracted: %d, already done: %d, no verse text: %d, failed: %d\n",
		summary.Extracted, summary.SkippedDone, summary.SkippedNoVerse, summary.Failed)
	return summary, nil
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

func callWithRetry(ctx context.Context, backend Backend, req Request, maxRetries int) (Response, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return Response{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := backend.ExtractCommentary(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return Response{}, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// validCitations keeps only citations referring to paragraphs that were
// actually offered as evidence. Models occasionally invent IDs.
func validCitations(citations []types.ParagraphCitation, evidence []store.Evidence) []types.ParagraphCitation {
	offered := make(map[int64]bool, len(evidence))
	for _, e := range evidence {
		offered[e.ParaID] = true
	}
	var out []types.ParagraphCitation
	for _, c := range citations {
		if offered[c.ParaID] {
			out = append(out, c)
		}
	}
	return out
}

func emptyRecord(model, promptVersion string, key types.VerseKey, status types.ExtractionStatus, errMsg string) *types.AIExtraction {
	return &types.AIExtraction{
		CreatedAt:     time.Now().Format(time.RFC3339),
		Model:         model,
		PromptVersion: promptVersion,
		VerseKey:      key,
		BulletsEN:     []string{},
		BulletsZH:     []string{},
		RawJSON:       "{}",
		Status:        status,
		Error:         errMsg,
	}
}
