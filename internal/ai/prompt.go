// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/template"
)

// commentaryPromptTmpl is the prompt sent to the Claude API for each
// target verse. The model judges whether the evidence paragraphs
// actually comment on the verse, then summarizes, citing paragraphs by
// their stable PARA_IDs only.
var commentaryPromptTmpl = template.Must(template.New("commentary").Parse(`You are extracting Bible-verse-focused commentary from theological writing.
Given a target verse reference and a set of paragraph excerpts, do BOTH:
1) Decide whether the excerpts actually comment on the target verse(s) (false positives are common).
2) If yes, summarize the key teaching points.

Hard rules:
- Only cite paragraphs using the provided PARA_IDs.
- If there is no real commentary on the verse, set has_commentary=false and keep summaries minimal.
{{if .IncludeChinese}}- If possible, provide a faithful Chinese summary (Simplified Chinese) in summary_zh and bullet_points_zh.
{{else}}- Set summary_zh="" and bullet_points_zh=[].
{{end}}
Respond with a single JSON object and no text outside it:
{"verse_ref": string, "has_commentary": boolean, "summary_en": string, "summary_zh": string, "bullet_points_en": [string], "bullet_points_zh": [string], "cited_para_ids": [integer], "citations": [{"para_id": integer, "reason": string}], "notes": string}

TARGET VERSE: {{.VerseRef}}

KJV:
{{.TextEN}}

CUVS (简体和合本):
{{.TextZH}}

EVIDENCE PARAGRAPHS:
{{range .Evidence}}[PARA_ID {{.ParaID}} | DOC {{.DocID}} | P{{printf "%06d" .PIndex}}] {{.DocTitle}}{{if .DocAuthor}} - {{.DocAuthor}}{{end}}
SOURCE: {{.DocSource}}
TEXT: {{.Text}}

{{end}}`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Claude Messages API to extract verse
// commentary from evidence paragraphs.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ExtractCommentary renders the prompt for one verse and parses the
// model's JSON reply.
func (c *ClaudeBackend) ExtractCommentary(ctx context.Context, req Request) (Response, error) {
	prompt, err := renderPrompt(req)
	if err != nil {
		return Response{}, fmt.Errorf("rendering prompt: %w", err)
	}

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 4096,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Response{}, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return Response{}, fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		var out Response
		if err := json.Unmarshal([]byte(block.Text), &out); err != nil {
			return Response{}, fmt.Errorf("parsing commentary JSON: %w", err)
		}
		out.Raw = block.Text
		return out, nil
	}

	return Response{}, fmt.Errorf("no text content in Claude API response")
}

func renderPrompt(req Request) (string, error) {
	var buf bytes.Buffer
	if err := commentaryPromptTmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
