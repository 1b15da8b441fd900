// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"cardstudio/internal/card"
)

// Rewrite is the AI's output: one title/subtitle pair per visual variant
// plus the shared caption for the caption card.
type Rewrite struct {
	Variants map[card.ID]card.VariantCopy
	Caption  string
}

// rewriteSystemPrompt fixes the editor persona and the strict JSON
// output contract. Style rules follow the studio's house voice: short,
// active, second person, no hashtags, no cliches.
const rewriteSystemPrompt = `You are an expert social media editor. ` +
	`You rewrite news articles into three distinct social card variants.

For each variant produce:
- "title": MAX 6 words, punchy.
- "subtitle": MAX 12 words, engaging.

Also produce one "common_caption" shared by all variants, in this exact
bracketed structure (one line each):
[HOOK - curiosity driven, under 8 words]
[SET THE SCENE - factual, 2-3 sentences]
[ADD DEPTH - context and why it matters, 2-3 sentences]
[IMPACT - 1 sentence on why it matters to the reader]
[QUESTION - engaging question]
[Source: the source name]

Style rules: clear language, active voice, address the reader as "you",
no hashtags in main text, no cliches (innovative, disruptive).

Output RAW JSON ONLY in this shape:
{"variants": {"A": {"title": "...", "subtitle": "..."},
              "B": {"title": "...", "subtitle": "..."},
              "C": {"title": "...", "subtitle": "..."}},
 "common_caption": "..."}`

// excerptLimit caps how much article body is sent to the model.
const excerptLimit = 1500

// Article is the scraped material handed to the rewriter.
type Article struct {
	Title  string
	Text   string
	Source string // bare source host, e.g. "reuters.com"
}

// BuildRewritePrompt renders the user prompt for an article.
func BuildRewritePrompt(a Article) string {
	text := a.Text
	if len(text) > excerptLimit {
		cut := excerptLimit
		// Never split a multi-byte rune mid-sequence.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return fmt.Sprintf("SOURCE ARTICLE: %q\nSUMMARY: %q\nSOURCE NAME: %q",
		a.Title, text, a.Source)
}

// RewriteArticle asks the active provider for the three card variants.
// The raw response is parsed strictly; a malformed response is an error
// the caller degrades from (it falls back to the scraped copy).
func (r *Registry) RewriteArticle(ctx context.Context, a Article) (*Rewrite, error) {
	raw, err := r.Generate(ctx, rewriteSystemPrompt, BuildRewritePrompt(a))
	if err != nil {
		return nil, err
	}
	return ParseRewrite(raw)
}

// rewriteEnvelope mirrors the JSON contract of rewriteSystemPrompt.
type rewriteEnvelope struct {
	Variants      map[string]card.VariantCopy `json:"variants"`
	CommonCaption string                      `json:"common_caption"`
}

// ParseRewrite decodes a model response into a Rewrite. Code fences are
// tolerated (some models wrap JSON despite instructions); variant keys
// are matched case-insensitively; captions are cleaned of instruction
// brackets.
func ParseRewrite(raw string) (*Rewrite, error) {
	raw = stripCodeFence(raw)

	var env rewriteEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("ai: parse rewrite response: %w", err)
	}
	if len(env.Variants) == 0 {
		return nil, fmt.Errorf("ai: rewrite response has no variants")
	}

	out := &Rewrite{
		Variants: make(map[card.ID]card.VariantCopy),
		Caption:  CleanCaption(env.CommonCaption),
	}
	for key, v := range env.Variants {
		id := card.ID(strings.ToUpper(strings.TrimSpace(key)))
		if !id.Valid() {
			continue
		}
		if strings.TrimSpace(v.Title) == "" {
			continue
		}
		out.Variants[id] = v
	}

	if len(out.Variants) == 0 {
		return nil, fmt.Errorf("ai: rewrite response has no usable variants")
	}
	return out, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// CleanCaption strips the bracketed instruction labels from a raw
// caption, keeping only the [Source: ...] line (unbracketed) and the
// actual copy. Lines are re-joined with blank lines between them.
func CleanCaption(raw string) string {
	var clean []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.Contains(line, "]") {
			if strings.HasPrefix(strings.ToLower(line), "[source") {
				clean = append(clean, strings.Trim(line, "[]"))
			}
			// [HOOK], [IMPACT] and friends are instructions, not copy.
			continue
		}
		clean = append(clean, line)
	}
	return strings.Join(clean, "\n\n")
}
