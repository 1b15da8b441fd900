// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown handles the light Markdown that AI rewrite output
// carries in captions (emphasis, lists, links). The browser preview
// gets HTML; the rasterizer gets plain text with the markers stripped.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// md is the configured goldmark instance, reused across calls. Raw HTML
// is NOT passed through: captions come from LLM output and scraped
// articles, never from trusted authors.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// ToHTML converts caption Markdown into HTML for the browser preview.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Strip removes Markdown markup, returning the plain text the
// rasterizer draws. Block boundaries become blank lines, matching the
// paragraph spacing of the rendered caption.
func Strip(source string) string {
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	var blocks []string
	var cur strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if _, isBlock := n.(*ast.Paragraph); isBlock && cur.Len() > 0 {
				blocks = append(blocks, strings.TrimSpace(cur.String()))
				cur.Reset()
			}
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			cur.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				cur.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return source
	}
	if cur.Len() > 0 {
		blocks = append(blocks, strings.TrimSpace(cur.String()))
	}
	return strings.Join(blocks, "\n\n")
}
