// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	html, err := ToHTML("**bold** and _italic_")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<strong>bold</strong>") || !strings.Contains(html, "<em>italic</em>") {
		t.Errorf("html = %q", html)
	}
}

func TestToHTMLEscapesRawHTML(t *testing.T) {
	// Captions come from LLMs and scraped pages; script tags must never
	// survive into the preview.
	html, err := ToHTML(`hello <script>alert(1)</script>`)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("raw html passed through: %q", html)
	}
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"emphasis", "check **this** out", "check this out"},
		{"link keeps text", "see [the docs](https://example.com)", "see the docs"},
		{"plain text untouched", "no markup here", "no markup here"},
		{"paragraphs keep blank line", "first para\n\nsecond para", "first para\n\nsecond para"},
		{"soft breaks become spaces", "line one\nline two", "line one line two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Strip(tt.in); got != tt.want {
				t.Errorf("Strip(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
