// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives filesystem- and URL-safe names from card titles,
// used for export download filenames and share links.
package slug

import (
	"regexp"
	"strings"
)

// maxLen bounds slugs so derived filenames stay manageable. Truncation
// happens on a hyphen so no word is cut mid-way.
const maxLen = 60

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Make creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Make(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > maxLen {
		result = result[:maxLen]
		if i := strings.LastIndexByte(result, '-'); i > 0 {
			result = result[:i]
		}
	}
	return result
}

// Filename slugifies title for use as a download filename, falling back
// when the title yields nothing usable (emoji-only, empty, punctuation).
func Filename(title, fallback string) string {
	if s := Make(title); s != "" {
		return s
	}
	return Make(fallback)
}
