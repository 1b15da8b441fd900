// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Validation limits for card and project fields.
const (
	maxURLLen     = 2_000
	maxTitleLen   = 300
	maxCaptionLen = 5_000
	maxDataURILen = 10 << 20
	maxProjectLen = 200
)

// validateArticleURL checks a submitted article URL and returns the
// first error found.
func validateArticleURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "URL is required."
	}
	if len(raw) > maxURLLen {
		return "URL is too long."
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "Enter a full http(s) article URL."
	}
	return ""
}

// validateText checks a card text field value.
func validateText(field, value string) string {
	switch field {
	case "caption":
		if utf8.RuneCountInString(value) > maxCaptionLen {
			return "Caption is too long (max 5,000 characters)."
		}
	default:
		if utf8.RuneCountInString(value) > maxTitleLen {
			return "Text is too long (max 300 characters)."
		}
	}
	return ""
}

// validatePhotoData checks an uploaded background data URI.
func validatePhotoData(data string) string {
	if !strings.HasPrefix(data, "data:image/") {
		return "Upload must be an image data URI."
	}
	if len(data) > maxDataURILen {
		return "Uploaded image is too large (max 10 MB)."
	}
	return ""
}

// validateProjectTitle checks a saved project's name.
func validateProjectTitle(title string) string {
	if utf8.RuneCountInString(title) > maxProjectLen {
		return "Project name is too long (max 200 characters)."
	}
	return ""
}
