// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import (
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello, World! 2026", "hello-world-2026"},
		{"  leading and trailing  ", "leading-and-trailing"},
		{"Multiple---Hyphens", "multiple-hyphens"},
		{"UPPER case", "upper-case"},
		{"emoji 🔥 stripped", "emoji-stripped"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Make(tt.in); got != tt.want {
			t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMakeTruncatesOnWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 30)
	got := Make(long)
	if len(got) > 60 {
		t.Fatalf("slug length = %d, want <= 60", len(got))
	}
	if strings.HasSuffix(got, "-") || strings.Contains(got, "wor-") {
		t.Errorf("truncation cut mid-word: %q", got)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("Big AI Story", "card-A"); got != "big-ai-story" {
		t.Errorf("Filename = %q", got)
	}
	// Title that slugifies to nothing falls back.
	if got := Filename("🔥🔥🔥", "card-A"); got != "card-a" {
		t.Errorf("fallback = %q", got)
	}
}
