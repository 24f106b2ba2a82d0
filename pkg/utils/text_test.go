package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"short", 200, "short"},
		{"exact", 5, "exact"},
		{"longer text", 6, "longer..."},
		{"anything", 0, "anything"},
		{"anything", -1, "anything"},
		{"", 10, ""},
		{"éééééééééé", 5, "ééééé..."},
		{"日本語のテキスト", 3, "日本語..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.s, tt.maxLen); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}

func TestTruncate_CountsRunesNotBytes(t *testing.T) {
	// 199 single-byte runes plus one two-byte rune: 200 characters in 201
	// bytes. A byte-offset cut at 200 would split the final rune.
	s := strings.Repeat("a", 199) + "é"
	got := Truncate(s, 200)
	if got != s {
		t.Errorf("Truncate = %q, want input unchanged", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("Truncate produced invalid UTF-8: %q", got)
	}

	got = Truncate(s+"x", 200)
	if !utf8.ValidString(got) {
		t.Errorf("Truncate produced invalid UTF-8: %q", got)
	}
	if want := s + "..."; got != want {
		t.Errorf("Truncate = %q, want %q", got, want)
	}
}
