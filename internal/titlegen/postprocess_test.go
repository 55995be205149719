package titlegen

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain title unchanged", "Meeting Notes", "Meeting Notes"},
		{"forbidden characters removed", `Setup: a/b\c <guide>?`, "Setup abc guide"},
		{"control characters removed", "Line\x00One\x07", "LineOne"},
		{"whitespace collapsed", "  Weekly   Report \t 2026 ", "Weekly Report 2026"},
		{"leading and trailing dots trimmed", "...config backup...", "config backup"},
		{"everything stripped becomes fallback", `<>:"/\|?*`, "Untitled"},
		{"empty input becomes fallback", "", "Untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeFilename_Idempotent(t *testing.T) {
	inputs := []string{"Meeting Notes", `a/b:c`, "...dots...", "", "Untitled"}

	for _, input := range inputs {
		once := SanitizeFilename(input)
		twice := SanitizeFilename(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{"within budget unchanged", "Short Title", 20, "Short Title"},
		{"exactly at budget unchanged", "abcde", 5, "abcde"},
		{"cuts at word boundary", "Server Setup Guide", 13, "Server Setup"},
		{"hard cut without spaces", "Supercalifragilistic", 8, "Supercal"},
		{"no trailing space after cut", "one two three", 8, "one two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateTitle(tt.input, tt.maxLength); got != tt.expected {
				t.Errorf("TruncateTitle(%q, %d) = %q, expected %q", tt.input, tt.maxLength, got, tt.expected)
			}
		})
	}
}

func TestPostProcess_LowercaseFlag(t *testing.T) {
	cfg := testConfig()
	cfg.LowercaseTitles = true

	if got := PostProcess("Meeting Notes", cfg); got != "meeting notes" {
		t.Errorf("expected 'meeting notes', got '%s'", got)
	}
}

func TestPostProcess_SanitizeDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.StripForbiddenChars = false

	if got := PostProcess(" a/b notes ", cfg); got != "a/b notes" {
		t.Errorf("expected 'a/b notes', got '%s'", got)
	}
}
