package titlegen

import (
	"strings"
	"unicode"

	"github.com/notesmith/autotitle/internal/config"
)

// forbiddenChars are the filename characters rejected by common filesystems.
const forbiddenChars = `<>:"/\|?*`

// fallbackTitle substitutes for titles that sanitize down to nothing.
const fallbackTitle = "Untitled"

// PostProcess applies the configured case and character rules, then
// hard-truncates to the title length budget.
func PostProcess(title string, cfg config.GenerationConfig) string {
	if cfg.LowercaseTitles {
		title = strings.ToLower(title)
	}

	if cfg.StripForbiddenChars {
		title = SanitizeFilename(title)
	} else {
		title = strings.TrimSpace(title)
	}

	return TruncateTitle(title, cfg.MaxTitleLength)
}

// SanitizeFilename removes control characters and filesystem-forbidden
// characters, collapses whitespace runs to single spaces, and trims leading
// and trailing spaces and dots. An input that sanitizes to nothing becomes
// "Untitled". Idempotent.
func SanitizeFilename(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if unicode.IsControl(r) || strings.ContainsRune(forbiddenChars, r) {
			continue
		}
		b.WriteRune(r)
	}

	sanitized := strings.Join(strings.Fields(b.String()), " ")
	sanitized = strings.Trim(sanitized, " .")

	if sanitized == "" {
		return fallbackTitle
	}

	return sanitized
}

// TruncateTitle cuts title to at most maxLength runes, preferring the last
// space at or before the limit and falling back to a hard character cut when
// no space exists before it. Titles within the budget are returned unchanged.
func TruncateTitle(title string, maxLength int) string {
	runes := []rune(title)
	if len(runes) <= maxLength {
		return title
	}

	cut := runes[:maxLength]

	lastSpace := -1
	for i, r := range cut {
		if r == ' ' {
			lastSpace = i
		}
	}

	if lastSpace > 0 {
		return strings.TrimRight(string(cut[:lastSpace]), " ")
	}

	return string(cut)
}
