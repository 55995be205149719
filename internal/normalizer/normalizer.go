// Package normalizer extracts a single clean title line from raw language
// model output. Models preface answers with reasoning, wrap them in thinking
// tags, quote them, prefix them with labels, or spread them across several
// lines of chatter; Normalize tolerates all of that deterministically, with
// no I/O and no errors. An empty result is a valid output the caller treats
// as a generation failure.
package normalizer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxUnwrapDepth bounds recursion on nested thinking wrappers.
const maxUnwrapDepth = 2

// thinkingTags are delimiter names models use to fence off reasoning.
var thinkingTags = []string{"think", "thinking", "thought", "reasoning", "reflection"}

var (
	wholeWrapPatterns    []*regexp.Regexp
	embeddedWrapPatterns []*regexp.Regexp
)

func init() {
	for _, tag := range thinkingTags {
		wholeWrapPatterns = append(wholeWrapPatterns,
			regexp.MustCompile(`(?is)^<`+tag+`>(.*)</`+tag+`>$`))
		embeddedWrapPatterns = append(embeddedWrapPatterns,
			regexp.MustCompile(`(?is)<`+tag+`>.*?</`+tag+`>`))
	}
}

// fillerPrefixes are conversational lead-ins that never start a real title.
// Label prefixes are included; when a labeled line ends up selected via the
// fallback path, stripLabel removes the label itself.
var fillerPrefixes = []string{
	"let me",
	"based on",
	"here's",
	"here is",
	"i would",
	"i'll",
	"i will",
	"i think",
	"the user wants",
	"the user is",
	"okay",
	"ok,",
	"sure",
	"first,",
	"looking at",
	"to summarize",
	"in summary",
	"this note",
	"the note",
	"we need",
	"note:",
	"title:",
	"a title:",
	"the title",
	"generated title:",
	"suggested title:",
	"possible title",
}

// fragmentMarkers are residues left when a filler phrase was cut mid-word,
// signalling the selected line is a truncated lead-in rather than a title.
var fragmentMarkers = []string{
	"me think",
	"s the title",
	"on the content",
	"at the title",
}

var (
	labelPattern = regexp.MustCompile(`(?i)^(?:here(?:'s| is) the title|generated title|suggested title|the title|a title|title)\s*[:\-]\s*`)

	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	bracketedPattern     = regexp.MustCompile(`\[[^\]]*\]`)

	quotedPattern      = regexp.MustCompile(`"([^"\n]{5,})"`)
	curlyQuotedPattern = regexp.MustCompile(`“([^”\n]{5,})”`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

const quoteCutset = "\"'`“”‘’«»"

// Normalize extracts the most plausible single-line title from a raw model
// completion.
func Normalize(raw string) string {
	content := unwrapThinking(strings.TrimSpace(raw), 0)
	content = stripEmbeddedThinking(content)

	lines := nonEmptyLines(content)
	if len(lines) == 0 {
		return ""
	}

	selected := ""
	for _, line := range lines {
		if !isFiller(line) {
			selected = line
			break
		}
	}
	if selected == "" {
		// Every line is filler; fall back to the first line verbatim.
		selected = lines[0]
	}

	title := cleanLine(selected)

	if utf8.RuneCountInString(title) < 3 || startsWithFragment(title) {
		if recovered := recoverTitle(raw); recovered != "" {
			title = recovered
		}
	}

	return strings.TrimSpace(title)
}

// unwrapThinking removes a thinking delimiter pair that wraps the entire
// string, recursing at most maxUnwrapDepth times for nested wrappers.
func unwrapThinking(s string, depth int) string {
	if depth >= maxUnwrapDepth {
		return s
	}

	for i, pattern := range wholeWrapPatterns {
		match := pattern.FindStringSubmatch(s)
		if match == nil {
			continue
		}

		// The greedy anchored pattern also matches two separate blocks that
		// happen to start and end the string. Only unwrap when a single
		// delimiter pair spans the whole string; otherwise the blocks are
		// embedded regions and get stripped below.
		if span := embeddedWrapPatterns[i].FindStringIndex(s); span == nil || span[0] != 0 || span[1] != len(s) {
			continue
		}

		return unwrapThinking(strings.TrimSpace(match[1]), depth+1)
	}

	return s
}

// stripEmbeddedThinking removes thinking-delimited regions that appear
// mid-string rather than wrapping the whole response.
func stripEmbeddedThinking(s string) string {
	for _, pattern := range embeddedWrapPatterns {
		s = pattern.ReplaceAllString(s, " ")
	}
	return s
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func isFiller(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, prefix := range fillerPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func startsWithFragment(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range fragmentMarkers {
		if strings.HasPrefix(lower, marker) {
			return true
		}
	}
	return false
}

// cleanLine strips a leading label, parenthetical and bracketed asides,
// wrapping quotes, and trailing runs of dashes and spaces.
func cleanLine(line string) string {
	line = labelPattern.ReplaceAllString(line, "")
	line = parentheticalPattern.ReplaceAllString(line, " ")
	line = bracketedPattern.ReplaceAllString(line, " ")
	line = strings.TrimSpace(line)
	line = strings.Trim(line, quoteCutset)
	line = whitespacePattern.ReplaceAllString(line, " ")
	line = strings.TrimRight(line, "-–— ")
	return strings.TrimSpace(line)
}

// recoverTitle salvages a title from the original raw response when line
// selection produced a fragment: first quoted substring of at least 5
// characters, then the first plausible sentence, then the first words of the
// response.
func recoverTitle(raw string) string {
	if match := quotedPattern.FindStringSubmatch(raw); match != nil {
		return strings.TrimSpace(match[1])
	}
	if match := curlyQuotedPattern.FindStringSubmatch(raw); match != nil {
		return strings.TrimSpace(match[1])
	}

	if sentence := firstPlausibleSentence(raw); sentence != "" {
		return sentence
	}

	return firstWords(raw, 8)
}

func firstPlausibleSentence(raw string) string {
	sentences := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	for _, sentence := range sentences {
		trimmed := strings.TrimSpace(sentence)
		length := utf8.RuneCountInString(trimmed)
		if length >= 5 && length <= 80 && !isFiller(trimmed) {
			return cleanLine(trimmed)
		}
	}

	return ""
}

// firstWords joins the first n whitespace-separated tokens longer than two
// characters with single spaces.
func firstWords(raw string, n int) string {
	var words []string
	for _, token := range strings.Fields(raw) {
		if utf8.RuneCountInString(token) > 2 {
			words = append(words, token)
			if len(words) == n {
				break
			}
		}
	}
	return strings.Join(words, " ")
}
