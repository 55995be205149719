// Package dedupe decides whether a generated title already appears verbatim
// or near-verbatim inside a document body, and removes the duplicate lines
// without corrupting document structure.
package dedupe

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/notesmith/autotitle/internal/config"
)

// Sensitivity names a similarity threshold tier.
type Sensitivity string

const (
	SensitivityStrict Sensitivity = "strict"
	SensitivityNormal Sensitivity = "normal"
	SensitivityLoose  Sensitivity = "loose"
)

// Match describes one document line judged to duplicate the title. Matches
// are transient per detection call and never persisted.
type Match struct {
	// Start and End are byte offsets of the line in the full document.
	Start int `json:"start"`
	End   int `json:"end"`
	// Line is the matched line text, markers included.
	Line string `json:"line"`
	// Score is the similarity in [0,1].
	Score float64 `json:"score"`
	// LineNumber is 1-based.
	LineNumber int `json:"line_number"`
	// IsHeader is true for markdown header lines; HeaderLevel is 1-6 for
	// headers and 0 otherwise.
	IsHeader    bool `json:"is_header"`
	HeaderLevel int  `json:"header_level"`
}

var headerPattern = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)

// Detector finds near-duplicate title lines using Levenshtein similarity
// over punctuation-stripped, case-folded text.
type Detector struct {
	cfg config.DuplicateConfig
}

// NewDetector creates a detector with the given tuning.
func NewDetector(cfg config.DuplicateConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Threshold maps a sensitivity tier to its similarity threshold. Unknown
// tiers fall back to normal.
func (d *Detector) Threshold(s Sensitivity) float64 {
	switch s {
	case SensitivityStrict:
		return d.cfg.StrictThreshold
	case SensitivityLoose:
		return d.cfg.LooseThreshold
	default:
		return d.cfg.NormalThreshold
	}
}

// Detect scans every line of the document for duplicates of title. Markdown
// headers are candidates anywhere in the document; plain-text lines only
// within the first few lines, since a duplicate deep in the body is not a
// restatement of the title.
func (d *Detector) Detect(title, document string, sensitivity Sensitivity) []Match {
	threshold := d.Threshold(sensitivity)

	var matches []Match

	offset := 0
	for i, line := range strings.Split(document, "\n") {
		lineNumber := i + 1
		start := offset
		offset += len(line) + 1

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		var (
			candidate   string
			isHeader    bool
			headerLevel int
		)

		if m := headerPattern.FindStringSubmatch(trimmed); m != nil {
			candidate = m[2]
			isHeader = true
			headerLevel = len(m[1])
		} else if lineNumber <= d.cfg.PlainTextWindow {
			candidate = trimmed
		} else {
			continue
		}

		score := Similarity(title, candidate)
		if score < threshold {
			continue
		}

		matches = append(matches, Match{
			Start:       start,
			End:         start + len(line),
			Line:        line,
			Score:       score,
			LineNumber:  lineNumber,
			IsHeader:    isHeader,
			HeaderLevel: headerLevel,
		})
	}

	return matches
}

// IsExact reports whether a match clears the near-exact threshold, which is
// stricter than normal sensitivity. Callers use it to offer "remove only
// near-exact duplicates" as a removal policy.
func (d *Detector) IsExact(m Match) bool {
	return m.Score >= d.cfg.ExactMatchThreshold
}

// ExactOnly filters matches down to near-exact ones.
func (d *Detector) ExactOnly(matches []Match) []Match {
	var exact []Match
	for _, m := range matches {
		if d.IsExact(m) {
			exact = append(exact, m)
		}
	}
	return exact
}

// Similarity computes 1 - editDistance/max(len) over normalized strings.
// Identical normalized strings score 1; either-empty pairs score 0.
func Similarity(a, b string) float64 {
	na := normalizeForComparison(a)
	nb := normalizeForComparison(b)

	if na == "" || nb == "" {
		return 0
	}

	if na == nb {
		return 1
	}

	distance := levenshtein.ComputeDistance(na, nb)

	maxLen := utf8.RuneCountInString(na)
	if l := utf8.RuneCountInString(nb); l > maxLen {
		maxLen = l
	}

	return 1 - float64(distance)/float64(maxLen)
}

// normalizeForComparison lowercases, strips punctuation, and collapses
// whitespace.
func normalizeForComparison(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
