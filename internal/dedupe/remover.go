package dedupe

import (
	"sort"
	"strings"
)

// RemoveMatches deletes the matched lines from the document. Whole lines are
// removed even when only part of the line matched; matches are processed in
// descending line-number order so earlier indices stay valid. A run of blank
// lines left at the top of the document is collapsed to the configured
// maximum. If removal would leave the document empty, it is aborted and the
// original text is returned unchanged.
func (d *Detector) RemoveMatches(document string, matches []Match) string {
	if len(matches) == 0 {
		return document
	}

	lines := strings.Split(document, "\n")

	ordered := make([]Match, len(matches))
	copy(ordered, matches)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].LineNumber > ordered[j].LineNumber
	})

	lastRemoved := 0
	for _, m := range ordered {
		if m.LineNumber < 1 || m.LineNumber > len(lines) {
			continue
		}
		if m.LineNumber == lastRemoved {
			continue
		}
		lines = append(lines[:m.LineNumber-1], lines[m.LineNumber:]...)
		lastRemoved = m.LineNumber
	}

	lines = d.collapseLeadingBlanks(lines)

	result := strings.Join(lines, "\n")
	if strings.TrimSpace(result) == "" {
		return document
	}

	return result
}

// collapseLeadingBlanks trims a leading run of blank lines down to the
// configured maximum.
func (d *Detector) collapseLeadingBlanks(lines []string) []string {
	blanks := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			break
		}
		blanks++
	}

	if blanks <= d.cfg.MaxLeadingBlankLines {
		return lines
	}

	return lines[blanks-d.cfg.MaxLeadingBlankLines:]
}
