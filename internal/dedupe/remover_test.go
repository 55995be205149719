package dedupe

import (
	"strings"
	"testing"
)

func TestRemoveMatches_RemovesWholeLines(t *testing.T) {
	detector := testDetector()

	document := "# Setup Guide\n\nbody text\nmore body"

	matches := detector.Detect("Setup Guide", document, SensitivityNormal)
	result := detector.RemoveMatches(document, matches)

	expected := "\nbody text\nmore body"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestRemoveMatches_NoMatchesUnchanged(t *testing.T) {
	detector := testDetector()

	document := "body text\nmore body"

	if result := detector.RemoveMatches(document, nil); result != document {
		t.Errorf("expected unchanged document, got %q", result)
	}
}

func TestRemoveMatches_MultipleLinesDescending(t *testing.T) {
	detector := testDetector()

	// Title duplicated as both a header and an early plain line.
	document := "Setup Guide\n# Setup Guide\nbody text"

	matches := detector.Detect("Setup Guide", document, SensitivityNormal)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	result := detector.RemoveMatches(document, matches)

	if result != "body text" {
		t.Errorf("expected 'body text', got %q", result)
	}
}

func TestRemoveMatches_CollapsesLeadingBlanks(t *testing.T) {
	detector := testDetector()

	document := "# Setup Guide\n\n\n\nbody text"

	matches := detector.Detect("Setup Guide", document, SensitivityNormal)
	result := detector.RemoveMatches(document, matches)

	// The four leading blank lines left behind collapse to the configured
	// maximum of two.
	if !strings.HasSuffix(result, "body text") {
		t.Fatalf("body text lost: %q", result)
	}

	leading := 0
	for _, line := range strings.Split(result, "\n") {
		if strings.TrimSpace(line) != "" {
			break
		}
		leading++
	}
	if leading > 2 {
		t.Errorf("expected at most 2 leading blank lines, got %d", leading)
	}
}

func TestRemoveMatches_NeverEmptiesDocument(t *testing.T) {
	detector := testDetector()

	document := "# Setup Guide"

	matches := detector.Detect("Setup Guide", document, SensitivityNormal)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	result := detector.RemoveMatches(document, matches)

	if result != document {
		t.Errorf("removal emptying the document must be aborted, got %q", result)
	}
}

func TestRemoveMatches_DuplicateLineNumbersRemovedOnce(t *testing.T) {
	detector := testDetector()

	document := "# Setup Guide\nbody text\nmore body"

	matches := []Match{
		{LineNumber: 1, Line: "# Setup Guide"},
		{LineNumber: 1, Line: "# Setup Guide"},
	}

	result := detector.RemoveMatches(document, matches)

	if result != "body text\nmore body" {
		t.Errorf("expected one line removed, got %q", result)
	}
}

func TestRemoveMatches_OutOfRangeIgnored(t *testing.T) {
	detector := testDetector()

	document := "body text"

	matches := []Match{{LineNumber: 99, Line: "ghost"}}

	if result := detector.RemoveMatches(document, matches); result != document {
		t.Errorf("expected unchanged document, got %q", result)
	}
}
