package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CollapseSpace trims the string and replaces every run of whitespace
// (including non-breaking spaces) with a single space.
func CollapseSpace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeLabel case-folds, trims and collapses internal whitespace, the
// form labels are compared in.
func NormalizeLabel(label string) string {
	// a Caser is stateful, so one is made per call.
	return CollapseSpace(cases.Fold().String(label))
}
