// Package testhelper holds helpers shared by tests.
package testhelper

import (
	"regexp"
	"strings"
	"testing"
)

var (
	leadingSpaces = regexp.MustCompile(`^(\s+)`)
	leadingTabs   = regexp.MustCompile(`^(\t+)`)
)

func tabsToSpaces(match string) string {
	return strings.Repeat("    ", strings.Count(match, "\t"))
}

// TrimIndent removes the first line of src and the indentation of the second
// line from every line, so multi-line literals can be indented with the test.
func TrimIndent(t *testing.T, src string) string {
	t.Helper()

	lines := strings.Split(src, "\n")

	var indent string
	if len(lines) > 1 {
		indent = leadingSpaces.FindString(lines[1])
	}

	for i, line := range lines {
		line = strings.TrimPrefix(line, indent)
		lines[i] = leadingTabs.ReplaceAllStringFunc(line, tabsToSpaces)
	}

	return strings.Join(lines[1:], "\n")
}
