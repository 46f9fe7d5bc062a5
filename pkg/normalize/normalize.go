// Package normalize turns fetched source text into the canonical form that is
// hashed and compared between runs.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/promptradar/pkg/constants"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// volatilePrefix marks footer lines that change without the content changing.
const volatilePrefix = "last updated"

// Normalize canonicalizes text so that cosmetic differences (line endings,
// tabs, trailing blanks, "Last updated" footers) do not alter its hash.
// Normalize is a projection: Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\t", "  ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \u00a0")
	}
	s = collapse(strings.Join(lines, "\n"))

	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if isVolatile(line) {
			continue
		}
		kept = append(kept, line)
	}
	return collapse(strings.Join(kept, "\n"))
}

func collapse(s string) string {
	return strings.TrimSpace(blankRuns.ReplaceAllString(s, "\n\n"))
}

func isVolatile(line string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), volatilePrefix)
}

// Preview returns text unchanged when it has at most max runes, otherwise its
// first max runes followed by an ellipsis. A non-positive max selects the
// default preview length.
func Preview(text string, max int) string {
	if max <= 0 {
		max = constants.PreviewLength
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + constants.PreviewEllipsis
}

// Length is the rune length used for the minimum-content check and the
// quality score.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}
