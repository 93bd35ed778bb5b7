package compiler

import (
	"regexp"
	"strings"
)

var (
	fencedBlockRE = regexp.MustCompile("(?s)```(?:\\w+)?\\s*\\n?(.*?)\\n?```")
	taggedSpanRE  = regexp.MustCompile(`(?s)@\w+\{.*\}`)
)

// ExtractNotation pulls the plan document out of a model response. Models
// tend to wrap output in a fenced code block or pad it with prose, so try the
// fence first, then the widest @tag{...} span, and fall back to the raw text.
func ExtractNotation(text string) string {
	text = strings.TrimSpace(text)
	if m := fencedBlockRE.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := taggedSpanRE.FindString(text); m != "" {
		return m
	}
	return text
}
