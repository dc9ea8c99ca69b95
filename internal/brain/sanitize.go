package brain

import (
	"regexp"
	"strings"
)

// strayBlockPattern matches a further fenced JSON object after the first one
// has been taken, e.g. when the model repeats its update.
var strayBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*[\\[{].*?```[ \\t]*\\n?")

// openBlockPattern matches a fence that is never closed, which happens when
// the reply was cut off by the token limit.
var openBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*[\\[{].*$")

// SanitizeReply removes machine-readable leftovers from user-facing analyst
// text. Returns the cleaned text and the number of blocks stripped.
func SanitizeReply(content string) (string, int) {
	count := len(strayBlockPattern.FindAllStringIndex(content, -1))
	if count > 0 {
		content = strayBlockPattern.ReplaceAllString(content, "")
	}
	if loc := openBlockPattern.FindStringIndex(content); loc != nil {
		content = content[:loc[0]]
		count++
	}
	return strings.TrimSpace(content), count
}
