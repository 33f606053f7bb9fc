package interpreter

import (
	"regexp"
	"strings"
)

// fencePattern matches a whole response wrapped in a markdown code fence.
var fencePattern = regexp.MustCompile("(?s)^```(.*?)```$")

// tagPattern matches a leading language tag. The tag must end in a newline or
// run straight into a JSON object or array; group 1 holds that bracket.
var tagPattern = regexp.MustCompile(`^[A-Za-z][\w+.-]*[ \t]*(?:\r?\n|([{\[]))`)

// StripFences removes a markdown code fence around text.
// Text without a fence is returned unchanged.
func StripFences(text string) string {
	m := fencePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return text
	}
	body := m[1]
	if loc := tagPattern.FindStringSubmatchIndex(body); loc != nil {
		if loc[2] >= 0 {
			body = body[loc[2]:]
		} else {
			body = body[loc[1]:]
		}
	}
	return strings.TrimSpace(body)
}
