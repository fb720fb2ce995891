package qa

import (
	"regexp"
	"strings"
)

var codeFenceRe = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*[ \\t]*\\n?(.*?)\\s*```$")

// stripCodeFence removes a code fence wrapping the whole text. Fences
// inside the text are kept.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
