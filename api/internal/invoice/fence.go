package invoice

import (
	"regexp"
	"strings"
)

var (
	reOpenFence  = regexp.MustCompile("^```json[ \t]*\r?\n?")
	reCloseFence = regexp.MustCompile("\\s*```$")
)

// StripFence removes a ```json ... ``` wrapper the model was told not to emit.
// Text that does not start with the opening fence is only trimmed.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```json") {
		return s
	}
	s = reOpenFence.ReplaceAllString(s, "")
	s = reCloseFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
