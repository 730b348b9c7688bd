package strings

import (
	"strings"
)

// DefaultMessageMaxLen is the default length provider messages are cut to
// before they are logged or shown.
const DefaultMessageMaxLen = 200

// MinTruncateLen is the minimum maxLen value for Truncate.
// Values smaller than this would not leave room for meaningful content plus "...".
const MinTruncateLen = 4

// Truncate collapses s onto a single line and cuts it to maxLen runes,
// ending it with "..." when something was dropped.
//
// Response bodies from the provider can be HTML error pages or multi-line
// JSON; Truncate keeps them readable in log lines and error messages.
// maxLen is clamped to MinTruncateLen.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
