package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// FoldName is the canonical form used for case-insensitive course name
// comparison (duplicate detection, self-name exclusion).
func FoldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
