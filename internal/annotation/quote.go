// SPDX-License-Identifier: Apache-2.0

package annotation

import "strings"

// NormalizeQuote collapses a multi-line excerpt into a single line so it can be
// compared against specification text. Each line is trimmed, blank lines are
// dropped, and the remaining lines are joined with a single space. Whitespace
// inside a line is left untouched.
func NormalizeQuote(text string) string {
	lines := strings.Split(text, "\n")
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
