// internal/service/listening/relevance.go

package listening

import "strings"

// Relevant reports whether any keyword occurs in text, ignoring case.
// Matching is plain substring containment, so "seating" matches "seatings".
func Relevant(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
