package common

import "strings"

// HasAny returns true if s contains any of the substrings.
// Matching is case-insensitive and works on raw substrings, so "sunrise"
// contains "sun".
func HasAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
