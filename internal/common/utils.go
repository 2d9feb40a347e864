package common

import (
	"fmt"
	"strings"
)

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CoordKey formats a coordinate pair at the three-decimal precision the
// dashboard displays, so nearby clicks share cache entries.
func CoordKey(lat, lon float64) string {
	return fmt.Sprintf("%.3f,%.3f", lat, lon)
}
