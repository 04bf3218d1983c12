package sos

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeCountry produces the cache key for a country name: whitespace
// collapsed, Unicode case-folded. "United  Kingdom" and "united kingdom" map
// to the same entry.
func NormalizeCountry(country string) string {
	collapsed := strings.Join(strings.Fields(country), " ")
	return cases.Fold().String(collapsed)
}
