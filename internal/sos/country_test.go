package sos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase_passthrough", "germany", "germany"},
		{"case_folded", "Germany", "germany"},
		{"all_caps", "FRANCE", "france"},
		{"inner_whitespace_collapsed", "United  Kingdom", "united kingdom"},
		{"surrounding_whitespace", "  Japan\t", "japan"},
		{"tabs_and_newlines", "New\t\nZealand", "new zealand"},
		{"unicode_fold", "CÔTE D'IVOIRE", "côte d'ivoire"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCountry(tt.in))
		})
	}
}

func TestNormalizeCountryEquivalence(t *testing.T) {
	variants := []string{"United Kingdom", "united kingdom", "UNITED KINGDOM", " United  Kingdom "}
	want := NormalizeCountry(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, want, NormalizeCountry(v), "variant %q must map to the same cache key", v)
	}
}
