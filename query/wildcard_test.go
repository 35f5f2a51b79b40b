package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWildcardMatch(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		pattern       string
		caseSensitive bool
		want          bool
	}{
		{name: "exact", text: "abc", pattern: "abc", caseSensitive: true, want: true},
		{name: "exact mismatch", text: "abc", pattern: "abd", caseSensitive: true, want: false},
		{name: "prefix only is not a match", text: "abcdef", pattern: "abc", caseSensitive: true, want: false},
		{name: "star matches empty", text: "aa", pattern: "a*a", caseSensitive: true, want: true},
		{name: "star matches digit", text: "a1a", pattern: "a*a", caseSensitive: true, want: true},
		{name: "star matches letter", text: "aAa", pattern: "a*a", caseSensitive: true, want: true},
		{name: "case sensitive rejects", text: "A1A", pattern: "a*a", caseSensitive: true, want: false},
		{name: "case insensitive accepts", text: "A1A", pattern: "a*a", caseSensitive: false, want: true},
		{name: "star alone", text: "anything at all", pattern: "*", caseSensitive: true, want: true},
		{name: "star on empty text", text: "", pattern: "*", caseSensitive: true, want: true},
		{name: "empty pattern on empty text", text: "", pattern: "", caseSensitive: true, want: true},
		{name: "empty pattern on text", text: "x", pattern: "", caseSensitive: true, want: false},
		{name: "question mark", text: "cat", pattern: "c?t", caseSensitive: true, want: true},
		{name: "question mark needs a char", text: "ct", pattern: "c?t", caseSensitive: true, want: false},
		{name: "question mark matches one rune", text: "cät", pattern: "c?t", caseSensitive: true, want: true},
		{name: "contains", text: "2023 ERROR disk full", pattern: "*ERROR*", caseSensitive: true, want: true},
		{name: "contains folded", text: "2023 error disk full", pattern: "*ERROR*", caseSensitive: false, want: true},
		{name: "backtracking", text: "abcabcabd", pattern: "*abd", caseSensitive: true, want: true},
		{name: "multiple stars", text: "xaybzc", pattern: "*a*b*c", caseSensitive: true, want: true},
		{name: "multiple stars miss", text: "xaybz", pattern: "*a*b*c", caseSensitive: true, want: false},
		{name: "trailing stars", text: "abc", pattern: "abc**", caseSensitive: true, want: true},
		{name: "escaped star", text: "a*b", pattern: `a\*b`, caseSensitive: true, want: true},
		{name: "escaped star is literal", text: "axb", pattern: `a\*b`, caseSensitive: true, want: false},
		{name: "escaped question mark", text: "why?", pattern: `why\?`, caseSensitive: true, want: true},
		{name: "trailing backslash is literal", text: `a\`, pattern: `a\`, caseSensitive: true, want: true},
		{name: "unicode folding", text: "ΣΊΣΥΦΟΣ", pattern: "σίσυφος", caseSensitive: false, want: true},
		{name: "unicode case sensitive", text: "ΣΊΣΥΦΟΣ", pattern: "σίσυφος", caseSensitive: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, WildcardMatch(tt.text, tt.pattern, tt.caseSensitive))
		})
	}
}

func TestWildcardQuery(t *testing.T) {
	wq := NewWildcardQuery("a*a", false)

	require.Equal(t, "a*a", wq.Pattern)
	require.False(t, wq.CaseSensitive)
	require.True(t, wq.Matches("A1A"))
	require.Equal(t, `WildcardQuery("a*a", case_sensitive=false)`, wq.String())
}
