package query

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// WildcardQuery is a message pattern. '*' matches any run of characters, '?' matches
// exactly one character and '\' makes the next character literal.
type WildcardQuery struct {
	Pattern       string
	CaseSensitive bool
}

// NewWildcardQuery creates a WildcardQuery.
func NewWildcardQuery(pattern string, caseSensitive bool) WildcardQuery {
	return WildcardQuery{Pattern: pattern, CaseSensitive: caseSensitive}
}

// Matches reports whether message matches the whole pattern.
func (w WildcardQuery) Matches(message string) bool {
	return WildcardMatch(message, w.Pattern, w.CaseSensitive)
}

func (w WildcardQuery) String() string {
	return "WildcardQuery(" + strconv.Quote(w.Pattern) + ", case_sensitive=" + strconv.FormatBool(w.CaseSensitive) + ")"
}

// WildcardMatch reports whether text matches pattern in its entirety.
//
// Matching works on runes. Without caseSensitive, runes are compared under Unicode simple
// case folding.
func WildcardMatch(text, pattern string, caseSensitive bool) bool {
	t, p := 0, 0
	// Position after the last '*' seen, and the text position it is currently matched up to.
	starP, starT := -1, 0

	for t < len(text) {
		if p < len(pattern) {
			pc, pw := utf8.DecodeRuneInString(pattern[p:])
			switch pc {
			case '*':
				p += pw
				starP, starT = p, t

				continue
			case '?':
				_, tw := utf8.DecodeRuneInString(text[t:])
				t += tw
				p += pw

				continue
			case '\\':
				if p+pw < len(pattern) {
					p += pw
					pc, pw = utf8.DecodeRuneInString(pattern[p:])
				}
			}

			tc, tw := utf8.DecodeRuneInString(text[t:])
			if runeEqual(pc, tc, caseSensitive) {
				t += tw
				p += pw

				continue
			}
		}

		if starP < 0 {
			return false
		}

		// Let the last '*' absorb one more rune and retry from there.
		_, tw := utf8.DecodeRuneInString(text[starT:])
		starT += tw
		t, p = starT, starP
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}

	return p == len(pattern)
}

func runeEqual(a, b rune, caseSensitive bool) bool {
	if a == b {
		return true
	}
	if caseSensitive {
		return false
	}
	if a < utf8.RuneSelf && b < utf8.RuneSelf {
		return asciiLower(a) == asciiLower(b)
	}

	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}

	return false
}

func asciiLower(r rune) rune {
	if 'A' <= r && r <= 'Z' {
		return r + ('a' - 'A')
	}

	return r
}
