// Package moderation finds watched words inside message bodies.
// Matching ignores case, punctuation, spacing and common leet speak.
package moderation

import (
	"subpub/errors"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

type Matcher struct {
	matcher *goahocorasick.Machine
}

// NewMatcher initializes the Aho-Corasick automaton with a normalized version of the provided words list.
func NewMatcher(words []string) (Matcher, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if normalized := normalizeRunes([]rune(word)); len(normalized) > 0 {
			patterns = append(patterns, normalized)
		}
	}
	// Patterns must be unique
	patterns = lo.UniqBy(patterns, func(p []rune) string { return string(p) })
	if len(patterns) == 0 {
		return Matcher{}, errors.ErrEmptyWords
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Matcher{}, err
	}
	return Matcher{matcher: m}, nil
}

// Find returns the normalized words found in text, once each, in order of appearance.
func (m Matcher) Find(text string) []string {
	normalized := normalizeRunes([]rune(text))
	if len(normalized) == 0 {
		return nil
	}
	terms := m.matcher.MultiPatternSearch(normalized, false)
	return lo.Uniq(lo.Map(terms, func(term *goahocorasick.Term, _ int) string {
		return string(term.Word)
	}))
}

// Contains reports whether text holds at least one watched word.
func (m Matcher) Contains(text string) bool {
	normalized := normalizeRunes([]rune(text))
	if len(normalized) == 0 {
		return false
	}
	return len(m.matcher.MultiPatternSearch(normalized, true)) > 0
}

// normalizeRunes applies simplification and noise removal to a slice of runes.
func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps common Leet speak characters back to their standard alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies characters that should be ignored during the pattern matching phase.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
