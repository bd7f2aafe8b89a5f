package address

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// normalizeKey folds a subdivision name or code for comparison. NFC first so
// composed and decomposed accents compare equal, then Unicode case folding.
func normalizeKey(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// isBlank reports whether s is empty after trimming.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Set is a membership table of strings.
type Set map[string]struct{}

func newSet(values []string, key func(string) string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[key(v)] = struct{}{}
	}
	return s
}

// Has reports whether v is a member.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}
