package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func isStrayControl(r rune) bool {
	return unicode.IsControl(r) && !unicode.IsSpace(r)
}

// Key folds a raw symptom phrase into lookup form: NFKC, control characters removed,
// lower-cased, trimmed, and internal whitespace collapsed to single spaces.
func Key(raw string) string {
	// Chains carry buffers, so one is built per call to stay safe for concurrent use
	fold := transform.Chain(norm.NFKC, runes.Remove(runes.Predicate(isStrayControl)))
	folded, _, err := transform.String(fold, raw)
	if err != nil {
		folded = raw
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
