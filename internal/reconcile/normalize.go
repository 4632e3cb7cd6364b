// Package reconcile matches harvested library items against a reading-log
// export by normalized title, annotating each item with the best-available
// rating. Matching is exact-first with a conservative fuzzy fallback: an
// incorrect match silently assigns the wrong rating to a book, so
// correctness wins over completeness.
package reconcile

import (
	"regexp"
	"strings"
)

var (
	bracketRe = regexp.MustCompile(`\s*[\[(].*?[\])]\s*`)
	punctRe   = regexp.MustCompile(`[.,;!?'"]`)
)

// subtitleSeps in fixed priority order. Each is applied in turn to the
// already-truncated string.
var subtitleSeps = []string{":", " - ", "-", " — ", "—"}

// Normalize canonicalizes a title into a matching key. It is pure and
// idempotent; the result is never a display value.
//
// "The Hobbit: There and Back Again (Illustrated)" -> "the hobbit"
func Normalize(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))

	// Bracketed and parenthesized spans are edition noise, not identity.
	t = bracketRe.ReplaceAllString(t, " ")

	for _, sep := range subtitleSeps {
		if i := strings.Index(t, sep); i >= 0 {
			t = t[:i]
		}
	}

	t = punctRe.ReplaceAllString(t, " ")

	return strings.TrimSpace(strings.Join(strings.Fields(t), " "))
}
