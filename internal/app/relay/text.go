/*
Package relay contains the core logic of the chat relay: profanity filtering,
mention resolution, the identity registry, the bounded message history, and the
hub that routes every inbound message to its permitted viewers.

This file holds the shared text primitives. Word boundaries and case
comparisons are Unicode-aware: a word is a maximal run of letters, digits, and
underscores, and case-insensitive comparison uses full case folding rather
than ASCII lowercasing.
*/
package relay

import (
	"unicode"

	"golang.org/x/text/cases"
)

// fold returns the case-folded form of s, used as the canonical key for all
// case-insensitive comparisons (usernames, denylist entries, mentions).
// A fresh Caser is created per call; Casers are stateful and must not be
// shared between goroutines.
func fold(s string) string {
	return cases.Fold().String(s)
}

// isWordRune reports whether r belongs to a word token.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
