package relay

import "strings"

// MaskToken replaces every denylisted word in filtered text.
const MaskToken = "***"

// WordFilter redacts denylisted words from message text. Matching is
// whole-word and case-insensitive; partial words are never redacted, and the
// surrounding structure of the text is preserved. Filtering is idempotent:
// the mask token contains no word characters, so re-filtering already
// redacted text is a no-op.
type WordFilter struct {
	// words holds the case-folded denylist entries.
	words map[string]struct{}
}

// NewWordFilter builds a WordFilter from the given denylist. Entries are
// trimmed and case-folded; empty entries are dropped.
func NewWordFilter(denylist []string) *WordFilter {
	words := make(map[string]struct{}, len(denylist))

	for _, w := range denylist {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		words[fold(w)] = struct{}{}
	}

	return &WordFilter{words: words}
}

// Filter returns text with every whole-word occurrence of a denylist entry
// replaced by MaskToken. It has no side effects.
func (f *WordFilter) Filter(text string) string {
	if text == "" || len(f.words) == 0 {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))

	runes := []rune(text)
	for i := 0; i < len(runes); {
		if !isWordRune(runes[i]) {
			out.WriteRune(runes[i])
			i++
			continue
		}

		start := i
		for i < len(runes) && isWordRune(runes[i]) {
			i++
		}

		word := string(runes[start:i])
		if _, bad := f.words[fold(word)]; bad {
			out.WriteString(MaskToken)
		} else {
			out.WriteString(word)
		}
	}

	return out.String()
}
