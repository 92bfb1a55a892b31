package relay

import (
	"strings"
	"unicode"
)

// ExtractMentions returns the candidate name of every mention-shaped token in
// text, in order of appearance with case preserved. A mention is an '@'
// immediately followed by one or more word characters. Deduplication and
// registry resolution happen downstream; only the resolved target set matters
// for routing.
func ExtractMentions(text string) []string {
	var names []string

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '@' {
			continue
		}

		start := i + 1
		end := start
		for end < len(runes) && isWordRune(runes[end]) {
			end++
		}

		if end > start {
			names = append(names, string(runes[start:end]))
			i = end - 1
		}
	}

	return names
}

// StripMentions returns text with every mention-shaped token removed, whether
// or not the name resolves to a known identity. One run of whitespace
// following each token is removed with it, and the result is trimmed. This
// produces the recipient-facing form of a private message.
func StripMentions(text string) string {
	var out strings.Builder
	out.Grow(len(text))

	runes := []rune(text)
	for i := 0; i < len(runes); {
		if runes[i] != '@' {
			out.WriteRune(runes[i])
			i++
			continue
		}

		end := i + 1
		for end < len(runes) && isWordRune(runes[end]) {
			end++
		}

		if end == i+1 {
			// Bare '@' with no name, keep it.
			out.WriteRune(runes[i])
			i++
			continue
		}

		// Skip the token and the whitespace run that follows it.
		for end < len(runes) && unicode.IsSpace(runes[end]) {
			end++
		}
		i = end
	}

	return strings.TrimSpace(out.String())
}
