// Package strings provides string and presentation formatting utilities
// shared by handlers and email composition.
package strings

import (
	"strings"
)

// NormalizeAddressList trims, lowercases, and deduplicates an email address
// list, dropping empty entries. Order is preserved. The mailer runs every
// to/cc/bcc list through this before building a message.
func NormalizeAddressList(addrs []string) []string {
	if len(addrs) == 0 {
		return addrs
	}

	seen := make(map[string]struct{}, len(addrs))
	result := make([]string, 0, len(addrs))

	for _, a := range addrs {
		trimmed := strings.ToLower(strings.TrimSpace(a))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// Words left lowercase in titles unless they open the title or a subphrase.
var titleExemptions = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "as": {}, "but": {}, "for": {}, "in": {},
	"nor": {}, "of": {}, "on": {}, "or": {}, "so": {}, "the": {}, "to": {},
	"vs": {}, "yet": {},
}

// Characters that end a subphrase; the next word is capitalized even if
// exempt (e.g. "Design: The Basics").
const subphraseEnds = ".:;([{'\""

// ProperCase title-cases a phrase: every word is capitalized except
// exemption words mid-phrase, with special handling for hyphenated words,
// Mc/Mac surnames, and apostrophes (O'Brien). Used for attendee names and
// session titles coming from free-text sources.
func ProperCase(input string) string {
	if input == "" {
		return ""
	}

	words := strings.Fields(input)
	out := make([]string, 0, len(words))

	for i, word := range words {
		startsSubphrase := i == 0
		if !startsSubphrase && len(out) > 0 {
			prev := out[len(out)-1]
			if strings.ContainsAny(prev[len(prev)-1:], subphraseEnds) {
				startsSubphrase = true
			}
		}

		lower := strings.ToLower(strings.Trim(word, subphraseEnds+")]}!?,"))
		if _, exempt := titleExemptions[lower]; exempt && !startsSubphrase {
			out = append(out, strings.ToLower(word))
			continue
		}

		if strings.Contains(word, "-") {
			parts := strings.Split(word, "-")
			for j, part := range parts {
				parts[j] = capitalizeWord(part)
			}
			out = append(out, strings.Join(parts, "-"))
			continue
		}

		out = append(out, capitalizeWord(word))
	}

	return strings.Join(out, " ")
}

func capitalizeWord(word string) string {
	if word == "" {
		return word
	}

	lower := strings.ToLower(word)
	switch {
	case len(word) > 3 && strings.HasPrefix(lower, "mac"):
		return "Mac" + strings.ToUpper(lower[3:4]) + lower[4:]
	case len(word) > 2 && strings.HasPrefix(lower, "mc"):
		return "Mc" + strings.ToUpper(lower[2:3]) + lower[3:]
	case len(word) > 2 && word[1] == '\'':
		// O'Brien, D'Souza
		return strings.ToUpper(lower[0:1]) + "'" + strings.ToUpper(lower[2:3]) + lower[3:]
	default:
		return strings.ToUpper(lower[0:1]) + lower[1:]
	}
}

// DaySuffix returns the English ordinal suffix for a day of month
// (1 -> "st", 2 -> "nd", 11 -> "th"). Email templates render dates like
// "June 3rd" with it.
func DaySuffix(day int) string {
	switch day {
	case 1, 21, 31:
		return "st"
	case 2, 22:
		return "nd"
	case 3, 23:
		return "rd"
	default:
		return "th"
	}
}
