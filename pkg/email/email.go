// Package email contains small helpers for working with attendee email
// addresses.
package email

import (
	"strings"
	"unicode"
)

// Normalize lowercases and trims an address for use as a lookup key.
// Email is the natural key for attendees, so every store access goes
// through this first.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// DeriveName guesses a first/last name from the local part of an address.
// Used when the directory has no display name for a login and when vendor
// staff are provisioned from a bare address.
func DeriveName(addr string) (string, string) {
	localPart := addr
	if at := strings.IndexByte(addr, '@'); at >= 0 {
		localPart = addr[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "Attendee", "Attendee"
	}

	first := capitalize(parts[0])
	last := "Attendee"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
