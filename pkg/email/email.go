// Package email derives human-readable name parts from an address. Imports
// without a formatted name fall back to this so every contact still gets a
// display name.
package email

import (
	"strings"
	"unicode"
)

// fallbackName stands in when the address yields no usable parts.
const fallbackName = "User"

// DeriveNameFromEmail splits the local part of an address on common word
// separators and returns capitalized first and last name guesses.
// "jane.roe@example.com" yields ("Jane", "Roe"); a single-word local part
// keeps the fallback surname.
func DeriveNameFromEmail(addr string) (string, string) {
	local := addr
	if at := strings.IndexByte(addr, '@'); at > 0 {
		local = addr[:at]
	}

	words := strings.FieldsFunc(local, isSeparator)
	if len(words) == 0 {
		return fallbackName, fallbackName
	}

	first := capitalize(words[0])
	if len(words) == 1 {
		return first, fallbackName
	}
	return first, capitalize(words[len(words)-1])
}

func isSeparator(r rune) bool {
	switch r {
	case '.', '_', '-', '+':
		return true
	}
	return false
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	runes := []rune(word)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
