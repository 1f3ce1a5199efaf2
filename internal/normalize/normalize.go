// Package normalize provides utilities for normalizing and sanitizing names
// before they are stored locally or sent to Etherpad.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxPadNameLength is the longest pad name accepted, in characters.
const MaxPadNameLength = 50

// padNameForbidden lists characters Etherpad refuses in a pad name or that
// would corrupt the "{group}${name}" pad id.
const padNameForbidden = "$/?"

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
)

// PadName returns the canonical form of a pad name: NFC-composed, null bytes
// removed, whitespace runs collapsed, trimmed.
func PadName(raw string) string {
	s := norm.NFC.String(sanitizeString(raw))
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ValidPadName reports whether an already normalized name is acceptable as a
// pad name.
func ValidPadName(name string) bool {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > MaxPadNameLength {
		return false
	}
	if strings.ContainsAny(name, padNameForbidden) {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// DisplayName normalizes a name shown to other Etherpad users.
// Empty input stays empty so callers can fall back to another field.
func DisplayName(raw string) string {
	s := norm.NFC.String(sanitizeString(raw))
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Slug converts a string to a lowercase ASCII slug.
// "Team Notes" -> "team-notes".
// "Réunion/2024" -> "reunion-2024".
func Slug(s string) string {
	// Decompose so accents become separate marks that are dropped below.
	s = norm.NFKD.String(s)

	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}

// sanitizeString removes null bytes, which break both SQLite text columns and
// Etherpad's query string parsing.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
