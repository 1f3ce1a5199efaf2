// Package id generates the prefixed local identifiers used for padlink records.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Record prefixes. The prefix makes an ID self-describing in logs and the journal.
const (
	PrefixServer     = "srv"
	PrefixUser       = "usr"
	PrefixOwnerGroup = "og"
	PrefixGroup      = "grp"
	PrefixAuthor     = "ath"
	PrefixPad        = "pad"
)

// alphabet excludes '$', which Etherpad reserves as the group/pad separator, and '-',
// which separates the prefix.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_"

const size = 16

// Generate creates a prefixed unique ID, e.g. "pad-V1StGXR8Z5jdHi6B".
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	raw, err := gonanoid.Generate(alphabet, size)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + raw, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
