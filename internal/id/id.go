// Package id generates the opaque record identifiers used for words and lists.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Record prefixes.
const (
	WordPrefix = "word"
	ListPrefix = "list"
)

// Generate returns prefix + "-" + a 21 character NanoID,
// e.g. "word-V1StGXR8_Z5jdHi6B-myT".
//
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewWordID returns a fresh word id.
func NewWordID() (string, error) {
	return Generate(WordPrefix)
}

// NewListID returns a fresh list id.
func NewListID() (string, error) {
	return Generate(ListPrefix)
}
