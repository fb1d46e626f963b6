package domain

import (
	"slices"
	"strings"
	"time"
)

// DefaultListName is the name given to the list created on first initialization.
const DefaultListName = "My Words"

// List is a named, ordered grouping of word ids.
// Lists hold ids only; words are resolved through the repository.
type List struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CreatedDate  time.Time `json:"createdDate"`
	ModifiedDate time.Time `json:"modifiedDate"`
	IsDefault    bool      `json:"isDefault"`
	WordIDs      []string  `json:"wordIds"`
}

// NewList creates an empty, non-default list.
func NewList(id, name, description string, now time.Time) *List {
	return &List{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Description:  description,
		CreatedDate:  now,
		ModifiedDate: now,
		WordIDs:      []string{},
	}
}

// AddWord appends a word id if not already present.
func (l *List) AddWord(wordID string) bool {
	if slices.Contains(l.WordIDs, wordID) {
		return false
	}
	l.WordIDs = append(l.WordIDs, wordID)
	return true
}

// RemoveWord removes a word id, preserving the order of the rest.
func (l *List) RemoveWord(wordID string) bool {
	i := slices.Index(l.WordIDs, wordID)
	if i < 0 {
		return false
	}
	l.WordIDs = slices.Delete(l.WordIDs, i, i+1)
	return true
}

// ContainsWord reports whether the word id is a member.
func (l *List) ContainsWord(wordID string) bool {
	return slices.Contains(l.WordIDs, wordID)
}

// NormalizeListName returns the uniqueness key for list names.
func NormalizeListName(name string) string {
	return NormalizeText(name)
}
