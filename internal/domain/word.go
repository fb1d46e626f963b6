// Package domain holds the vocabulary records persisted by the store.
package domain

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Difficulty is the user-settable difficulty tag on a word.
type Difficulty string

// Difficulty values.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a recognized difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Definition is one sense of a word as supplied by the dictionary.
type Definition struct {
	PartOfSpeech string   `json:"partOfSpeech" validate:"max=64"`
	Meaning      string   `json:"meaning" validate:"nonblank,max=2000"`
	Examples     []string `json:"examples" validate:"max=50,dive,max=1000"`
}

// ReviewRecord is one entry of a word's append-only review history.
type ReviewRecord struct {
	Date    time.Time `json:"date"`
	Correct bool      `json:"correct"`
}

// Word is a vocabulary entry the user has saved.
type Word struct {
	ID             string         `json:"id"`
	Text           string         `json:"text"`
	NormalizedText string         `json:"normalizedText"`
	Pronunciation  string         `json:"pronunciation,omitempty"`
	Definitions    []Definition   `json:"definitions"`
	Synonyms       []string       `json:"synonyms,omitempty"`
	Antonyms       []string       `json:"antonyms,omitempty"`
	DateAdded      time.Time      `json:"dateAdded"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	LookupCount    int            `json:"lookupCount"`
	Difficulty     Difficulty     `json:"difficulty"`
	LastReviewed   *time.Time     `json:"lastReviewed"`
	NextReview     *time.Time     `json:"nextReview"`
	ReviewHistory  []ReviewRecord `json:"reviewHistory"`
}

// NewWord creates a word with a single lookup and medium difficulty.
func NewWord(id, text string, definitions []Definition, now time.Time) *Word {
	return &Word{
		ID:             id,
		Text:           strings.TrimSpace(text),
		NormalizedText: NormalizeText(text),
		Definitions:    CloneDefinitions(definitions),
		DateAdded:      now,
		UpdatedAt:      now,
		LookupCount:    1,
		Difficulty:     DifficultyMedium,
		ReviewHistory:  []ReviewRecord{},
	}
}

// IsMastered reports whether the word has been reviewed and needs no further review.
func (w *Word) IsMastered() bool {
	return w.LastReviewed != nil && w.NextReview == nil
}

// IsDue reports whether the word is scheduled at or before now.
func (w *Word) IsDue(now time.Time) bool {
	return w.NextReview != nil && !w.NextReview.After(now)
}

// RecordReview appends a review outcome to the history.
func (w *Word) RecordReview(at time.Time, correct bool) {
	w.ReviewHistory = append(w.ReviewHistory, ReviewRecord{Date: at, Correct: correct})
}

// NormalizeText returns the dedupe key for a word: NFC, trimmed, lowercase.
func NormalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(text)))
}

// CloneDefinitions deep-copies definitions so callers can't alias stored slices.
func CloneDefinitions(defs []Definition) []Definition {
	out := make([]Definition, len(defs))
	for i, d := range defs {
		out[i] = Definition{
			PartOfSpeech: d.PartOfSpeech,
			Meaning:      d.Meaning,
			Examples:     slices.Clone(d.Examples),
		}
		if out[i].Examples == nil {
			out[i].Examples = []string{}
		}
	}
	return out
}
