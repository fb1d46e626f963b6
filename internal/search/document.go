// Package search provides full-text and typo-tolerant search using Bleve.
// Saved words and dictionary headwords share one index, told apart by type.
package search

import (
	"strings"

	"github.com/vocabkeep/vocabkeep/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeWord     DocType = "word"
	DocTypeHeadword DocType = "headword"
)

// headwordIDPrefix keeps headword ids apart from word ids.
const headwordIDPrefix = "headword:"

// SearchDocument is the unified document structure for the Bleve index.
type SearchDocument struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Text is the surface form; Normalized its dedupe key.
	Text       string `json:"text"`
	Normalized string `json:"normalized"`

	Meaning  string   `json:"meaning,omitempty"` // All definitions, joined
	Synonyms []string `json:"synonyms,omitempty"`

	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
func (d *SearchDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       string(d.Type),
		"text":       d.Text,
		"normalized": d.Normalized,
		"updated_at": d.UpdatedAt,
	}
	if d.Meaning != "" {
		m["meaning"] = d.Meaning
	}
	if len(d.Synonyms) > 0 {
		m["synonyms"] = d.Synonyms
	}
	return m
}

// WordToSearchDocument converts a saved word.
func WordToSearchDocument(w *domain.Word) *SearchDocument {
	return &SearchDocument{
		ID:         w.ID,
		Type:       DocTypeWord,
		Text:       w.Text,
		Normalized: w.NormalizedText,
		Meaning:    joinMeanings(w.Definitions),
		Synonyms:   w.Synonyms,
		UpdatedAt:  w.UpdatedAt.UnixMilli(),
	}
}

// HeadwordToSearchDocument converts a dictionary entry.
func HeadwordToSearchDocument(e *domain.DictionaryEntry) *SearchDocument {
	normalized := domain.NormalizeText(e.Word)
	return &SearchDocument{
		ID:         HeadwordID(normalized),
		Type:       DocTypeHeadword,
		Text:       e.Word,
		Normalized: normalized,
		Meaning:    joinMeanings(e.Definitions),
		Synonyms:   e.Synonyms,
	}
}

// HeadwordID returns the document id of a headword by its normalized text.
func HeadwordID(normalized string) string {
	return headwordIDPrefix + normalized
}

func joinMeanings(defs []domain.Definition) string {
	parts := make([]string, 0, len(defs))
	for _, d := range defs {
		if d.Meaning != "" {
			parts = append(parts, d.Meaning)
		}
	}
	return strings.Join(parts, " ")
}
