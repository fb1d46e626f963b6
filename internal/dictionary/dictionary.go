// Package dictionary serves word definitions from a JSON dictionary file.
//
// The file is either an array of entries or an object {"words": [...]}:
//
//	[{"word": "ephemeral", "pronunciation": "/ɪˈfɛm(ə)rəl/",
//	  "definitions": [{"partOfSpeech": "adjective", "meaning": "lasting a very short time", "examples": []}],
//	  "synonyms": ["fleeting"], "antonyms": ["permanent"]}]
//
// HTML found in entries is cleaned up on load: meanings become Markdown, everything else plain text.
// Headwords are indexed in the search index so misspelled lookups get suggestions.
package dictionary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/vocabkeep/vocabkeep/internal/domain"
	"github.com/vocabkeep/vocabkeep/internal/search"
)

// HeadwordIndex is the part of the search index the dictionary uses.
type HeadwordIndex interface {
	IndexDocuments(docs []*search.SearchDocument) error
	DeleteDocuments(ids []string) error
	SuggestHeadwords(ctx context.Context, text string, maxSuggestions int) ([]string, error)
}

// FileDictionary is a read-only dictionary loaded from a JSON file.
//
// Thread safety: all methods are safe for concurrent use. Reload swaps the
// whole entry set at once, so a lookup sees either the old or the new file.
type FileDictionary struct {
	path   string
	index  HeadwordIndex
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]*domain.DictionaryEntry // normalized headword -> entry
}

// New creates a dictionary backed by the file at path and loads it.
// An empty path yields an empty dictionary. index may be nil, which disables suggestions.
func New(path string, index HeadwordIndex, logger *slog.Logger) (*FileDictionary, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &FileDictionary{
		path:    path,
		index:   index,
		logger:  logger,
		entries: make(map[string]*domain.DictionaryEntry),
	}
	if path == "" {
		return d, nil
	}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewFromEntries creates a dictionary holding entries, without a backing file.
func NewFromEntries(entries []domain.DictionaryEntry, index HeadwordIndex, logger *slog.Logger) (*FileDictionary, error) {
	d, err := New("", index, logger)
	if err != nil {
		return nil, err
	}
	owned := make([]domain.DictionaryEntry, len(entries))
	for i := range entries {
		owned[i] = *cloneEntry(&entries[i])
	}
	if err := d.replace(owned); err != nil {
		return nil, err
	}
	return d, nil
}

// Path returns the backing file, empty for in-memory dictionaries.
func (d *FileDictionary) Path() string {
	return d.path
}

// Len returns the number of headwords.
func (d *FileDictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Lookup returns the entry for text, or nil when the word is not in the dictionary.
func (d *FileDictionary) Lookup(ctx context.Context, text string) (*domain.DictionaryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	entry, ok := d.entries[domain.NormalizeText(text)]
	d.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return cloneEntry(entry), nil
}

// FuzzyMatch returns up to maxSuggestions headwords spelled like text.
func (d *FileDictionary) FuzzyMatch(ctx context.Context, text string, maxSuggestions int) ([]string, error) {
	if d.index == nil {
		return []string{}, nil
	}
	return d.index.SuggestHeadwords(ctx, text, maxSuggestions)
}

// Reload re-reads the backing file. On error the current entries stay in place.
func (d *FileDictionary) Reload() error {
	entries, err := LoadFile(d.path)
	if err != nil {
		return err
	}
	if err := d.replace(entries); err != nil {
		return err
	}
	d.logger.Info("dictionary loaded", "path", d.path, "entries", d.Len())
	return nil
}

// replace swaps in a new entry set and brings the headword index in line with it.
func (d *FileDictionary) replace(list []domain.DictionaryEntry) error {
	entries := make(map[string]*domain.DictionaryEntry, len(list))
	for i := range list {
		cleanEntry(&list[i])
		key := domain.NormalizeText(list[i].Word)
		if key == "" {
			continue
		}
		// First definition of a headword wins.
		if _, dup := entries[key]; dup {
			continue
		}
		entries[key] = &list[i]
	}

	d.mu.Lock()
	previous := d.entries
	d.entries = entries
	d.mu.Unlock()

	if d.index == nil {
		return nil
	}

	var removed []string
	for key := range previous {
		if _, ok := entries[key]; !ok {
			removed = append(removed, search.HeadwordID(key))
		}
	}
	if len(removed) > 0 {
		if err := d.index.DeleteDocuments(removed); err != nil {
			return fmt.Errorf("remove stale headwords: %w", err)
		}
	}

	docs := make([]*search.SearchDocument, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, search.HeadwordToSearchDocument(e))
	}
	if err := d.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index headwords: %w", err)
	}
	return nil
}

// LoadFile parses a dictionary file, accepting either an object wrapper
// {"words": [...]} or a bare array.
func LoadFile(path string) ([]domain.DictionaryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("dictionary file is empty")
	}

	if trimmed[0] == '{' {
		var wrapper struct {
			Words []domain.DictionaryEntry `json:"words"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("parse dictionary object: %w", err)
		}
		return wrapper.Words, nil
	}

	var entries []domain.DictionaryEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("parse dictionary array: %w", err)
	}
	return entries, nil
}

func cloneEntry(e *domain.DictionaryEntry) *domain.DictionaryEntry {
	return &domain.DictionaryEntry{
		Word:          e.Word,
		Pronunciation: e.Pronunciation,
		Definitions:   domain.CloneDefinitions(e.Definitions),
		Synonyms:      slices.Clone(e.Synonyms),
		Antonyms:      slices.Clone(e.Antonyms),
	}
}
