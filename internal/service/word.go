package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/vocabkeep/vocabkeep/internal/domain"
	apperrors "github.com/vocabkeep/vocabkeep/internal/errors"
	"github.com/vocabkeep/vocabkeep/internal/id"
	"github.com/vocabkeep/vocabkeep/internal/store"
	"github.com/vocabkeep/vocabkeep/internal/validation"
)

// DefaultSuggestions is how many spelling suggestions a failed lookup returns.
const DefaultSuggestions = 5

// WordService manages saved words.
type WordService struct {
	store     *store.Store
	dict      Dictionary
	index     WordIndex
	validator *validation.Validator
	logger    *slog.Logger
}

// NewWordService creates a new word service. dict and index may be nil.
func NewWordService(
	store *store.Store,
	dict Dictionary,
	index WordIndex,
	validator *validation.Validator,
	logger *slog.Logger,
) *WordService {
	return &WordService{
		store:     store,
		dict:      dict,
		index:     index,
		validator: validator,
		logger:    orDiscard(logger),
	}
}

// AddWordRequest is the payload of AddWord.
type AddWordRequest struct {
	Text        string              `json:"text" validate:"nonblank,max=200"`
	Definitions []domain.Definition `json:"definitions" validate:"required,min=1,max=50,dive"`
}

// AddWord saves a word, or bumps the lookup count of the word already saved
// under the same normalized text. Concurrent adds of one text yield one record.
func (s *WordService) AddWord(ctx context.Context, text string, definitions []domain.Definition) (*domain.Word, error) {
	req := AddWordRequest{Text: text, Definitions: definitions}
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	var word *domain.Word
	var created bool
	err := s.store.Update(ctx, func(tx *store.Txn) error {
		var err error
		word, created, err = s.addWordIn(tx, text, definitions, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.indexWord(word)
	if created {
		s.logger.Info("word added", "word_id", word.ID, "text", word.Text)
	} else {
		s.logger.Debug("word lookup count incremented", "word_id", word.ID, "lookup_count", word.LookupCount)
	}
	return word, nil
}

// addWordIn is the dedupe-or-create step shared by AddWord and LookupWord.
// entry, when set, supplies pronunciation and synonyms for a new word.
func (s *WordService) addWordIn(tx *store.Txn, text string, definitions []domain.Definition, entry *domain.DictionaryEntry) (*domain.Word, bool, error) {
	now := s.store.Now()

	existing, err := s.store.WordByTextIn(tx, text)
	switch {
	case err == nil:
		existing.LookupCount++
		existing.UpdatedAt = now
		if err := s.store.Words.UpdateIn(tx, existing.ID, existing); err != nil {
			return nil, false, fmt.Errorf("update word: %w", err)
		}
		return existing, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, err
	}

	// Read stats before the new word exists, or first-time creation would count it.
	stats, _, err := s.store.Stats.GetOrCreateIn(tx)
	if err != nil {
		return nil, false, err
	}

	wordID, err := id.NewWordID()
	if err != nil {
		return nil, false, apperrors.Wrap(err, apperrors.CodeInternal, "generate word id")
	}

	word := domain.NewWord(wordID, text, definitions, now)
	if entry != nil {
		word.Pronunciation = entry.Pronunciation
		word.Synonyms = slices.Clone(entry.Synonyms)
		word.Antonyms = slices.Clone(entry.Antonyms)
	}
	if err := s.store.Words.CreateIn(tx, word.ID, word); err != nil {
		return nil, false, fmt.Errorf("create word: %w", err)
	}

	stats.TotalWords++
	stats.UpdatedAt = now
	if err := s.store.Stats.PutIn(tx, stats); err != nil {
		return nil, false, err
	}
	return word, true, nil
}

// GetWord returns a word by ID.
func (s *WordService) GetWord(ctx context.Context, wordID string) (*domain.Word, error) {
	word, err := s.store.Words.Get(ctx, wordID)
	if err != nil {
		return nil, notFound(err, "word", wordID)
	}
	return word, nil
}

// ListWords returns every saved word, most recently added first.
func (s *WordService) ListWords(ctx context.Context) ([]*domain.Word, error) {
	words, err := s.store.Words.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(words, func(a, b *domain.Word) int {
		return b.DateAdded.Compare(a.DateAdded)
	})
	return words, nil
}

// WordUpdate contains the fields that can be edited on a word.
// ID, date added, lookup count, schedule and review history are owned by
// other operations and cannot be changed here.
type WordUpdate struct {
	ID            string               `json:"id" validate:"required"`
	Text          *string              `json:"text" validate:"omitnil,nonblank,max=200"`
	Definitions   *[]domain.Definition `json:"definitions" validate:"omitnil,min=1,max=50,dive"`
	Difficulty    *domain.Difficulty   `json:"difficulty" validate:"omitnil,oneof=easy medium hard"`
	Pronunciation *string              `json:"pronunciation" validate:"omitnil,max=200"`
	Synonyms      *[]string            `json:"synonyms" validate:"omitnil,max=100"`
	Antonyms      *[]string            `json:"antonyms" validate:"omitnil,max=100"`
}

// UpdateWord applies an edit to an existing word.
// Changing the text to one already saved fails with a duplicate error.
func (s *WordService) UpdateWord(ctx context.Context, update *WordUpdate) (*domain.Word, error) {
	if err := s.validator.Validate(update); err != nil {
		return nil, err
	}

	var word *domain.Word
	err := s.store.Update(ctx, func(tx *store.Txn) error {
		var err error
		word, err = s.store.Words.GetIn(tx, update.ID)
		if err != nil {
			return notFound(err, "word", update.ID)
		}

		if update.Text != nil {
			word.Text = strings.TrimSpace(*update.Text)
			word.NormalizedText = domain.NormalizeText(*update.Text)
		}
		if update.Definitions != nil {
			word.Definitions = domain.CloneDefinitions(*update.Definitions)
		}
		if update.Difficulty != nil {
			word.Difficulty = *update.Difficulty
		}
		if update.Pronunciation != nil {
			word.Pronunciation = *update.Pronunciation
		}
		if update.Synonyms != nil {
			word.Synonyms = slices.Clone(*update.Synonyms)
		}
		if update.Antonyms != nil {
			word.Antonyms = slices.Clone(*update.Antonyms)
		}
		word.UpdatedAt = s.store.Now()

		if err := s.store.Words.UpdateIn(tx, word.ID, word); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return apperrors.Duplicatef("word %q already exists", word.Text)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.indexWord(word)
	return word, nil
}

// DeleteWord removes a word and its id from every list, in one transaction.
// Deleting a missing word is a no-op.
func (s *WordService) DeleteWord(ctx context.Context, wordID string) error {
	var deleted bool
	var listCount int

	err := s.store.Update(ctx, func(tx *store.Txn) error {
		deleted, listCount = false, 0

		word, err := s.store.Words.GetIn(tx, wordID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		// Before the delete, so a freshly created record still counts this word.
		stats, _, err := s.store.Stats.GetOrCreateIn(tx)
		if err != nil {
			return err
		}

		now := s.store.Now()

		lists, err := s.store.ListsContainingIn(tx, wordID)
		if err != nil {
			return fmt.Errorf("find lists for word: %w", err)
		}
		for _, list := range lists {
			if list.RemoveWord(wordID) {
				list.ModifiedDate = now
				if err := s.store.Lists.UpdateIn(tx, list.ID, list); err != nil {
					return fmt.Errorf("remove word from list %s: %w", list.ID, err)
				}
				listCount++
			}
		}

		if _, err := s.store.Words.DeleteIn(tx, wordID); err != nil {
			return fmt.Errorf("delete word: %w", err)
		}

		stats.TotalWords = max(stats.TotalWords-1, 0)
		if word.IsMastered() {
			stats.WordsLearned = max(stats.WordsLearned-1, 0)
		}
		stats.UpdatedAt = now
		if err := s.store.Stats.PutIn(tx, stats); err != nil {
			return err
		}

		deleted = true
		return nil
	})
	if err != nil {
		return err
	}

	if deleted {
		if s.index != nil {
			if err := s.index.DeleteWord(wordID); err != nil {
				s.logger.Warn("failed to remove word from search index", "word_id", wordID, "error", err)
			}
		}
		s.logger.Info("word deleted", "word_id", wordID, "lists_updated", listCount)
	}
	return nil
}

// GetWordsDueForReview returns every word scheduled at or before now, earliest first.
func (s *WordService) GetWordsDueForReview(ctx context.Context, now time.Time) ([]*domain.Word, error) {
	return s.store.WordsDue(ctx, now)
}

// LookupResult is the outcome of a dictionary lookup.
type LookupResult struct {
	Entry       *domain.DictionaryEntry `json:"entry"`
	Word        *domain.Word            `json:"word,omitempty"`
	Added       bool                    `json:"added"`
	Suggestions []string                `json:"suggestions,omitempty"`
}

// LookupWord looks text up in the dictionary. With auto-add enabled a found
// word is saved (or its lookup count bumped) and put in the default list.
// Unknown words return spelling suggestions.
func (s *WordService) LookupWord(ctx context.Context, text string) (*LookupResult, error) {
	req := struct {
		Text string `json:"text" validate:"nonblank,max=200"`
	}{Text: text}
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}
	if s.dict == nil {
		return nil, apperrors.Internal("dictionary not configured")
	}

	entry, err := s.dict.Lookup(ctx, text)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "dictionary lookup failed")
	}

	if entry == nil {
		suggestions, err := s.dict.FuzzyMatch(ctx, text, DefaultSuggestions)
		if err != nil {
			s.logger.Warn("fuzzy match failed", "text", text, "error", err)
			suggestions = []string{}
		}
		return &LookupResult{Suggestions: suggestions}, nil
	}

	settings, err := s.store.Settings.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	result := &LookupResult{Entry: entry}

	if !settings.AutoAddToList || len(entry.Definitions) == 0 {
		// Report the saved word, if any, without counting a lookup.
		word, err := s.store.Words.Lookup(ctx, store.WordIndexNormalizedText, text)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		result.Word = word
		return result, nil
	}

	var created bool
	err = s.store.Update(ctx, func(tx *store.Txn) error {
		word, wasCreated, err := s.addWordIn(tx, text, entry.Definitions, entry)
		if err != nil {
			return err
		}
		result.Word, created = word, wasCreated

		list, err := s.store.Lists.GetIn(tx, settings.DefaultListID)
		if errors.Is(err, store.ErrNotFound) {
			list, err = s.store.DefaultListIn(tx)
		}
		if err != nil {
			return err
		}
		if list.AddWord(word.ID) {
			list.ModifiedDate = s.store.Now()
			return s.store.Lists.UpdateIn(tx, list.ID, list)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Added = created
	s.indexWord(result.Word)
	return result, nil
}

// SearchWords returns saved words matching query, best match first.
func (s *WordService) SearchWords(ctx context.Context, query string, limit int) ([]*domain.Word, error) {
	if s.index == nil {
		return nil, apperrors.Internal("search index not configured")
	}

	ids, err := s.index.SearchWords(ctx, query, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "search failed")
	}

	words := make([]*domain.Word, 0, len(ids))
	err = s.store.View(ctx, func(tx *store.Txn) error {
		for _, wordID := range ids {
			word, err := s.store.Words.GetIn(tx, wordID)
			if errors.Is(err, store.ErrNotFound) {
				// Index lags a delete; skip.
				continue
			}
			if err != nil {
				return err
			}
			words = append(words, word)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return words, nil
}

// ReindexWords rebuilds the search entries of every saved word.
func (s *WordService) ReindexWords(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}
	words, err := s.store.Words.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, w := range words {
		if err := s.index.IndexWord(w); err != nil {
			return 0, fmt.Errorf("index word %s: %w", w.ID, err)
		}
	}
	return len(words), nil
}

func (s *WordService) indexWord(w *domain.Word) {
	if s.index == nil || w == nil {
		return
	}
	if err := s.index.IndexWord(w); err != nil {
		s.logger.Warn("failed to index word", "word_id", w.ID, "error", err)
	}
}
