package store

import (
	"context"
	"time"

	"github.com/vocabkeep/vocabkeep/internal/domain"
)

const wordPrefix = "word:"

// Word index names.
const (
	WordIndexNormalizedText = "normalizedText"
	WordIndexNextReview     = "nextReview"
)

func (s *Store) initWords() {
	s.Words = NewEntity[domain.Word](s, wordPrefix).
		WithUniqueIndexTransform(WordIndexNormalizedText, func(w *domain.Word) []string {
			return []string{w.NormalizedText}
		}, domain.NormalizeText).
		WithIndex(WordIndexNextReview, func(w *domain.Word) []string {
			// Unscheduled and mastered words stay out of the due index.
			if w.NextReview == nil {
				return nil
			}
			return []string{formatTimestampKey(*w.NextReview)}
		})
}

// WordByTextIn finds a word by its text, normalizing it first.
func (s *Store) WordByTextIn(tx *Txn, text string) (*domain.Word, error) {
	return s.Words.LookupIn(tx, WordIndexNormalizedText, text)
}

// WordsDueIn returns the words whose next review is at or before now, earliest first.
func (s *Store) WordsDueIn(tx *Txn, now time.Time) ([]*domain.Word, error) {
	return s.Words.ScanIn(tx, WordIndexNextReview, AtMost(formatTimestampKey(now)))
}

// WordsDue is WordsDueIn in its own read transaction.
func (s *Store) WordsDue(ctx context.Context, now time.Time) ([]*domain.Word, error) {
	var words []*domain.Word
	err := s.View(ctx, func(tx *Txn) error {
		var err error
		words, err = s.WordsDueIn(tx, now)
		return err
	})
	return words, err
}
