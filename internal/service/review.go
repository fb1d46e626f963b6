package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vocabkeep/vocabkeep/internal/domain"
	apperrors "github.com/vocabkeep/vocabkeep/internal/errors"
	"github.com/vocabkeep/vocabkeep/internal/scheduler"
	"github.com/vocabkeep/vocabkeep/internal/store"
)

// ReviewService applies review outcomes and builds review sessions.
type ReviewService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(store *store.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:  store,
		logger: orDiscard(logger),
	}
}

// ReviewResult is the schedule a review produced.
// NextReviewDate and NextIntervalDays are nil once a word is mastered.
type ReviewResult struct {
	Word             *domain.Word `json:"word"`
	NextReviewDate   *time.Time   `json:"nextReviewDate"`
	NextIntervalDays *int         `json:"nextIntervalDays"`
}

// SubmitReview records one review of a word: it reschedules the word and
// folds the outcome into the stats, both in one transaction.
func (s *ReviewService) SubmitReview(ctx context.Context, wordID string, outcome scheduler.Outcome, timeSpent time.Duration) (*ReviewResult, error) {
	if wordID == "" {
		return nil, apperrors.Validation("wordId is required")
	}
	if !outcome.Valid() {
		return nil, apperrors.Validationf("outcome must be one of: known unknown mastered skipped, got %q", outcome)
	}
	if timeSpent < 0 {
		return nil, apperrors.Validation("timeSpent must not be negative")
	}

	var result *ReviewResult
	err := s.store.Update(ctx, func(tx *store.Txn) error {
		now := s.store.Now()

		word, err := s.store.Words.GetIn(tx, wordID)
		if err != nil {
			return notFound(err, "word", wordID)
		}
		stats, _, err := s.store.Stats.GetOrCreateIn(tx)
		if err != nil {
			return err
		}

		wasMastered := word.IsMastered()

		interval := scheduler.CurrentInterval(word.LastReviewed, now)
		nextDays, scheduled := scheduler.CalculateNextInterval(interval, outcome)

		result = &ReviewResult{}
		word.LastReviewed = &now
		word.NextReview = nil
		if scheduled {
			next := scheduler.NextReviewDate(nextDays, now)
			word.NextReview = &next
			result.NextReviewDate = &next
			result.NextIntervalDays = &nextDays
		}
		word.RecordReview(now, outcome.Correct())
		word.UpdatedAt = now

		if err := s.store.Words.UpdateIn(tx, word.ID, word); err != nil {
			return fmt.Errorf("update word: %w", err)
		}

		switch {
		case word.IsMastered() && !wasMastered:
			stats.WordsLearned++
		case wasMastered && !word.IsMastered():
			stats.WordsLearned = max(stats.WordsLearned-1, 0)
		}
		stats.RecordReview(now, outcome.Correct())

		if err := s.store.Stats.PutIn(tx, stats); err != nil {
			return fmt.Errorf("update stats: %w", err)
		}

		result.Word = word
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review submitted",
		"word_id", wordID,
		"outcome", outcome,
		"time_spent_ms", timeSpent.Milliseconds(),
		"mastered", result.Word.IsMastered(),
	)
	return result, nil
}

// ReviewQueue returns the words to review now, most overdue first.
// maxWords <= 0 uses the review session size from settings.
func (s *ReviewService) ReviewQueue(ctx context.Context, maxWords int) ([]*domain.Word, error) {
	if maxWords <= 0 {
		settings, err := s.store.Settings.GetOrCreate(ctx)
		if err != nil {
			return nil, err
		}
		maxWords = settings.ReviewSessionSize
	}

	now := s.store.Now()
	due, err := s.store.WordsDue(ctx, now)
	if err != nil {
		return nil, err
	}
	return scheduler.ReviewQueue(due, now, maxWords), nil
}
