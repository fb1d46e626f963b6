package service

import (
	"context"

	"github.com/vocabkeep/vocabkeep/internal/domain"
	"github.com/vocabkeep/vocabkeep/internal/store"
)

// GetOrCreateStats returns the stats, creating them on first access.
func (s *SettingsService) GetOrCreateStats(ctx context.Context) (*domain.Stats, error) {
	return s.store.Stats.GetOrCreate(ctx)
}

// StatsUpdate contains counters that can be overwritten. Nil fields are left alone.
// When the review counters change and AccuracyRate is not given, accuracy is recomputed.
type StatsUpdate struct {
	TotalWords     *int `json:"totalWords" validate:"omitnil,gte=0"`
	WordsLearned   *int `json:"wordsLearned" validate:"omitnil,gte=0"`
	CurrentStreak  *int `json:"currentStreak" validate:"omitnil,gte=0"`
	LongestStreak  *int `json:"longestStreak" validate:"omitnil,gte=0"`
	TotalReviews   *int `json:"totalReviews" validate:"omitnil,gte=0"`
	CorrectReviews *int `json:"correctReviews" validate:"omitnil,gte=0"`
	AccuracyRate   *int `json:"accuracyRate" validate:"omitnil,gte=0,lte=100"`
}

// UpdateStats merges update into the stats.
func (s *SettingsService) UpdateStats(ctx context.Context, update *StatsUpdate) (*domain.Stats, error) {
	if err := s.validator.Validate(update); err != nil {
		return nil, err
	}

	var stats *domain.Stats
	err := s.store.Update(ctx, func(tx *store.Txn) error {
		var err error
		stats, _, err = s.store.Stats.GetOrCreateIn(tx)
		if err != nil {
			return err
		}

		setInt(&stats.TotalWords, update.TotalWords)
		setInt(&stats.WordsLearned, update.WordsLearned)
		setInt(&stats.CurrentStreak, update.CurrentStreak)
		setInt(&stats.LongestStreak, update.LongestStreak)
		setInt(&stats.TotalReviews, update.TotalReviews)
		setInt(&stats.CorrectReviews, update.CorrectReviews)

		stats.CorrectReviews = min(stats.CorrectReviews, stats.TotalReviews)
		stats.LongestStreak = max(stats.LongestStreak, stats.CurrentStreak)

		switch {
		case update.AccuracyRate != nil:
			stats.AccuracyRate = *update.AccuracyRate
		case update.TotalReviews != nil || update.CorrectReviews != nil:
			stats.AccuracyRate = domain.AccuracyRate(stats.CorrectReviews, stats.TotalReviews)
		}
		stats.UpdatedAt = s.store.Now()

		return s.store.Stats.PutIn(tx, stats)
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
