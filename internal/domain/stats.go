package domain

import (
	"math"
	"time"
)

// Stats is the aggregate review statistics singleton.
type Stats struct {
	TotalWords     int        `json:"totalWords"`
	WordsLearned   int        `json:"wordsLearned"`
	CurrentStreak  int        `json:"currentStreak"`
	LongestStreak  int        `json:"longestStreak"`
	LastReviewDate *time.Time `json:"lastReviewDate"`
	TotalReviews   int        `json:"totalReviews"`
	CorrectReviews int        `json:"correctReviews"`
	AccuracyRate   int        `json:"accuracyRate"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewStats returns zeroed stats.
func NewStats(now time.Time) *Stats {
	return &Stats{UpdatedAt: now}
}

// RecordReview folds one review into the counters, accuracy and streaks.
//
// Streaks count calendar days (in now's location) with a correct review:
// a correct review on the same day as the last review keeps the streak,
// on the next day extends it, after a gap restarts it at 1.
// An incorrect review resets the current streak to 0.
func (s *Stats) RecordReview(now time.Time, correct bool) {
	s.TotalReviews++
	if correct {
		s.CorrectReviews++
	}
	s.AccuracyRate = AccuracyRate(s.CorrectReviews, s.TotalReviews)

	if correct {
		switch {
		case s.LastReviewDate == nil:
			s.CurrentStreak = 1
		default:
			switch DaysBetween(*s.LastReviewDate, now) {
			case 0:
				if s.CurrentStreak == 0 {
					s.CurrentStreak = 1
				}
			case 1:
				s.CurrentStreak++
			default:
				s.CurrentStreak = 1
			}
		}
	} else {
		s.CurrentStreak = 0
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}

	last := now
	s.LastReviewDate = &last
	s.UpdatedAt = now
}

// AccuracyRate returns the rounded percentage of correct reviews, 0 when there are none.
func AccuracyRate(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) * 100 / float64(total)))
}

// DaysBetween returns the number of calendar days from a to b, both taken in b's location.
// Negative when a is on a later day than b.
func DaysBetween(a, b time.Time) int {
	loc := b.Location()
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.Date()
	// Noon UTC avoids DST-length days skewing the division.
	da := time.Date(ay, am, ad, 12, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 12, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
