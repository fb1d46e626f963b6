// Package scheduler computes spaced-repetition intervals and review queues.
// Every function is pure: callers pass the current time and get plain values back.
package scheduler

import (
	"math"
	"slices"
	"time"

	"github.com/vocabkeep/vocabkeep/internal/domain"
)

// Outcome is the user's answer to one review prompt.
type Outcome string

// Outcome values.
const (
	OutcomeKnown    Outcome = "known"
	OutcomeUnknown  Outcome = "unknown"
	OutcomeMastered Outcome = "mastered"
	OutcomeSkipped  Outcome = "skipped"
)

// Valid reports whether o is a recognized outcome.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeKnown, OutcomeUnknown, OutcomeMastered, OutcomeSkipped:
		return true
	default:
		return false
	}
}

// Correct reports whether o counts as a correct answer in review history and stats.
func (o Outcome) Correct() bool {
	return o == OutcomeKnown || o == OutcomeMastered
}

// DefaultQueueSize bounds a review queue when the caller passes no limit.
const DefaultQueueSize = 30

// ladder is the sequence of intervals, in days, a word climbs while it keeps being known.
var ladder = []int{1, 3, 7, 14, 30, 60}

// CalculateNextInterval returns the interval in days after a review with the given outcome.
// scheduled is false for mastered words, which need no further review.
//
// A known word moves to the next rung of the ladder above its current interval;
// past the top rung the interval doubles. Non-positive intervals also double
// (0 stays 0, -1 becomes -2); callers should not pass them.
func CalculateNextInterval(currentDays int, outcome Outcome) (days int, scheduled bool) {
	switch outcome {
	case OutcomeMastered:
		return 0, false
	case OutcomeUnknown:
		return 1, true
	case OutcomeSkipped:
		return currentDays, true
	}

	if currentDays <= 0 {
		return currentDays * 2, true
	}
	for _, rung := range ladder {
		if rung > currentDays {
			return rung, true
		}
	}
	return currentDays * 2, true
}

// CurrentInterval returns the whole days since lastReviewed, rounded up, at least 1.
// A word never reviewed has an interval of 1.
func CurrentInterval(lastReviewed *time.Time, now time.Time) int {
	if lastReviewed == nil {
		return 1
	}
	elapsed := now.Sub(*lastReviewed)
	days := int(math.Ceil(elapsed.Hours() / 24))
	return max(days, 1)
}

// NextReviewDate returns now shifted by intervalDays whole days.
// Zero and negative intervals are allowed.
func NextReviewDate(intervalDays int, now time.Time) time.Time {
	return now.Add(time.Duration(intervalDays) * 24 * time.Hour)
}

// ReviewQueue returns the words due at now, most overdue first, at most maxWords of them.
// maxWords <= 0 selects DefaultQueueSize. Words with equal due times keep their input order.
func ReviewQueue(words []*domain.Word, now time.Time, maxWords int) []*domain.Word {
	if maxWords <= 0 {
		maxWords = DefaultQueueSize
	}

	due := make([]*domain.Word, 0, len(words))
	for _, w := range words {
		if w != nil && w.IsDue(now) {
			due = append(due, w)
		}
	}

	slices.SortStableFunc(due, func(a, b *domain.Word) int {
		return a.NextReview.Compare(*b.NextReview)
	})

	if len(due) > maxWords {
		due = due[:maxWords]
	}
	return due
}
