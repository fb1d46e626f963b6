package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocabkeep/vocabkeep/internal/domain"
)

func TestCalculateNextInterval_KnownLadder(t *testing.T) {
	tests := []struct {
		current int
		want    int
	}{
		{1, 3},
		{3, 7},
		{7, 14},
		{14, 30},
		{30, 60},
		{60, 120},
		{90, 180},
		{2, 3},
		{45, 60},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.current), func(t *testing.T) {
			got, scheduled := CalculateNextInterval(tt.current, OutcomeKnown)
			assert.True(t, scheduled)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateNextInterval_NonPositiveDoubles(t *testing.T) {
	got, scheduled := CalculateNextInterval(0, OutcomeKnown)
	assert.True(t, scheduled)
	assert.Equal(t, 0, got)

	got, _ = CalculateNextInterval(-1, OutcomeKnown)
	assert.Equal(t, -2, got)
}

func TestCalculateNextInterval_OtherOutcomes(t *testing.T) {
	for _, current := range []int{1, 7, 60, 365} {
		got, scheduled := CalculateNextInterval(current, OutcomeUnknown)
		assert.True(t, scheduled)
		assert.Equal(t, 1, got)

		_, scheduled = CalculateNextInterval(current, OutcomeMastered)
		assert.False(t, scheduled)
	}

	got, scheduled := CalculateNextInterval(7, OutcomeSkipped)
	assert.True(t, scheduled)
	assert.Equal(t, 7, got)
}

func TestCurrentInterval(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	assert.Equal(t, 1, CurrentInterval(nil, now))
	assert.Equal(t, 1, CurrentInterval(at(0), now))
	assert.Equal(t, 1, CurrentInterval(at(-time.Hour), now))
	assert.Equal(t, 1, CurrentInterval(at(time.Hour), now), "future last review")
	assert.Equal(t, 2, CurrentInterval(at(-25*time.Hour), now))
	assert.Equal(t, 3, CurrentInterval(at(-72*time.Hour), now))
}

func TestNextReviewDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(72*time.Hour), NextReviewDate(3, now))
	assert.Equal(t, now, NextReviewDate(0, now))
	assert.Equal(t, now.Add(-24*time.Hour), NextReviewDate(-1, now))
}

func wordDue(id string, next *time.Time) *domain.Word {
	w := domain.NewWord(id, id, nil, time.Time{})
	w.NextReview = next
	return w
}

func TestReviewQueue_Ordering(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	words := []*domain.Word{
		wordDue("minus1", at(-24*time.Hour)),
		wordDue("plus1", at(24*time.Hour)),
		wordDue("never", nil),
		wordDue("minus3", at(-72*time.Hour)),
	}

	queue := ReviewQueue(words, now, 0)
	require.Len(t, queue, 2)
	assert.Equal(t, "minus3", queue[0].ID)
	assert.Equal(t, "minus1", queue[1].ID)
}

func TestReviewQueue_Bound(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	words := make([]*domain.Word, 0, 50)
	for i := range 50 {
		next := now.Add(-time.Duration(i+1) * time.Hour)
		words = append(words, wordDue(fmt.Sprintf("w%02d", i), &next))
	}

	queue := ReviewQueue(words, now, 10)
	require.Len(t, queue, 10)
	for i, w := range queue {
		assert.Equal(t, fmt.Sprintf("w%02d", 49-i), w.ID)
	}
}

func TestReviewQueue_DefaultBoundAndStableTies(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	same := now.Add(-time.Hour)

	words := make([]*domain.Word, 0, 40)
	for i := range 40 {
		words = append(words, wordDue(fmt.Sprintf("w%02d", i), &same))
	}

	queue := ReviewQueue(words, now, -5)
	require.Len(t, queue, DefaultQueueSize)
	for i, w := range queue {
		assert.Equal(t, fmt.Sprintf("w%02d", i), w.ID)
	}
}

func TestOutcome(t *testing.T) {
	assert.True(t, OutcomeKnown.Correct())
	assert.True(t, OutcomeMastered.Correct())
	assert.False(t, OutcomeUnknown.Correct())
	assert.False(t, OutcomeSkipped.Correct())
	assert.True(t, OutcomeSkipped.Valid())
	assert.False(t, Outcome("maybe").Valid())
}
