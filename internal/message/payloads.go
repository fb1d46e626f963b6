package message

import "github.com/vocabkeep/vocabkeep/internal/scheduler"

type idPayload struct {
	ID string `json:"id" validate:"required"`
}

type textPayload struct {
	Text string `json:"text" validate:"nonblank,max=200"`
}

type searchPayload struct {
	Query string `json:"query" validate:"nonblank,max=200"`
	Limit int    `json:"limit" validate:"gte=0,lte=100"`
}

type listIDPayload struct {
	ListID string `json:"listId" validate:"required"`
}

type membershipPayload struct {
	WordID string `json:"wordId" validate:"required"`
	ListID string `json:"listId" validate:"required"`
}

type submitReviewPayload struct {
	WordID  string            `json:"wordId" validate:"required"`
	Outcome scheduler.Outcome `json:"outcome" validate:"required,oneof=known unknown mastered skipped"`
	// TimeSpent is in milliseconds.
	TimeSpent int64 `json:"timeSpent" validate:"gte=0"`
}

type reviewQueuePayload struct {
	MaxWords int `json:"maxWords" validate:"gte=0,lte=200"`
}

type emptyPayload struct{}
