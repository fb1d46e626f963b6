package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vocabkeep/vocabkeep/internal/domain"
	apperrors "github.com/vocabkeep/vocabkeep/internal/errors"
	"github.com/vocabkeep/vocabkeep/internal/store"
)

// Dictionary is the read-only dictionary collaborator.
type Dictionary interface {
	// Lookup returns nil, nil when the word is not in the dictionary.
	Lookup(ctx context.Context, text string) (*domain.DictionaryEntry, error)
	FuzzyMatch(ctx context.Context, text string, maxSuggestions int) ([]string, error)
}

// WordIndex keeps a search index in step with saved words.
// Index failures never fail the store write that triggered them.
type WordIndex interface {
	IndexWord(w *domain.Word) error
	DeleteWord(id string) error
	SearchWords(ctx context.Context, query string, limit int) ([]string, error)
}

// notFound turns a store miss into a not found error naming the record.
func notFound(err error, kind, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFoundf("%s %s not found", kind, id).WithCause(err)
	}
	return err
}

// orDiscard returns logger, or a logger that drops everything when nil.
func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
