package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/vocabkeep/vocabkeep/internal/domain"
	apperrors "github.com/vocabkeep/vocabkeep/internal/errors"
	"github.com/vocabkeep/vocabkeep/internal/id"
	"github.com/vocabkeep/vocabkeep/internal/store"
	"github.com/vocabkeep/vocabkeep/internal/validation"
)

// ListService manages word lists.
type ListService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewListService creates a new list service.
func NewListService(store *store.Store, validator *validation.Validator, logger *slog.Logger) *ListService {
	return &ListService{
		store:     store,
		validator: validator,
		logger:    orDiscard(logger),
	}
}

// AddListRequest is the payload of AddList.
type AddListRequest struct {
	Name        string `json:"name" validate:"nonblank,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// AddList creates an empty, non-default list. Names are unique ignoring case.
func (s *ListService) AddList(ctx context.Context, name, description string) (*domain.List, error) {
	req := AddListRequest{Name: name, Description: description}
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	var list *domain.List
	err := s.store.Update(ctx, func(tx *store.Txn) error {
		listID, err := id.NewListID()
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "generate list id")
		}
		list = domain.NewList(listID, name, description, s.store.Now())
		return s.store.Lists.CreateIn(tx, list.ID, list)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, apperrors.Duplicatef("list %q already exists", strings.TrimSpace(name))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("list created", "list_id", list.ID, "name", list.Name)
	return list, nil
}

// GetList returns a list by ID.
func (s *ListService) GetList(ctx context.Context, listID string) (*domain.List, error) {
	list, err := s.store.Lists.Get(ctx, listID)
	if err != nil {
		return nil, notFound(err, "list", listID)
	}
	return list, nil
}

// ListLists returns every list, the default first, then oldest first.
func (s *ListService) ListLists(ctx context.Context) ([]*domain.List, error) {
	lists, err := s.store.Lists.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(lists, func(a, b *domain.List) int {
		switch {
		case a.IsDefault && !b.IsDefault:
			return -1
		case b.IsDefault && !a.IsDefault:
			return 1
		}
		return a.CreatedDate.Compare(b.CreatedDate)
	})
	return lists, nil
}

// GetListWords returns the words of a list in membership order.
func (s *ListService) GetListWords(ctx context.Context, listID string) ([]*domain.Word, error) {
	var words []*domain.Word
	err := s.store.View(ctx, func(tx *store.Txn) error {
		list, err := s.store.Lists.GetIn(tx, listID)
		if err != nil {
			return notFound(err, "list", listID)
		}

		words = make([]*domain.Word, 0, len(list.WordIDs))
		for _, wordID := range list.WordIDs {
			word, err := s.store.Words.GetIn(tx, wordID)
			if errors.Is(err, store.ErrNotFound) {
				s.logger.Warn("list references missing word", "list_id", listID, "word_id", wordID)
				continue
			}
			if err != nil {
				return fmt.Errorf("resolve word %s of list %s: %w", wordID, listID, err)
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

// ListUpdate contains the fields that can be edited on a list.
type ListUpdate struct {
	ID          string  `json:"id" validate:"required"`
	Name        *string `json:"name" validate:"omitnil,nonblank,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
	// IsDefault true promotes the list and demotes the previous default.
	// A default list can't be demoted directly; promote another list instead.
	IsDefault *bool `json:"isDefault"`
}

// UpdateList renames, re-describes or promotes a list.
func (s *ListService) UpdateList(ctx context.Context, update *ListUpdate) (*domain.List, error) {
	if err := s.validator.Validate(update); err != nil {
		return nil, err
	}

	var list *domain.List
	err := s.store.Update(ctx, func(tx *store.Txn) error {
		var err error
		list, err = s.store.Lists.GetIn(tx, update.ID)
		if err != nil {
			return notFound(err, "list", update.ID)
		}

		if update.IsDefault != nil {
			switch {
			case *update.IsDefault && !list.IsDefault:
				if list, err = s.promoteIn(tx, list.ID); err != nil {
					return err
				}
			case !*update.IsDefault && list.IsDefault:
				return apperrors.Validation("the default list can't be unset; promote another list instead")
			}
		}

		if update.Name != nil {
			list.Name = strings.TrimSpace(*update.Name)
		}
		if update.Description != nil {
			list.Description = *update.Description
		}
		list.ModifiedDate = s.store.Now()

		if err := s.store.Lists.UpdateIn(tx, list.ID, list); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return apperrors.Duplicatef("list %q already exists", list.Name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// promoteIn makes listID the default list and points settings at it.
func (s *ListService) promoteIn(tx *store.Txn, listID string) (*domain.List, error) {
	list, err := s.store.PromoteDefaultListIn(tx, listID)
	if err != nil {
		return nil, notFound(err, "list", listID)
	}

	settings, _, err := s.store.Settings.GetOrCreateIn(tx)
	if err != nil {
		return nil, err
	}
	if settings.DefaultListID != list.ID {
		settings.DefaultListID = list.ID
		settings.UpdatedAt = s.store.Now()
		if err := s.store.Settings.PutIn(tx, settings); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// AddWordToList adds a word to a list. Adding a member again is a no-op.
func (s *ListService) AddWordToList(ctx context.Context, wordID, listID string) error {
	if wordID == "" || listID == "" {
		return apperrors.Validation("wordId and listId are required")
	}

	return s.store.Update(ctx, func(tx *store.Txn) error {
		// Touching the word makes a concurrent delete of it conflict with
		// this add instead of leaving a dangling id in the list.
		if err := s.store.Words.TouchIn(tx, wordID); err != nil {
			return notFound(err, "word", wordID)
		}

		list, err := s.store.Lists.GetIn(tx, listID)
		if err != nil {
			return notFound(err, "list", listID)
		}

		if !list.AddWord(wordID) {
			return nil
		}
		list.ModifiedDate = s.store.Now()
		return s.store.Lists.UpdateIn(tx, list.ID, list)
	})
}

// RemoveWordFromList removes a word from a list. Removing a non-member is a no-op.
func (s *ListService) RemoveWordFromList(ctx context.Context, wordID, listID string) error {
	if wordID == "" || listID == "" {
		return apperrors.Validation("wordId and listId are required")
	}

	return s.store.Update(ctx, func(tx *store.Txn) error {
		list, err := s.store.Lists.GetIn(tx, listID)
		if err != nil {
			return notFound(err, "list", listID)
		}

		if !list.RemoveWord(wordID) {
			return nil
		}
		list.ModifiedDate = s.store.Now()
		return s.store.Lists.UpdateIn(tx, list.ID, list)
	})
}

// GetDefaultList returns the default list.
// Fails with a storage error if the store was never initialized.
func (s *ListService) GetDefaultList(ctx context.Context) (*domain.List, error) {
	var list *domain.List
	err := s.store.View(ctx, func(tx *store.Txn) error {
		var err error
		list, err = s.store.DefaultListIn(tx)
		return err
	})
	return list, err
}

// DeleteList removes a list record; its words are kept.
// Deleting a missing list is a no-op. The default list can't be deleted.
func (s *ListService) DeleteList(ctx context.Context, listID string) error {
	var deleted bool
	err := s.store.Update(ctx, func(tx *store.Txn) error {
		list, err := s.store.Lists.GetIn(tx, listID)
		if errors.Is(err, store.ErrNotFound) {
			deleted = false
			return nil
		}
		if err != nil {
			return err
		}
		if list.IsDefault {
			return apperrors.Validation("the default list can't be deleted")
		}

		deleted, err = s.store.Lists.DeleteIn(tx, listID)
		return err
	})
	if err != nil {
		return err
	}

	if deleted {
		s.logger.Info("list deleted", "list_id", listID)
	}
	return nil
}
