package store

import (
	"errors"
	"fmt"

	"github.com/vocabkeep/vocabkeep/internal/domain"
	"github.com/vocabkeep/vocabkeep/internal/id"
)

const listPrefix = "list:"

// List index names.
const (
	ListIndexName    = "name"
	ListIndexDefault = "default"
	ListIndexWord    = "word"
)

const defaultMarker = "1"

func (s *Store) initLists() {
	s.Lists = NewEntity[domain.List](s, listPrefix).
		WithUniqueIndexTransform(ListIndexName, func(l *domain.List) []string {
			return []string{domain.NormalizeListName(l.Name)}
		}, domain.NormalizeListName).
		// At most one list can hold the marker.
		WithUniqueIndex(ListIndexDefault, func(l *domain.List) []string {
			if !l.IsDefault {
				return nil
			}
			return []string{defaultMarker}
		}).
		// Reverse membership, so deleting a word finds its lists without a full scan.
		WithIndex(ListIndexWord, func(l *domain.List) []string {
			return l.WordIDs
		})
}

// DefaultListIn returns the default list, or ErrNotInitialized if there is none.
func (s *Store) DefaultListIn(tx *Txn) (*domain.List, error) {
	list, err := s.Lists.LookupIn(tx, ListIndexDefault, defaultMarker)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotInitialized
	}
	return list, err
}

// ListsContainingIn returns every list that has wordID as a member.
func (s *Store) ListsContainingIn(tx *Txn, wordID string) ([]*domain.List, error) {
	return s.Lists.ScanIn(tx, ListIndexWord, Exact(wordID))
}

// EnsureDefaultListIn returns the default list, creating it when missing.
// A user list already named like the default is promoted instead.
func (s *Store) EnsureDefaultListIn(tx *Txn) (*domain.List, bool, error) {
	list, err := s.Lists.LookupIn(tx, ListIndexDefault, defaultMarker)
	if err == nil {
		return list, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	now := s.now()

	existing, err := s.Lists.LookupIn(tx, ListIndexName, domain.DefaultListName)
	switch {
	case err == nil:
		existing.IsDefault = true
		existing.ModifiedDate = now
		if err := s.Lists.UpdateIn(tx, existing.ID, existing); err != nil {
			return nil, false, fmt.Errorf("promote default list: %w", err)
		}
		return existing, true, nil
	case !errors.Is(err, ErrNotFound):
		return nil, false, err
	}

	listID, err := id.NewListID()
	if err != nil {
		return nil, false, fmt.Errorf("generate list id: %w", err)
	}
	list = domain.NewList(listID, domain.DefaultListName, "", now)
	list.IsDefault = true
	if err := s.Lists.CreateIn(tx, list.ID, list); err != nil {
		return nil, false, fmt.Errorf("create default list: %w", err)
	}
	return list, true, nil
}

// PromoteDefaultListIn makes listID the default list, demoting the previous one.
// Returns the promoted list; ErrNotFound if listID does not exist.
func (s *Store) PromoteDefaultListIn(tx *Txn, listID string) (*domain.List, error) {
	list, err := s.Lists.GetIn(tx, listID)
	if err != nil {
		return nil, err
	}
	if list.IsDefault {
		return list, nil
	}

	now := s.now()

	current, err := s.DefaultListIn(tx)
	switch {
	case err == nil:
		current.IsDefault = false
		current.ModifiedDate = now
		// Demote first so the unique default marker is free.
		if err := s.Lists.UpdateIn(tx, current.ID, current); err != nil {
			return nil, fmt.Errorf("demote default list: %w", err)
		}
	case !errors.Is(err, ErrNotInitialized):
		return nil, err
	}

	list.IsDefault = true
	list.ModifiedDate = now
	if err := s.Lists.UpdateIn(tx, list.ID, list); err != nil {
		return nil, fmt.Errorf("promote default list: %w", err)
	}
	return list, nil
}
