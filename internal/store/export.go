package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/vocabkeep/vocabkeep/internal/domain"
)

// Snapshot is a consistent copy of every record, taken in one read transaction.
type Snapshot struct {
	Words    []*domain.Word   `json:"words"`
	Lists    []*domain.List   `json:"lists"`
	Settings *domain.Settings `json:"settings"`
	Stats    *domain.Stats    `json:"stats"`
}

// Snapshot reads every collection at a single point in time.
// Settings and Stats are nil when they were never created.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	err := s.View(ctx, func(tx *Txn) error {
		var err error
		if snap.Words, err = s.Words.ListIn(tx); err != nil {
			return fmt.Errorf("snapshot words: %w", err)
		}
		if snap.Lists, err = s.Lists.ListIn(tx); err != nil {
			return fmt.Errorf("snapshot lists: %w", err)
		}
		if snap.Settings, err = optional(s.Settings.GetIn(tx)); err != nil {
			return fmt.Errorf("snapshot settings: %w", err)
		}
		if snap.Stats, err = optional(s.Stats.GetIn(tx)); err != nil {
			return fmt.Errorf("snapshot stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return v, err
}
