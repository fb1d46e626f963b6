package store

import (
	"time"

	"github.com/vocabkeep/vocabkeep/internal/domain"
)

func (s *Store) initSettings() {
	s.Settings = newSingleton(s, "settings", func(tx *Txn, now time.Time) (*domain.Settings, error) {
		list, _, err := s.EnsureDefaultListIn(tx)
		if err != nil {
			return nil, err
		}
		return domain.NewSettings(list.ID, now), nil
	})
}
