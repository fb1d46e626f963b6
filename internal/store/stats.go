package store

import (
	"time"

	"github.com/vocabkeep/vocabkeep/internal/domain"
)

func (s *Store) initStats() {
	s.Stats = newSingleton(s, "stats", func(tx *Txn, now time.Time) (*domain.Stats, error) {
		stats := domain.NewStats(now)

		// Words can predate the stats record; start the counters from what is stored.
		words, err := s.Words.ListIn(tx)
		if err != nil {
			return nil, err
		}
		stats.TotalWords = len(words)
		for _, w := range words {
			if w.IsMastered() {
				stats.WordsLearned++
			}
		}
		return stats, nil
	})
}
