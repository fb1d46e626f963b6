// Package main provides a tool to seed a store with sample words and review history.
//
// Words are added as if looked up over the past days, then reviewed day by day
// with a simulated clock so streaks, intervals and accuracy look realistic.
//
// Usage:
//
//	DATA_PATH=./data go run ./cmd/seed
//	go run ./cmd/seed -data-path ./data -days 21 -accuracy 0.8
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/vocabkeep/vocabkeep/internal/domain"
	"github.com/vocabkeep/vocabkeep/internal/logger"
	"github.com/vocabkeep/vocabkeep/internal/scheduler"
	"github.com/vocabkeep/vocabkeep/internal/service"
	"github.com/vocabkeep/vocabkeep/internal/store"
	"github.com/vocabkeep/vocabkeep/internal/validation"
)

type sample struct {
	text, partOfSpeech, meaning string
}

var samples = []sample{
	{"ephemeral", "adjective", "lasting for a very short time"},
	{"serendipity", "noun", "the occurrence of events by chance in a happy way"},
	{"gregarious", "adjective", "fond of company; sociable"},
	{"laconic", "adjective", "using very few words"},
	{"obfuscate", "verb", "to make obscure or unclear"},
	{"quixotic", "adjective", "exceedingly idealistic; unrealistic"},
	{"sycophant", "noun", "a person who acts obsequiously to gain advantage"},
	{"ubiquitous", "adjective", "present, appearing, or found everywhere"},
	{"perfunctory", "adjective", "carried out with minimum effort or reflection"},
	{"mellifluous", "adjective", "sweet or musical; pleasant to hear"},
	{"pernicious", "adjective", "having a harmful effect, especially gradually"},
	{"sanguine", "adjective", "optimistic, especially in a bad situation"},
	{"recalcitrant", "adjective", "having an uncooperative attitude"},
	{"vicissitude", "noun", "a change of circumstances, typically unwelcome"},
	{"zeitgeist", "noun", "the defining spirit of a particular period"},
}

func main() {
	dataPath := flag.String("data-path", os.Getenv("DATA_PATH"), "Directory of the record store")
	days := flag.Int("days", 14, "Days of review history to simulate")
	accuracy := flag.Float64("accuracy", 0.75, "Probability of answering a review correctly")
	listName := flag.String("list", "Seeded words", "List to put the seeded words in")
	flag.Parse()

	if *dataPath == "" {
		*dataPath = os.ExpandEnv("$HOME/VocabKeep/data")
	}

	fmt.Printf("Opening store at: %s\n", *dataPath)

	log := logger.New(logger.Config{Level: logger.ParseLevel("warn")})
	s, err := store.New(*dataPath, log)
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	// Simulated clock, starting days ago.
	clock := time.Now().UTC().Truncate(time.Hour).AddDate(0, 0, -*days)
	s.SetClock(func() time.Time { return clock })

	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		log.Error("failed to init store", "error", err)
		os.Exit(1)
	}

	validator := validation.New()
	words := service.NewWordService(s, nil, nil, validator, log)
	lists := service.NewListService(s, validator, log)
	reviews := service.NewReviewService(s, log)

	list, err := lists.AddList(ctx, *listName, "Sample words created by the seed tool")
	if err != nil {
		log.Error("failed to create list", "name", *listName, "error", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))

	// Add a few words each day, then review the new words and whatever is due.
	added := 0
	reviewed := 0
	for day := 0; day <= *days; day++ {
		var fresh []*domain.Word
		for n := rng.IntN(3); n >= 0 && added < len(samples); n-- {
			sm := samples[added]
			w, err := words.AddWord(ctx, sm.text, []domain.Definition{{
				PartOfSpeech: sm.partOfSpeech,
				Meaning:      sm.meaning,
			}})
			if err != nil {
				log.Warn("failed to add word", "text", sm.text, "error", err)
				added++
				continue
			}
			if err := lists.AddWordToList(ctx, w.ID, list.ID); err != nil {
				log.Warn("failed to add word to list", "text", sm.text, "error", err)
			}
			fresh = append(fresh, w)
			added++
		}

		due, err := words.GetWordsDueForReview(ctx, clock)
		if err != nil {
			log.Error("failed to read due words", "error", err)
			os.Exit(1)
		}
		for _, w := range append(due, fresh...) {
			outcome := scheduler.OutcomeUnknown
			switch r := rng.Float64(); {
			case r < *accuracy*0.1:
				outcome = scheduler.OutcomeMastered
			case r < *accuracy:
				outcome = scheduler.OutcomeKnown
			}
			spent := time.Duration(2+rng.IntN(10)) * time.Second
			if _, err := reviews.SubmitReview(ctx, w.ID, outcome, spent); err != nil {
				log.Warn("failed to submit review", "word_id", w.ID, "error", err)
				continue
			}
			reviewed++
		}

		clock = clock.AddDate(0, 0, 1)
	}

	stats, err := s.Stats.GetOrCreate(ctx)
	if err != nil {
		log.Error("failed to read stats", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Added %d words to %q and submitted %d reviews\n", added, list.Name, reviewed)
	fmt.Printf("Streak %d (longest %d), accuracy %d%%, learned %d\n",
		stats.CurrentStreak, stats.LongestStreak, stats.AccuracyRate, stats.WordsLearned)
}
