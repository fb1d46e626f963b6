// Package main provides a read-only inspection tool for a vocabkeep record store.
//
// Usage:
//
//	DATA_PATH=~/VocabKeep/data go run ./cmd/dbinspect
//	go run ./cmd/dbinspect -data-path ./data -json > snapshot.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/vocabkeep/vocabkeep/internal/store"
)

func main() {
	dataPath := flag.String("data-path", os.Getenv("DATA_PATH"), "Directory of the record store")
	asJSON := flag.Bool("json", false, "Dump the whole snapshot as JSON")
	limit := flag.Int("limit", 10, "Words to show per section")
	flag.Parse()

	if *dataPath == "" {
		*dataPath = os.ExpandEnv("$HOME/VocabKeep/data")
	}

	s, err := store.OpenReadOnly(*dataPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Ping(ctx); err != nil {
		log.Fatalf("Store at %s is not usable: %v", *dataPath, err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		log.Fatalf("Failed to read snapshot: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			log.Fatalf("Failed to encode snapshot: %v", err)
		}
		return
	}

	now := s.Now()

	fmt.Println("=== Store Inspection ===")
	fmt.Printf("Path: %s\n\n", *dataPath)

	// Words, most looked-up first.
	words := snap.Words
	sort.SliceStable(words, func(i, j int) bool { return words[i].LookupCount > words[j].LookupCount })

	due, mastered := 0, 0
	for _, w := range words {
		switch {
		case w.NextReview == nil && w.LastReviewed != nil:
			mastered++
		case w.NextReview != nil && !w.NextReview.After(now):
			due++
		}
	}

	fmt.Printf("Words: %d (due now: %d, mastered: %d)\n", len(words), due, mastered)
	for i, w := range words {
		if i >= *limit {
			fmt.Printf("  ... and %d more words\n", len(words)-*limit)
			break
		}
		next := "never"
		if w.NextReview != nil {
			next = w.NextReview.Format("2006-01-02")
		}
		fmt.Printf("  %-24s lookups=%-3d difficulty=%-6s reviews=%-3d next=%s\n",
			w.Text, w.LookupCount, w.Difficulty, len(w.ReviewHistory), next)
	}
	fmt.Println()

	fmt.Printf("Lists: %d\n", len(snap.Lists))
	for _, l := range snap.Lists {
		marker := ""
		if l.IsDefault {
			marker = " (default)"
		}
		fmt.Printf("  %s%s: %d words [%s]\n", l.Name, marker, len(l.WordIDs), l.ID)
	}
	fmt.Println()

	if snap.Settings != nil {
		fmt.Println("=== Settings ===")
		fmt.Printf("Theme: %s\n", snap.Settings.Theme)
		fmt.Printf("Auto add to list: %t\n", snap.Settings.AutoAddToList)
		fmt.Printf("Review session size: %d\n", snap.Settings.ReviewSessionSize)
		fmt.Printf("Daily reminder: %t at %s\n", snap.Settings.DailyReviewReminder, snap.Settings.ReminderTime)
		fmt.Println()
	}

	fmt.Println("=== Stats ===")
	if snap.Stats == nil {
		fmt.Println("No stats recorded yet")
		return
	}
	fmt.Printf("Total words: %d\n", snap.Stats.TotalWords)
	fmt.Printf("Words learned: %d\n", snap.Stats.WordsLearned)
	fmt.Printf("Streak: %d (longest %d)\n", snap.Stats.CurrentStreak, snap.Stats.LongestStreak)
	fmt.Printf("Reviews: %d (accuracy %d%%)\n", snap.Stats.TotalReviews, snap.Stats.AccuracyRate)
}
