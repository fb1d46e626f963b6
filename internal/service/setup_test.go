package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vocabkeep/vocabkeep/internal/dictionary"
	"github.com/vocabkeep/vocabkeep/internal/domain"
	"github.com/vocabkeep/vocabkeep/internal/search"
	"github.com/vocabkeep/vocabkeep/internal/store"
	"github.com/vocabkeep/vocabkeep/internal/validation"
)

// testClock is a settable time source shared by the store and services.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store    *store.Store
	clock    *testClock
	index    *search.SearchIndex
	words    *WordService
	lists    *ListService
	settings *SettingsService
	reviews  *ReviewService
}

var testEntries = []domain.DictionaryEntry{
	{
		Word:          "ephemeral",
		Pronunciation: "/ɪˈfɛm(ə)rəl/",
		Definitions:   []domain.Definition{{PartOfSpeech: "adjective", Meaning: "lasting a very short time", Examples: []string{}}},
		Synonyms:      []string{"fleeting"},
		Antonyms:      []string{"permanent"},
	},
	{
		Word:        "receive",
		Definitions: []domain.Definition{{PartOfSpeech: "verb", Meaning: "be given", Examples: []string{}}},
	},
}

func setupTestEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "service-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	testStore, err := store.New(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	testStore.SetClock(clock.Now)
	require.NoError(t, testStore.Init(context.Background()))

	index, err := search.NewSearchIndex(search.Options{InMemory: true, Logger: logger})
	require.NoError(t, err)

	dict, err := dictionary.NewFromEntries(testEntries, index, logger)
	require.NoError(t, err)

	v := validation.New()
	lists := NewListService(testStore, v, logger)

	env := &testEnv{
		store:    testStore,
		clock:    clock,
		index:    index,
		words:    NewWordService(testStore, dict, index, v, logger),
		lists:    lists,
		settings: NewSettingsService(testStore, lists, v, logger),
		reviews:  NewReviewService(testStore, logger),
	}

	cleanup := func() {
		_ = index.Close()
		_ = testStore.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return env, cleanup
}

func defs(meaning string) []domain.Definition {
	return []domain.Definition{{PartOfSpeech: "noun", Meaning: meaning, Examples: []string{}}}
}

func ptr[T any](v T) *T {
	return &v
}
