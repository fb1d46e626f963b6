package message_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocabkeep/vocabkeep/internal/dictionary"
	"github.com/vocabkeep/vocabkeep/internal/domain"
	apperrors "github.com/vocabkeep/vocabkeep/internal/errors"
	"github.com/vocabkeep/vocabkeep/internal/export"
	"github.com/vocabkeep/vocabkeep/internal/message"
	"github.com/vocabkeep/vocabkeep/internal/search"
	"github.com/vocabkeep/vocabkeep/internal/service"
	"github.com/vocabkeep/vocabkeep/internal/store"
	"github.com/vocabkeep/vocabkeep/internal/validation"
)

func setupRouter(t *testing.T) *message.Router {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	dir := t.TempDir()

	s, err := store.New(filepath.Join(dir, "data"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	s.SetClock(func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) })
	require.NoError(t, s.Init(context.Background()))

	index, err := search.NewSearchIndex(search.Options{InMemory: true, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	dict, err := dictionary.NewFromEntries([]domain.DictionaryEntry{{
		Word:        "serendipity",
		Definitions: []domain.Definition{{PartOfSpeech: "noun", Meaning: "a happy accident", Examples: []string{}}},
	}}, index, logger)
	require.NoError(t, err)

	v := validation.New()
	lists := service.NewListService(s, v, logger)
	return message.NewRouter(message.Services{
		Words:    service.NewWordService(s, dict, index, v, logger),
		Lists:    lists,
		Settings: service.NewSettingsService(s, lists, v, logger),
		Reviews:  service.NewReviewService(s, logger),
		Exporter: export.New(s, filepath.Join(dir, "exports"), logger),
	}, v, logger)
}

func call(t *testing.T, r *message.Router, action string, payload any) message.Response {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		raw = data
	}
	return r.Handle(context.Background(), message.Request{ID: "req-1", Action: action, Payload: raw})
}

// decode round-trips a response's data through JSON the way the extension sees it.
func decode[T any](t *testing.T, resp message.Response) T {
	t.Helper()
	require.True(t, resp.Success, "action failed: %s (%s)", resp.Error, resp.Code)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestRouter_RegistersEveryAction(t *testing.T) {
	r := setupRouter(t)
	assert.ElementsMatch(t, []string{
		"addWord", "getWord", "getAllWords", "updateWord", "deleteWord",
		"lookupWord", "searchWords",
		"addList", "getList", "getAllLists", "getListWords", "updateList",
		"deleteList", "addWordToList", "removeWordFromList",
		"getSettings", "updateSettings", "getStats", "updateStats",
		"submitReview", "getReviewQueue", "exportVocabulary",
	}, r.Actions())
}

func TestRouter_UnknownAction(t *testing.T) {
	r := setupRouter(t)

	resp := call(t, r, "dropTables", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, apperrors.CodeValidation, resp.Code)
	assert.Equal(t, "req-1", resp.ID)
	assert.Contains(t, resp.Error, "dropTables")
}

func TestRouter_AssignsRequestID(t *testing.T) {
	r := setupRouter(t)

	resp := r.Handle(context.Background(), message.Request{Action: message.ActionGetSettings})
	require.True(t, resp.Success)
	assert.Len(t, resp.ID, 36)
}

func TestRouter_InvalidPayload(t *testing.T) {
	r := setupRouter(t)

	resp := r.Handle(context.Background(), message.Request{
		Action:  message.ActionGetWord,
		Payload: json.RawMessage(`{"id": 42}`),
	})
	assert.False(t, resp.Success)
	assert.Equal(t, apperrors.CodeValidation, resp.Code)

	resp = call(t, r, message.ActionGetWord, map[string]string{})
	assert.Equal(t, apperrors.CodeValidation, resp.Code)
	assert.NotNil(t, resp.Details)
}

func TestRouter_WordLifecycle(t *testing.T) {
	r := setupRouter(t)

	added := decode[domain.Word](t, call(t, r, message.ActionAddWord, map[string]any{
		"text":        "Gregarious",
		"definitions": []map[string]any{{"partOfSpeech": "adjective", "meaning": "fond of company", "examples": []string{}}},
	}))
	assert.Equal(t, "gregarious", added.NormalizedText)
	assert.Equal(t, 1, added.LookupCount)

	got := decode[domain.Word](t, call(t, r, message.ActionGetWord, map[string]string{"id": added.ID}))
	assert.Equal(t, added.ID, got.ID)

	updated := decode[domain.Word](t, call(t, r, message.ActionUpdateWord, map[string]any{
		"id":         added.ID,
		"difficulty": "hard",
	}))
	assert.Equal(t, domain.DifficultyHard, updated.Difficulty)

	all := decode[[]domain.Word](t, call(t, r, message.ActionGetAllWords, nil))
	assert.Len(t, all, 1)

	found := decode[[]domain.Word](t, call(t, r, message.ActionSearchWords, map[string]any{"query": "gregarius"}))
	require.Len(t, found, 1)
	assert.Equal(t, added.ID, found[0].ID)

	resp := call(t, r, message.ActionDeleteWord, map[string]string{"id": added.ID})
	require.True(t, resp.Success)

	resp = call(t, r, message.ActionGetWord, map[string]string{"id": added.ID})
	assert.Equal(t, apperrors.CodeNotFound, resp.Code)
	assert.Equal(t, "word "+added.ID+" not found", resp.Error)
}

func TestRouter_LookupAutoAdds(t *testing.T) {
	r := setupRouter(t)

	result := decode[service.LookupResult](t, call(t, r, message.ActionLookupWord, map[string]string{"text": "serendipity"}))
	require.NotNil(t, result.Word)
	assert.True(t, result.Added)

	lists := decode[[]domain.List](t, call(t, r, message.ActionGetAllLists, nil))
	require.Len(t, lists, 1)
	assert.Equal(t, []string{result.Word.ID}, lists[0].WordIDs)

	words := decode[[]domain.Word](t, call(t, r, message.ActionGetListWords, map[string]string{"listId": lists[0].ID}))
	require.Len(t, words, 1)
	assert.Equal(t, "serendipity", words[0].Text)
}

func TestRouter_Lists(t *testing.T) {
	r := setupRouter(t)

	list := decode[domain.List](t, call(t, r, message.ActionAddList, map[string]string{"name": "Verbs"}))
	assert.Equal(t, []string{}, list.WordIDs)

	resp := call(t, r, message.ActionAddList, map[string]string{"name": "verbs"})
	assert.Equal(t, apperrors.CodeDuplicate, resp.Code)

	word := decode[domain.Word](t, call(t, r, message.ActionAddWord, map[string]any{
		"text":        "run",
		"definitions": []map[string]any{{"meaning": "move fast"}},
	}))

	membership := map[string]string{"wordId": word.ID, "listId": list.ID}
	require.True(t, call(t, r, message.ActionAddWordToList, membership).Success)

	got := decode[domain.List](t, call(t, r, message.ActionGetList, map[string]string{"id": list.ID}))
	assert.Equal(t, []string{word.ID}, got.WordIDs)

	require.True(t, call(t, r, message.ActionRemoveWordFromList, membership).Success)

	renamed := decode[domain.List](t, call(t, r, message.ActionUpdateList, map[string]any{"id": list.ID, "name": "Actions"}))
	assert.Equal(t, "Actions", renamed.Name)

	require.True(t, call(t, r, message.ActionDeleteList, map[string]string{"id": list.ID}).Success)
	assert.Equal(t, apperrors.CodeNotFound, call(t, r, message.ActionGetList, map[string]string{"id": list.ID}).Code)
}

func TestRouter_SettingsAndStats(t *testing.T) {
	r := setupRouter(t)

	settings := decode[domain.Settings](t, call(t, r, message.ActionGetSettings, nil))
	assert.Equal(t, domain.ThemeAuto, settings.Theme)
	assert.Equal(t, 20, settings.ReviewSessionSize)

	updated := decode[domain.Settings](t, call(t, r, message.ActionUpdateSettings, map[string]any{"theme": "dark"}))
	assert.Equal(t, domain.ThemeDark, updated.Theme)

	resp := call(t, r, message.ActionUpdateSettings, map[string]any{"reminderTime": "24:00"})
	assert.Equal(t, apperrors.CodeValidation, resp.Code)

	stats := decode[domain.Stats](t, call(t, r, message.ActionUpdateStats, map[string]any{"totalReviews": 4, "correctReviews": 1}))
	assert.Equal(t, 25, stats.AccuracyRate)

	stats = decode[domain.Stats](t, call(t, r, message.ActionGetStats, nil))
	assert.Equal(t, 4, stats.TotalReviews)
}

func TestRouter_Review(t *testing.T) {
	r := setupRouter(t)

	word := decode[domain.Word](t, call(t, r, message.ActionAddWord, map[string]any{
		"text":        "recall",
		"definitions": []map[string]any{{"meaning": "remember"}},
	}))

	result := decode[service.ReviewResult](t, call(t, r, message.ActionSubmitReview, map[string]any{
		"wordId":    word.ID,
		"outcome":   "known",
		"timeSpent": 1500,
	}))
	require.NotNil(t, result.NextIntervalDays)
	assert.Equal(t, 3, *result.NextIntervalDays)

	resp := call(t, r, message.ActionSubmitReview, map[string]any{"wordId": word.ID, "outcome": "perhaps"})
	assert.Equal(t, apperrors.CodeValidation, resp.Code)

	queue := decode[[]domain.Word](t, call(t, r, message.ActionGetReviewQueue, nil))
	assert.Empty(t, queue)
}

func TestRouter_Export(t *testing.T) {
	r := setupRouter(t)

	result := decode[export.Result](t, call(t, r, message.ActionExportVocabulary, nil))
	assert.FileExists(t, result.Path)
	assert.Equal(t, 1, result.Counts.Lists)
}
