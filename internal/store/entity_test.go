package store_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocabkeep/vocabkeep/internal/store"
)

type testRecord struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Score string   `json:"score"`
	Tags  []string `json:"tags"`
}

func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return s, cleanup
}

func newTestEntity(s *store.Store) *store.Entity[testRecord] {
	return store.NewEntity[testRecord](s, "test:").
		WithUniqueIndexTransform("name", func(r *testRecord) []string {
			return []string{strings.ToLower(r.Name)}
		}, strings.ToLower).
		WithIndex("score", func(r *testRecord) []string {
			if r.Score == "" {
				return nil
			}
			return []string{r.Score}
		}).
		WithIndex("tag", func(r *testRecord) []string {
			return r.Tags
		})
}

func TestEntity_CreateAndGet(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &testRecord{ID: "1", Name: "Alpha"}))

	got, err := entity.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)
}

func TestEntity_Create_AlreadyExists(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &testRecord{ID: "1", Name: "Alpha"}))

	err := entity.Create(ctx, "1", &testRecord{ID: "1", Name: "Other"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_Create_UniqueIndexConflict(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &testRecord{ID: "1", Name: "Alpha"}))

	err := entity.Create(ctx, "2", &testRecord{ID: "2", Name: "ALPHA"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = entity.Get(ctx, "2")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Get_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := newTestEntity(s).Get(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Lookup_UsesTransform(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &testRecord{ID: "1", Name: "Alpha"}))

	got, err := entity.Lookup(ctx, "name", "aLpHa")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	_, err = entity.Lookup(ctx, "name", "beta")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Update_MovesIndexEntries(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &testRecord{ID: "1", Name: "Alpha", Tags: []string{"a", "b"}}))
	require.NoError(t, entity.Update(ctx, "1", &testRecord{ID: "1", Name: "Beta", Tags: []string{"b", "c"}}))

	_, err := entity.Lookup(ctx, "name", "alpha")
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := entity.Lookup(ctx, "name", "beta")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	tagged, err := entity.Scan(ctx, "tag", store.Exact("a"))
	require.NoError(t, err)
	assert.Empty(t, tagged)

	tagged, err = entity.Scan(ctx, "tag", store.Exact("c"))
	require.NoError(t, err)
	require.Len(t, tagged, 1)

	// The old name is free again.
	require.NoError(t, entity.Create(ctx, "2", &testRecord{ID: "2", Name: "Alpha"}))
}

func TestEntity_Update_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	err := newTestEntity(s).Update(context.Background(), "missing", &testRecord{ID: "missing", Name: "x"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Put_Upserts(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Put(ctx, "1", &testRecord{ID: "1", Name: "Alpha"}))
	require.NoError(t, entity.Put(ctx, "1", &testRecord{ID: "1", Name: "Alpha", Score: "5"}))

	got, err := entity.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "5", got.Score)
}

func TestEntity_Delete_Idempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &testRecord{ID: "1", Name: "Alpha", Score: "1"}))
	require.NoError(t, entity.Delete(ctx, "1"))
	require.NoError(t, entity.Delete(ctx, "1"))

	_, err := entity.Get(ctx, "1")
	require.ErrorIs(t, err, store.ErrNotFound)

	scored, err := entity.Scan(ctx, "score", store.Range{})
	require.NoError(t, err)
	assert.Empty(t, scored)
}

func TestEntity_Scan_Range(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	for _, r := range []testRecord{
		{ID: "a", Name: "a", Score: "3"},
		{ID: "b", Name: "b", Score: "1"},
		{ID: "c", Name: "c", Score: "5"},
		{ID: "d", Name: "d", Score: "3"},
		{ID: "e", Name: "e"},
	} {
		require.NoError(t, entity.Create(ctx, r.ID, &r))
	}

	ids := func(rs []*testRecord) []string {
		out := make([]string, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	all, err := entity.Scan(ctx, "score", store.Range{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "d", "c"}, ids(all))

	upTo3, err := entity.Scan(ctx, "score", store.AtMost("3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "d"}, ids(upTo3))

	exact, err := entity.Scan(ctx, "score", store.Exact("3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, ids(exact))

	from3, err := entity.Scan(ctx, "score", store.Range{Min: "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d", "c"}, ids(from3))
}

func TestEntity_List_SkipsIndexKeys(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &testRecord{ID: "1", Name: "Alpha", Tags: []string{"x"}}))
	require.NoError(t, entity.Create(ctx, "2", &testRecord{ID: "2", Name: "Beta", Score: "2"}))

	all, err := entity.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEntity_UnknownIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := newTestEntity(s).Scan(context.Background(), "nope", store.Range{})
	require.Error(t, err)
}

func TestStore_Update_RollsBackOnError(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	err := s.Update(ctx, func(tx *store.Txn) error {
		if err := entity.CreateIn(tx, "1", &testRecord{ID: "1", Name: "Alpha"}); err != nil {
			return err
		}
		// Second write fails on the unique name; the first must not persist.
		return entity.CreateIn(tx, "2", &testRecord{ID: "2", Name: "alpha"})
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = entity.Get(ctx, "1")
	require.ErrorIs(t, err, store.ErrNotFound)
}
