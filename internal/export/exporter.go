// Package export writes a portable SQLite snapshot of the vocabulary.
package export

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vocabkeep/vocabkeep/internal/domain"
	apperrors "github.com/vocabkeep/vocabkeep/internal/errors"
	"github.com/vocabkeep/vocabkeep/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// FormatVersion is written to the meta table. Bump it when the schema changes.
const FormatVersion = "1"

// Counts tracks how many rows of each kind were exported.
type Counts struct {
	Words       int `json:"words"`
	Lists       int `json:"lists"`
	Memberships int `json:"memberships"`
}

// Result describes a finished export.
type Result struct {
	Path      string        `json:"path"`
	Size      int64         `json:"size"`
	Checksum  string        `json:"checksum"`
	Counts    Counts        `json:"counts"`
	CreatedAt time.Time     `json:"createdAt"`
	Duration  time.Duration `json:"durationNs"`
}

// Exporter writes snapshots into a directory.
type Exporter struct {
	store  *store.Store
	dir    string
	logger *slog.Logger
}

// New creates an Exporter writing into dir.
func New(s *store.Store, dir string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{store: s, dir: dir, logger: logger}
}

// Export snapshots the store and writes it to a new SQLite file.
// The file appears under its final name only once it is complete.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	start := time.Now()

	snap, err := e.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	createdAt := e.store.Now()

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, apperrors.Storage(err, "create export directory")
	}

	name := fmt.Sprintf("vocabkeep-%s-%s.db", createdAt.UTC().Format("20060102-150405"), uuid.NewString()[:8])
	path := filepath.Join(e.dir, name)
	tmpPath := path + ".tmp"
	defer os.Remove(tmpPath)

	counts, err := writeDatabase(ctx, tmpPath, snap, createdAt, e.logger)
	if err != nil {
		return nil, apperrors.Storage(err, "write export")
	}

	checksum, size, err := fileChecksum(tmpPath)
	if err != nil {
		return nil, apperrors.Storage(err, "checksum export")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return nil, apperrors.Storage(err, "finalize export")
	}

	result := &Result{
		Path:      path,
		Size:      size,
		Checksum:  checksum,
		Counts:    counts,
		CreatedAt: createdAt,
		Duration:  time.Since(start),
	}

	e.logger.Info("vocabulary exported",
		"path", path,
		"words", counts.Words,
		"lists", counts.Lists,
		"memberships", counts.Memberships,
		"size", size,
		"duration", result.Duration,
	)
	return result, nil
}

// openDatabase opens a fresh SQLite file and applies the schema.
func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	// A rollback journal keeps the export a single self-contained file.
	pragmas := []string{
		"PRAGMA journal_mode=DELETE",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}
	return db, nil
}

func writeDatabase(ctx context.Context, path string, snap *store.Snapshot, createdAt time.Time, logger *slog.Logger) (counts Counts, err error) {
	db, err := openDatabase(path)
	if err != nil {
		return counts, err
	}
	defer func() {
		err = errors.Join(err, db.Close())
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	steps := []struct {
		name string
		fn   func() (int, error)
		dest *int
	}{
		{"meta", func() (int, error) { return exportMeta(ctx, tx, snap, createdAt) }, nil},
		{"words", func() (int, error) { return exportWords(ctx, tx, snap.Words) }, &counts.Words},
		{"lists", func() (int, error) { return exportLists(ctx, tx, snap.Lists) }, &counts.Lists},
		{"list_words", func() (int, error) { return exportMemberships(ctx, tx, snap, logger) }, &counts.Memberships},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		n, err := step.fn()
		if err != nil {
			return counts, fmt.Errorf("export %s: %w", step.name, err)
		}
		if step.dest != nil {
			*step.dest = n
		}
	}

	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("commit: %w", err)
	}
	return counts, nil
}

func exportMeta(ctx context.Context, tx *sql.Tx, snap *store.Snapshot, createdAt time.Time) (int, error) {
	rows := map[string]any{
		"format_version": FormatVersion,
		"created_at":     formatTime(createdAt),
	}
	if snap.Settings != nil {
		rows["settings"] = snap.Settings
	}
	if snap.Stats != nil {
		rows["stats"] = snap.Stats
	}

	for key, value := range rows {
		text, ok := value.(string)
		if !ok {
			data, err := json.Marshal(value)
			if err != nil {
				return 0, fmt.Errorf("marshal %s: %w", key, err)
			}
			text = string(data)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, key, text); err != nil {
			return 0, fmt.Errorf("insert %s: %w", key, err)
		}
	}
	return len(rows), nil
}

func exportWords(ctx context.Context, tx *sql.Tx, words []*domain.Word) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO words (
		id, text, normalized_text, pronunciation, difficulty, lookup_count,
		date_added, updated_at, last_reviewed, next_review,
		definitions, synonyms, antonyms, review_history
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, w := range words {
		definitions, err := jsonText(w.Definitions)
		if err != nil {
			return 0, err
		}
		synonyms, err := jsonText(w.Synonyms)
		if err != nil {
			return 0, err
		}
		antonyms, err := jsonText(w.Antonyms)
		if err != nil {
			return 0, err
		}
		history, err := jsonText(w.ReviewHistory)
		if err != nil {
			return 0, err
		}

		_, err = stmt.ExecContext(ctx,
			w.ID, w.Text, w.NormalizedText, nullString(w.Pronunciation), string(w.Difficulty), w.LookupCount,
			formatTime(w.DateAdded), formatTime(w.UpdatedAt), nullTime(w.LastReviewed), nullTime(w.NextReview),
			definitions, synonyms, antonyms, history,
		)
		if err != nil {
			return 0, fmt.Errorf("insert word %s: %w", w.ID, err)
		}
	}
	return len(words), nil
}

func exportLists(ctx context.Context, tx *sql.Tx, lists []*domain.List) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO lists (
		id, name, description, is_default, created_at, modified_at
	) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, l := range lists {
		_, err := stmt.ExecContext(ctx,
			l.ID, l.Name, l.Description, boolToInt(l.IsDefault),
			formatTime(l.CreatedDate), formatTime(l.ModifiedDate),
		)
		if err != nil {
			return 0, fmt.Errorf("insert list %s: %w", l.ID, err)
		}
	}
	return len(lists), nil
}

// exportMemberships writes list membership in list order.
// Ids of words missing from the snapshot are skipped.
func exportMemberships(ctx context.Context, tx *sql.Tx, snap *store.Snapshot, logger *slog.Logger) (int, error) {
	known := make(map[string]struct{}, len(snap.Words))
	for _, w := range snap.Words {
		known[w.ID] = struct{}{}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO list_words (list_id, word_id, position) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for _, l := range snap.Lists {
		for pos, wordID := range l.WordIDs {
			if _, ok := known[wordID]; !ok {
				logger.Warn("skipping membership of missing word", "list_id", l.ID, "word_id", wordID)
				continue
			}
			if _, err := stmt.ExecContext(ctx, l.ID, wordID, pos); err != nil {
				return 0, fmt.Errorf("insert membership %s/%s: %w", l.ID, wordID, err)
			}
			n++
		}
	}
	return n, nil
}

func fileChecksum(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	hash := sha256.New()
	size, err := io.Copy(hash, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(hash.Sum(nil)), size, nil
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// jsonText encodes v as JSON, writing nil slices as [].
func jsonText[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
