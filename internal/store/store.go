// Package store is the embedded record store: badger-backed collections with
// secondary indexes and a transaction scope spanning every collection.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/sync/singleflight"

	"github.com/vocabkeep/vocabkeep/internal/domain"
	apperrors "github.com/vocabkeep/vocabkeep/internal/errors"
)

const (
	// schemaVersion is bumped whenever the key layout changes.
	schemaVersion = "1"

	// maxTxnRetries bounds how often a conflicting transaction is replayed.
	maxTxnRetries = 16

	// DefaultOpTimeout bounds a store call whose context has no deadline.
	DefaultOpTimeout = 5 * time.Second
)

var metaSchemaKey = []byte("meta:schema")

// Store wraps a Badger database instance and the collections stored in it.
type Store struct {
	db        *badger.DB
	logger    *slog.Logger
	now       func() time.Time
	opTimeout time.Duration

	// collapses concurrent in-process singleton creation
	flight singleflight.Group

	Words    *Entity[domain.Word]
	Lists    *Entity[domain.List]
	Settings *Singleton[domain.Settings]
	Stats    *Singleton[domain.Stats]
}

// New opens (or creates) a store at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	return open(opts, logger, path)
}

// OpenReadOnly opens an existing store without write access, for inspection tools.
func OpenReadOnly(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path).WithReadOnly(true)
	opts.Logger = nil

	return open(opts, logger, path)
}

// NewInMemory opens a store that lives only for the life of the process.
func NewInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts, logger, ":memory:")
}

func open(opts badger.Options, logger *slog.Logger, path string) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, apperrors.Storage(err, "open badger db")
	}

	s := &Store{
		db:        db,
		logger:    logger,
		now:       time.Now,
		opTimeout: DefaultOpTimeout,
	}

	s.initWords()
	s.initLists()
	s.initSettings()
	s.initStats()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// SetClock overrides the time source of the store and the services built on it.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Now returns the current time according to the store's clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// SetOpTimeout changes the bound applied to calls without a deadline.
// Zero or negative disables it.
func (s *Store) SetOpTimeout(d time.Duration) {
	s.opTimeout = d
}

// bound applies the operation timeout unless ctx already has a deadline.
func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// Init prepares the schema and the default list.
// Calling it on an already initialized store is a no-op.
func (s *Store) Init(ctx context.Context) error {
	var created bool
	var defaultList *domain.List

	err := s.Update(ctx, func(tx *Txn) error {
		version, err := tx.get(metaSchemaKey)
		switch {
		case errors.Is(err, ErrNotFound):
			if err := tx.set(metaSchemaKey, []byte(schemaVersion)); err != nil {
				return err
			}
		case err != nil:
			return err
		case string(version) != schemaVersion:
			return apperrors.Storage(nil, fmt.Sprintf("unsupported schema version %q (want %q)", version, schemaVersion))
		}

		defaultList, created, err = s.EnsureDefaultListIn(tx)
		return err
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("store initialized",
			"schema_version", schemaVersion,
			"default_list_id", defaultList.ID,
			"default_list_created", created,
		)
	}
	return nil
}

// Ping checks the database answers reads and has been initialized.
func (s *Store) Ping(ctx context.Context) error {
	return s.View(ctx, func(tx *Txn) error {
		ok, err := tx.exists(metaSchemaKey)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotInitialized
		}
		return nil
	})
}

// Update runs fn in a read-write transaction covering every collection.
// Conflicting transactions are retried; fn must therefore be safe to replay.
func (s *Store) Update(ctx context.Context, fn func(tx *Txn) error) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return apperrors.Storage(err, "store operation aborted")
		}

		err := s.db.Update(func(txn *badger.Txn) error {
			return fn(&Txn{txn: txn})
		})
		if errors.Is(err, badger.ErrConflict) && attempt < maxTxnRetries {
			if s.logger != nil {
				s.logger.Debug("transaction conflict, retrying", "attempt", attempt+1)
			}
			backoff(attempt)
			continue
		}
		return translate(err)
	}
}

// View runs fn in a read-only snapshot.
func (s *Store) View(ctx context.Context, fn func(tx *Txn) error) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return apperrors.Storage(err, "store operation aborted")
	}
	return translate(s.db.View(func(txn *badger.Txn) error {
		return fn(&Txn{txn: txn})
	}))
}

// backoff sleeps a little, growing with the attempt, jittered so replays spread out.
func backoff(attempt int) {
	base := time.Duration(attempt+1) * 200 * time.Microsecond
	time.Sleep(base + rand.N(base))
}

// translate keeps domain errors as-is and turns everything else into a storage error.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, badger.ErrConflict) {
		return apperrors.Storage(err, "transaction conflict retries exhausted")
	}
	return apperrors.Storage(err, "store operation failed")
}
