package search

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/vocabkeep/vocabkeep/internal/domain"
)

const (
	// mappingVersion is bumped whenever buildIndexMapping changes.
	// An index written with another version is discarded on open.
	mappingVersion = "1"

	indexDirName    = "words.bleve"
	versionFileName = "words.bleve.version"

	// batchSize bounds a single bleve batch.
	batchSize = 500
)

// SearchIndex holds saved words and dictionary headwords in one bleve index.
//
// Thread safety: all methods are safe for concurrent use. Rebuild and Close
// take the write lock, everything else the read lock.
type SearchIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	dir    string // empty for in-memory indexes
	fresh  bool
	logger *slog.Logger
}

// Options configures the search index.
type Options struct {
	DataPath string       // Parent directory of the index
	InMemory bool         // Keep the index in memory only; DataPath is ignored
	Logger   *slog.Logger // Uses discard if nil
}

// NewSearchIndex opens the index under opts.DataPath, creating it when it is
// missing, unreadable or written with an older mapping.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.InMemory {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &SearchIndex{index: index, fresh: true, logger: logger}, nil
	}

	s := &SearchIndex{dir: filepath.Join(opts.DataPath, indexDirName), logger: logger}
	index, err := s.openExisting(filepath.Join(opts.DataPath, versionFileName))
	if err != nil {
		return nil, err
	}
	if index == nil {
		if index, err = s.create(); err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(opts.DataPath, versionFileName), []byte(mappingVersion), 0o644); err != nil { //#nosec G306 -- not secret
			logger.Warn("failed to write search mapping version", "error", err)
		}
		s.fresh = true
	}
	s.index = index
	return s, nil
}

// openExisting returns the index on disk, or nil when it has to be recreated.
func (s *SearchIndex) openExisting(versionPath string) (bleve.Index, error) {
	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	version, err := os.ReadFile(versionPath)
	switch {
	case err != nil:
		s.logger.Info("search index has no mapping version, recreating", "path", s.dir)
		return nil, s.remove()
	case strings.TrimSpace(string(version)) != mappingVersion:
		s.logger.Info("search mapping changed, recreating index",
			"old_version", strings.TrimSpace(string(version)),
			"new_version", mappingVersion,
		)
		return nil, s.remove()
	}

	index, err := bleve.Open(s.dir)
	if err != nil {
		s.logger.Warn("search index unreadable, recreating", "path", s.dir, "error", err)
		return nil, s.remove()
	}
	s.logger.Info("opened search index", "path", s.dir)
	return index, nil
}

func (s *SearchIndex) create() (bleve.Index, error) {
	index, err := bleve.New(s.dir, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	s.logger.Info("created search index", "path", s.dir, "mapping_version", mappingVersion)
	return index, nil
}

func (s *SearchIndex) remove() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("remove old index: %w", err)
	}
	return nil
}

// Fresh reports whether the index started out empty in this process,
// meaning saved words must be indexed again.
func (s *SearchIndex) Fresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fresh
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocument adds or replaces a single document.
func (s *SearchIndex) IndexDocument(doc *SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexDocuments adds or replaces docs, committing in chunks of batchSize.
func (s *SearchIndex) IndexDocuments(docs []*SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[start:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// DeleteDocuments removes ids. Unknown ids are ignored.
func (s *SearchIndex) DeleteDocuments(ids []string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return s.index.Batch(batch)
}

// IndexWord adds or replaces a saved word.
func (s *SearchIndex) IndexWord(w *domain.Word) error {
	return s.IndexDocument(WordToSearchDocument(w))
}

// DeleteWord removes a saved word. Removing an unknown id is not an error.
func (s *SearchIndex) DeleteWord(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the number of indexed words and headwords.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index with an empty one. Callers re-add documents afterwards.
// Every other call blocks until it returns.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.dir == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := s.remove(); err != nil {
			return err
		}
		index, err = s.create()
	}
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	s.index = index
	s.fresh = true
	return nil
}
