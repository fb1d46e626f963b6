package providers

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/vocabkeep/vocabkeep/internal/config"
	"github.com/vocabkeep/vocabkeep/internal/logger"
	"github.com/vocabkeep/vocabkeep/internal/search"
	"github.com/vocabkeep/vocabkeep/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index, kept next to the record store.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Dir(cfg.Storage.DataPath),
		Logger:   logger.Component(log, "search"),
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// TriggerWordReindexIfNeeded re-adds every saved word in the background when
// the search index was created empty on this start.
func TriggerWordReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	words := do.MustInvoke[*service.WordService](i)
	log := do.MustInvoke[*slog.Logger](i)

	if !indexHandle.Fresh() {
		return
	}

	log.Info("Search index is new, reindexing saved words")
	go func() {
		count, err := words.ReindexWords(context.Background())
		if err != nil {
			log.Error("Word reindex failed", "error", err)
			return
		}
		log.Info("Word reindex completed", "words", count)
	}()
}
