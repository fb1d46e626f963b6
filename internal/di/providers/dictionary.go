package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/vocabkeep/vocabkeep/internal/config"
	"github.com/vocabkeep/vocabkeep/internal/dictionary"
	"github.com/vocabkeep/vocabkeep/internal/logger"
)

// DictionaryHandle wraps the file dictionary and its file watcher.
type DictionaryHandle struct {
	*dictionary.FileDictionary
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *DictionaryHandle) Shutdown() error {
	h.cancel()
	<-h.done
	return nil
}

// ProvideDictionary loads the dictionary file and starts watching it for changes.
func ProvideDictionary(i do.Injector) (*DictionaryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)

	dictLog := logger.Component(log, "dictionary")
	dict, err := dictionary.New(cfg.Dictionary.Path, indexHandle.SearchIndex, dictLog)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	handle := &DictionaryHandle{FileDictionary: dict, cancel: cancel, done: make(chan struct{})}

	if cfg.Dictionary.Path == "" {
		log.Warn("No dictionary configured, lookups will only return saved words")
		close(handle.done)
		return handle, nil
	}

	go func() {
		defer close(handle.done)
		if err := dict.Watch(ctx, dictionary.DefaultSettleDelay); err != nil {
			dictLog.Error("Dictionary watcher stopped", "error", err)
		}
	}()

	return handle, nil
}
