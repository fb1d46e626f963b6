package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/vocabkeep/vocabkeep/internal/config"
	"github.com/vocabkeep/vocabkeep/internal/logger"
	"github.com/vocabkeep/vocabkeep/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the record store and makes sure the schema and default list exist.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	db, err := store.New(cfg.Storage.DataPath, logger.Component(log, "store"))
	if err != nil {
		return nil, err
	}
	db.SetOpTimeout(cfg.Storage.OpTimeout)

	if err := db.Init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &StoreHandle{Store: db}, nil
}
