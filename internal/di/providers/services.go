package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/vocabkeep/vocabkeep/internal/config"
	"github.com/vocabkeep/vocabkeep/internal/export"
	"github.com/vocabkeep/vocabkeep/internal/logger"
	"github.com/vocabkeep/vocabkeep/internal/message"
	"github.com/vocabkeep/vocabkeep/internal/service"
	"github.com/vocabkeep/vocabkeep/internal/validation"
)

// ProvideValidator provides the shared payload validator.
func ProvideValidator(do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideWordService provides the word service.
func ProvideWordService(i do.Injector) (*service.WordService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	dictHandle := do.MustInvoke[*DictionaryHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewWordService(
		storeHandle.Store,
		dictHandle.FileDictionary,
		indexHandle.SearchIndex,
		validator,
		logger.Component(log, "words"),
	), nil
}

// ProvideListService provides the list service.
func ProvideListService(i do.Injector) (*service.ListService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewListService(storeHandle.Store, validator, logger.Component(log, "lists")), nil
}

// ProvideSettingsService provides the settings and stats service.
func ProvideSettingsService(i do.Injector) (*service.SettingsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	lists := do.MustInvoke[*service.ListService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewSettingsService(storeHandle.Store, lists, validator, logger.Component(log, "settings")), nil
}

// ProvideReviewService provides the review orchestrator.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewReviewService(storeHandle.Store, logger.Component(log, "review")), nil
}

// ProvideExporter provides the SQLite exporter.
func ProvideExporter(i do.Injector) (*export.Exporter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return export.New(storeHandle.Store, cfg.Export.Path, logger.Component(log, "export")), nil
}

// ProvideMessageRouter provides the inbound message router.
func ProvideMessageRouter(i do.Injector) (*message.Router, error) {
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*slog.Logger](i)

	svc := message.Services{
		Words:    do.MustInvoke[*service.WordService](i),
		Lists:    do.MustInvoke[*service.ListService](i),
		Settings: do.MustInvoke[*service.SettingsService](i),
		Reviews:  do.MustInvoke[*service.ReviewService](i),
		Exporter: do.MustInvoke[*export.Exporter](i),
	}

	router := message.NewRouter(svc, validator, logger.Component(log, "router"))
	log.Info("Message router ready", "actions", len(router.Actions()))
	return router, nil
}
