// Package di provides dependency injection configuration for the vocabkeep server.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/vocabkeep/vocabkeep/internal/config"
	"github.com/vocabkeep/vocabkeep/internal/di/providers"
	"github.com/vocabkeep/vocabkeep/internal/export"
	"github.com/vocabkeep/vocabkeep/internal/message"
	"github.com/vocabkeep/vocabkeep/internal/service"
	"github.com/vocabkeep/vocabkeep/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments without the program name.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig(args))
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideDictionary)

	// Business services
	do.Provide(injector, providers.ProvideWordService)
	do.Provide(injector, providers.ProvideListService)
	do.Provide(injector, providers.ProvideSettingsService)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideExporter)
	do.Provide(injector, providers.ProvideMessageRouter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// BootstrapCore initializes everything except the HTTP server.
func BootstrapCore(injector do.Injector) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*slog.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.DictionaryHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*service.WordService](injector)
	_ = do.MustInvoke[*service.ListService](injector)
	_ = do.MustInvoke[*service.SettingsService](injector)
	_ = do.MustInvoke[*service.ReviewService](injector)
	_ = do.MustInvoke[*export.Exporter](injector)
	_ = do.MustInvoke[*message.Router](injector)

	providers.TriggerWordReindexIfNeeded(injector)

	return nil
}

// Bootstrap initializes all services, including the HTTP server.
func Bootstrap(injector do.Injector) error {
	if err := BootstrapCore(injector); err != nil {
		return err
	}
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
