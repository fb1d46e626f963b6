// Package providers contains dependency injection providers for the vocabkeep server.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/vocabkeep/vocabkeep/internal/config"
	"github.com/vocabkeep/vocabkeep/internal/logger"
)

// ProvideConfig returns a provider loading the configuration from args, the environment and .env.
func ProvideConfig(args []string) func(do.Injector) (*config.Config, error) {
	return func(do.Injector) (*config.Config, error) {
		return config.LoadConfig(args)
	}
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting vocabkeep",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
		"dictionary_path", cfg.Dictionary.Path,
		"export_path", cfg.Export.Path,
	)

	return log, nil
}
