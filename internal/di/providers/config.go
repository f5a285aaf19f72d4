// Package providers contains dependency injection providers for the gift certificate server.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/Vyacheslaf/giftcert-server/internal/config"
	"github.com/Vyacheslaf/giftcert-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig(os.Args[1:])
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting gift certificate server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"store_backend", cfg.Store.Backend,
		"db_path", cfg.Store.Path,
	)

	return log, nil
}
