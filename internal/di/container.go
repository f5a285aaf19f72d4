// Package di provides dependency injection configuration for the gift certificate server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/Vyacheslaf/giftcert-server/internal/config"
	"github.com/Vyacheslaf/giftcert-server/internal/di/providers"
	"github.com/Vyacheslaf/giftcert-server/internal/logger"
	"github.com/Vyacheslaf/giftcert-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Business services
	do.Provide(injector, providers.ProvideCertificateService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideOrderService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.CertificateService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.OrderService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
