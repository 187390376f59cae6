// Package di provides dependency injection configuration for the board server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/StrangePerch/laravel-trello-server/internal/auth"
	"github.com/StrangePerch/laravel-trello-server/internal/config"
	"github.com/StrangePerch/laravel-trello-server/internal/di/providers"
	"github.com/StrangePerch/laravel-trello-server/internal/logger"
	"github.com/StrangePerch/laravel-trello-server/internal/service"
	"github.com/StrangePerch/laravel-trello-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideGate)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBoardService)
	do.Provide(injector, providers.ProvideColumnService)
	do.Provide(injector, providers.ProvideCardService)

	// Workers
	do.Provide(injector, providers.ProvideLoginLimiter)
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.Gate](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.BoardService](injector)
	_ = do.MustInvoke[*service.ColumnService](injector)
	_ = do.MustInvoke[*service.CardService](injector)

	// Workers
	_ = do.MustInvoke[*providers.LoginLimiterHandle](injector)
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
