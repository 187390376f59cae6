package providers

import (
	"github.com/samber/do/v2"

	"github.com/StrangePerch/laravel-trello-server/internal/config"
	"github.com/StrangePerch/laravel-trello-server/internal/logger"
	"github.com/StrangePerch/laravel-trello-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.Open(cfg.DatabaseFile(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database opened", "path", cfg.DatabaseFile())

	return &StoreHandle{Store: db}, nil
}
