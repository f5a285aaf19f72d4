package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/Vyacheslaf/giftcert-server/internal/config"
	"github.com/Vyacheslaf/giftcert-server/internal/logger"
	"github.com/Vyacheslaf/giftcert-server/internal/store"
	"github.com/Vyacheslaf/giftcert-server/internal/store/gormstore"
	"github.com/Vyacheslaf/giftcert-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the persistence layer, selecting the backend
// configured in StoreConfig.Backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Backend {
	case config.StoreBackendSQL:
		st, err = sqlite.Open(cfg.Store.Path, log.Logger)
	case config.StoreBackendORM:
		st, err = gormstore.Open(cfg.Store.Path, log.Logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "backend", cfg.Store.Backend, "path", cfg.Store.Path)

	return &StoreHandle{Store: st}, nil
}
