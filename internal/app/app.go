package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/davoli/staticms/internal/config"
	"github.com/davoli/staticms/internal/logger"
	"github.com/davoli/staticms/internal/store"
)

// App is the application container (immutable dependencies + lifecycle context).
// It is not a request context; handlers should still use gin's request context.
type App struct {
	Config *config.Config
	Store  *store.Manager

	BaseCtx context.Context
	Cancel  context.CancelFunc
}

func New(cfg *config.Config, manager *store.Manager) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if manager == nil {
		return nil, errors.New("store manager is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:  cfg,
		Store:   manager,
		BaseCtx: ctx,
		Cancel:  cancel,
	}, nil
}

func (a *App) Shutdown() {
	if a == nil || a.Cancel == nil {
		return
	}
	a.Cancel()
}

// InitStorage selects the storage backend and, when the local store ends up
// serving the process, starts its persistence scheduler and file watcher.
func (a *App) InitStorage() error {
	backend := a.Store.Initialize(a.BaseCtx)
	logger.WithComponent("app").Infof("storage backend selected: %s", backend)

	if backend != store.BackendLocal {
		return nil
	}

	local := a.Store.Local()
	if err := local.StartWatcher(a.BaseCtx); err != nil {
		return fmt.Errorf("start data file watcher: %w", err)
	}
	store.StartPersistenceScheduler(a.BaseCtx, local, a.Config.Storage.Local.PersistInterval)
	return nil
}
