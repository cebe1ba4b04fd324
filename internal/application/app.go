package application

import (
	"context"
	"time"

	"github.com/updateserve/omaha-backend/internal/pkg/shutdown"

	"go.uber.org/zap"
)

type Adapter interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type App struct {
	adapters        []Adapter
	shutdownTimeout time.Duration
}

func New() *App {
	return &App{
		shutdownTimeout: 5 * time.Second,
	}
}

func (a *App) AddAdapter(adapters ...Adapter) {
	a.adapters = append(a.adapters, adapters...)
}

func (a *App) WithShutdownTimeout(timeout time.Duration) {
	a.shutdownTimeout = timeout
}

func (a *App) Run(ctx context.Context) {
	for _, adapter := range a.adapters {
		go func(adapter Adapter) {
			if err := adapter.Start(ctx); err != nil {
				zap.L().Fatal("adapter start failed", zap.Error(err))
			}
		}(adapter)
	}

	shutdown.GracefulStop(func() {
		a.stop(ctx)
	})
}

// stop runs adapters down in registration order: the rest server goes
// first so the statistics collector drains a queue nothing feeds.
func (a *App) stop(ctx context.Context) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, a.shutdownTimeout)
	defer cancel()

	zap.L().Info("shutting down...")

	for _, adapter := range a.adapters {
		if err := adapter.Stop(ctxWithTimeout); err != nil {
			zap.L().Error("shutdown failed", zap.Error(err))
		}
	}

	zap.L().Info("graceful stopped")
}
