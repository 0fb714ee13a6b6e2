package main

import (
	"context"
	"fmt"
	"time"

	"github.com/brizzai/federated-userinfo/internal/archive"
	"github.com/brizzai/federated-userinfo/internal/config"
	"github.com/brizzai/federated-userinfo/internal/logger"
	"github.com/brizzai/federated-userinfo/internal/store"
	"github.com/brizzai/federated-userinfo/internal/vault"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const stopTimeout = 5 * time.Second

// withVault starts the archive, store and vault modules, runs fn and stops them again
func withVault(ctx context.Context, cfg *config.Config, fn func(context.Context, *vault.Service) error) error {
	if cfg.Store.Driver == config.StoreDriverMemory || cfg.Store.Driver == "" {
		logger.Warn("The memory store keeps nothing once this command exits, use a persistent store.driver to keep archives between runs")
	}

	var svc *vault.Service
	app := fx.New(
		fx.Supply(cfg),
		fx.WithLogger(func() fxevent.Logger {
			fxLogger := &fxevent.ZapLogger{Logger: logger.GetLogger()}
			fxLogger.UseLogLevel(zapcore.DebugLevel)
			return fxLogger
		}),
		archive.Module,
		store.Module,
		vault.Module,
		fx.Populate(&svc),
	)

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := app.Stop(stopCtx); err != nil {
			logger.Warn("Failed to stop cleanly", zap.Error(err))
		}
	}()

	return fn(ctx, svc)
}
