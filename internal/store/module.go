package store

import (
	"context"
	"fmt"

	"github.com/brizzai/federated-userinfo/internal/config"
	"github.com/brizzai/federated-userinfo/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
}

// NewFromConfig opens the back end named by store.driver and closes it when the app stops
func NewFromConfig(p Params) (Store, error) {
	cfg := p.Config.Store
	logger.Debug("Opening store", zap.String("driver", string(cfg.Driver)))

	switch cfg.Driver {
	case config.StoreDriverMemory, "":
		return NewMemoryStore(), nil

	case config.StoreDriverRedis:
		client, err := NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			return nil, err
		}
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return NewRedisStore(client, cfg.KeyPrefix, cfg.TTL), nil

	case config.StoreDriverPostgres, config.StoreDriverMySQL, config.StoreDriverSQLite:
		db, err := OpenDB(cfg.Driver, cfg.SQL.DSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return sqlDB.Close()
			},
		})
		return NewSQLStore(db)

	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

// Module provides the store dependencies
var Module = fx.Module("store",
	fx.Provide(
		NewFromConfig,
	),
)
