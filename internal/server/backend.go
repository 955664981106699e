package server

import (
	"context"
	"fmt"

	"cribscore/internal/cache"
	"cribscore/internal/config"
	"cribscore/internal/db"
	"cribscore/internal/kv"

	"github.com/sirupsen/logrus"
)

// Backend is the key-value store selected by STORE plus its health check.
type Backend struct {
	Store kv.Store
	Check CheckFunc
	Close func() error
}

// OpenBackend connects the configured store. SQL stores are migrated
// before they are returned.
func OpenBackend(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*Backend, error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case config.StoreMemory:
		return &Backend{Store: kv.NewMemory(), Close: noop}, nil

	case config.StoreSQLite, config.StorePostgres:
		var (
			database *db.DB
			err      error
		)
		if cfg.Store == config.StoreSQLite {
			database, err = db.OpenSQLite(cfg.SQLitePath, logger)
		} else {
			database, err = db.Connect(db.DriverPostgres, cfg.DatabaseURL, logger)
		}
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(); err != nil {
			database.Close()
			return nil, fmt.Errorf("migrating %s: %w", cfg.Store, err)
		}
		return &Backend{Store: database, Check: database.Ping, Close: database.Close}, nil

	case config.StoreRedis:
		rdb, err := cache.Connect(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: rdb, Check: rdb.Ping, Close: rdb.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
