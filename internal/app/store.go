package app

import (
	"context"
	"fmt"

	"github.com/vedran77/skillshare/internal/config"
	"github.com/vedran77/skillshare/internal/database"
	"github.com/vedran77/skillshare/internal/logging"
	"github.com/vedran77/skillshare/internal/repository"
	"github.com/vedran77/skillshare/internal/repository/postgres"
	"github.com/vedran77/skillshare/internal/repository/sqlite"
)

// OpenStore connects to the configured backend, applies pending migrations
// and returns its repositories with a func that releases the connection.
func OpenStore(ctx context.Context, cfg *config.Config, log logging.Logger) (*repository.Store, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrating postgres: %w", err)
		}
		log.Info(ctx, "connected to database", "driver", cfg.DBDriver, "host", cfg.DBHost, "name", cfg.DBName)
		return postgres.NewStore(pool), pool.Close, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, database.SQLiteDSN(cfg.SQLitePath))
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateSQLite(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrating sqlite: %w", err)
		}
		log.Info(ctx, "connected to database", "driver", cfg.DBDriver, "path", cfg.SQLitePath)
		return sqlite.NewStore(db), func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
