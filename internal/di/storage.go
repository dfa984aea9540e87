package di

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/runtimeconfig"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
)

// configureStorage opens the SQL store named in config and ensures its
// tables. A database passed through WithBunDB is used as is.
func (c *Container) configureStorage(ctx context.Context) error {
	if c.items != nil && c.bunDB == nil {
		return nil
	}
	if c.bunDB == nil {
		db, err := OpenBunDB(c.Config.Storage)
		if err != nil {
			return err
		}
		if db == nil {
			return nil
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if err := content.EnsureSchema(ctx, c.bunDB); err != nil {
		if c.ownsDB {
			_ = c.bunDB.Close()
		}
		return fmt.Errorf("di: ensure schema: %w", err)
	}
	return nil
}

// OpenBunDB opens a bun database for the sqlite or postgres provider. The
// memory provider returns a nil database.
func OpenBunDB(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	var db *bun.DB
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", runtimeconfig.StorageMemory:
		return nil, nil
	case runtimeconfig.StorageSQLite:
		sqlDB, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		// sqlite serialises writers; one connection avoids busy errors under
		// concurrent sweeps.
		sqlDB.SetMaxOpenConns(1)
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case runtimeconfig.StoragePostgres:
		sqlDB, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrStorageProviderUnknown, cfg.Provider)
	}
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}
