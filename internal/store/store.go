// Package store picks the repository backend named by STORE_DRIVER.
package store

import (
	"fmt"

	"github.com/iliyamo/skillswap/internal/config"
	"github.com/iliyamo/skillswap/internal/database"
	"github.com/iliyamo/skillswap/internal/repository"
	"github.com/iliyamo/skillswap/internal/repository/gormstore"
	"github.com/iliyamo/skillswap/internal/repository/memory"
)

// Open builds the repositories for cfg.StoreDriver, running migrations for
// the SQL backends. The returned func releases the underlying connection.
func Open(cfg config.Config) (repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := database.Open(cfg)
		if err != nil {
			return repository.Store{}, nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return repository.Store{}, nil, err
		}
		return repository.NewMySQLStore(db), func() { db.Close() }, nil
	case config.DriverSQLite:
		db, err := gormstore.Open(cfg.SQLitePath)
		if err != nil {
			return repository.Store{}, nil, err
		}
		return gormstore.New(db), func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}, nil
	case config.DriverMemory:
		return memory.New(), func() {}, nil
	}
	return repository.Store{}, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
