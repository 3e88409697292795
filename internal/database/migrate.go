package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the embedded schema migrations.
func Migrations() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}
}

// Migrate applies every pending migration against a MySQL database.
func Migrate(db *sql.DB) error {
	n, err := migrate.Exec(db, "mysql", Migrations(), migrate.Up)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if n > 0 {
		slog.Info("applied database migrations", "count", n)
	} else {
		slog.Info("no database migrations to apply")
	}
	return nil
}
