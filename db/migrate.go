package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrations ship inside the binary so deployments never chase a
// migrations directory on disk.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies all pending up migrations to the database at path.
// It opens and closes its own connection: the migrator takes ownership of
// the connection it is given, so callers open their working connection
// after this returns.
func RunMigrations(path string) error {
	db, err := NewSQLiteConnectionWithDefaults(path)
	if err != nil {
		return fmt.Errorf("failed to open database for migration: %w", err)
	}
	return MigrateUp(db)
}

// MigrateUp applies all pending up migrations. No pending migrations is not
// an error. The migrator closes db; do not use it after this call.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrationVersion returns the current migration version and dirty state
// for the database at path. Version 0 means no migrations applied yet.
func MigrationVersion(path string) (uint, bool, error) {
	db, err := NewSQLiteConnectionWithDefaults(path)
	if err != nil {
		return 0, false, fmt.Errorf("failed to open database: %w", err)
	}
	m, err := newMigrator(db)
	if err != nil {
		db.Close()
		return 0, false, fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	if db == nil {
		return nil, errors.New("database connection is required")
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{DatabaseName: "main"})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
