package migration

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"shop-backend/internal/infrastructure/telemetry"
)

// NewMigrator opens a traced database/sql handle and binds it to the
// migration files found at sourceURL (e.g. "file://migrations").
func NewMigrator(dsn, sourceURL string) (*migrate.Migrate, error) {
	db, err := telemetry.OpenDB("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("migration source: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending migration. No pending change is not an error.
func MigrateUp(dsn, sourceURL string) error {
	m, err := NewMigrator(dsn, sourceURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// MigrationsSource returns the file:// URL of the repository's migrations
// directory, independent of the working directory. Used by tests.
func MigrationsSource() string {
	_, filename, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(filename), "..", "..", "..")
	return "file://" + filepath.Join(root, "migrations")
}
