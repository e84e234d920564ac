package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/sqlite3/*.sql files/postgres/*.sql
var migrationFiles embed.FS

// MigrateUp applies every pending migration for the given driver.
// Already being at the latest version is not an error.
func MigrateUp(db *sql.DB, driver string) error {
	m, src, err := newMigrate(db, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// m is not closed: that would close db, which the caller owns.
	defer src.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// CheckStatus returns nil when the schema is exactly at the latest
// embedded version, and a descriptive error otherwise.
func CheckStatus(db *sql.DB, driver string) error {
	m, src, err := newMigrate(db, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer src.Close()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("database has no schema version (needs migration)")
		}
		return fmt.Errorf("failed to get database version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d (migration failed previously)", version)
	}

	latest, err := latestVersion(src)
	if err != nil {
		return fmt.Errorf("failed to determine latest version: %w", err)
	}
	switch {
	case version < latest:
		return fmt.Errorf("database is at version %d but latest is %d", version, latest)
	case version > latest:
		return fmt.Errorf("database version %d is ahead of binary version %d", version, latest)
	}
	return nil
}

func sourceFor(driver string) (source.Driver, error) {
	src, err := iofs.New(migrationFiles, "files/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration files for %s: %w", driver, err)
	}
	return src, nil
}

func newMigrate(db *sql.DB, driver string) (*migrate.Migrate, source.Driver, error) {
	var (
		dbDriver database.Driver
		err      error
	)
	switch driver {
	case "sqlite3":
		dbDriver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case "postgres":
		dbDriver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return nil, nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	src, err := sourceFor(driver)
	if err != nil {
		return nil, nil, err
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, dbDriver)
	if err != nil {
		src.Close()
		return nil, nil, err
	}
	return m, src, nil
}

func latestVersion(src source.Driver) (uint, error) {
	version, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(version)
		if err != nil {
			return version, nil
		}
		version = next
	}
}
