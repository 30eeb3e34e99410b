package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var snapshotMigrations embed.FS

// ErrDirtySchema means a previous snapshot migration stopped halfway and the
// schema must be repaired by hand before the store can open.
var ErrDirtySchema = errors.New("snapshot schema is dirty")

// migrateSnapshots applies the embedded snapshot migrations to the database
// at dbPath and returns the schema version it ends on.
//
// The sqlite driver closes the handle it wraps, so migrations get their own
// connection instead of the repository's.
func migrateSnapshots(dbPath string) (uint, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open %s for migration: %w", dbPath, err)
	}

	driver, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		conn.Close()
		return 0, fmt.Errorf("snapshot migration driver: %w", err)
	}

	src, err := iofs.New(snapshotMigrations, "migrations")
	if err != nil {
		driver.Close()
		return 0, fmt.Errorf("snapshot migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		src.Close()
		driver.Close()
		return 0, fmt.Errorf("snapshot migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			return 0, fmt.Errorf("%w at version %d", ErrDirtySchema, dirty.Version)
		}
		return 0, fmt.Errorf("apply snapshot migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read snapshot schema version: %w", err)
	}
	return version, nil
}
