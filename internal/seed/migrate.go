package seed

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"finboard/internal/log"
)

//go:embed migrations/*.sql
var seedSchema embed.FS

// Migrate creates or upgrades the seed tables without loading anything.
func (s *SQLiteSource) Migrate() error {
	db, err := s.open()
	if err != nil {
		return err
	}
	return db.Close()
}

// migrate applies the embedded seed schema to db. m is never closed since
// its driver would close db with it.
func (s *SQLiteSource) migrate(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("seed schema driver: %w", err)
	}
	src, err := iofs.New(seedSchema, "migrations")
	if err != nil {
		return fmt.Errorf("seed schema source: %w", err)
	}
	defer src.Close()

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("seed schema: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("upgrade seed schema: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("seed schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("seed schema version %d is dirty", version)
	}
	s.logger.Debug("Seed schema ready",
		log.FieldOperation, log.OpMigrate,
		log.FieldPath, s.path,
		"version", version)
	return nil
}
