package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/postgres/*.sql
var postgresMigrationsFS embed.FS

//go:embed migrations/sqlite/*.sql
var sqliteMigrationsFS embed.FS

// MigrationStatus describes the schema version of a database
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Applied bool
}

// Migrator runs schema migrations against one database
type Migrator struct {
	m *migrate.Migrate
	// closeDB is false when the caller owns the database handle
	closeDB bool
}

// NewPostgresMigrator creates a migrator for a Postgres database URL
func NewPostgresMigrator(databaseURL string) (*Migrator, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	db := stdlib.OpenDB(*config.ConnConfig)

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := newMigrate(postgresMigrationsFS, "migrations/postgres", "postgres", driver)
	if err != nil {
		return nil, err
	}
	return &Migrator{m: m, closeDB: true}, nil
}

// NewSQLiteMigrator creates a migrator for an open SQLite handle. The handle
// stays open after the migrator is closed.
func NewSQLiteMigrator(db *sql.DB) (*Migrator, error) {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := newMigrate(sqliteMigrationsFS, "migrations/sqlite", "sqlite", driver)
	if err != nil {
		return nil, err
	}
	return &Migrator{m: m, closeDB: false}, nil
}

func newMigrate(fsys fs.FS, dir, driverName string, driver database.Driver) (*migrate.Migrate, error) {
	// Create source driver from embedded files
	sourceDriver, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, driverName, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// Up runs all pending migrations
func (mg *Migrator) Up() error {
	err := mg.m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("No new migrations to apply")
		return nil
	}

	version, _, _ := mg.m.Version()
	log.WithField("version", version).Info("Successfully applied migrations")
	return nil
}

// Down rolls back the specified number of migrations
func (mg *Migrator) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}

	err := mg.m.Steps(-steps)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("No migrations to rollback")
		return nil
	}

	version, _, verr := mg.m.Version()
	if errors.Is(verr, migrate.ErrNilVersion) {
		log.Info("Rolled back all migrations")
		return nil
	}
	log.WithField("version", version).Info("Successfully rolled back migrations")
	return nil
}

// Status reports the current migration version
func (mg *Migrator) Status() (*MigrationStatus, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return &MigrationStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get migration version: %w", err)
	}
	return &MigrationStatus{Version: version, Dirty: dirty, Applied: true}, nil
}

// Close releases the migrator. SQLite handles passed by the caller stay open.
func (mg *Migrator) Close() error {
	if !mg.closeDB {
		return nil
	}
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

// RunMigrationsWithURL runs all pending migrations with a custom database URL
// This is useful for test environments where the URL is dynamically generated
func RunMigrationsWithURL(databaseURL string) error {
	mg, err := NewPostgresMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer mg.Close()

	return mg.Up()
}

// MigrateSQLite applies all pending migrations to an open SQLite handle
func MigrateSQLite(db *sql.DB) error {
	mg, err := NewSQLiteMigrator(db)
	if err != nil {
		return err
	}
	return mg.Up()
}
