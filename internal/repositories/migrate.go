package repositories

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type MigrationConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultMigrationConfig() MigrationConfig {
	return MigrationConfig{MaxRetries: 5, RetryDelay: 2 * time.Second}
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "schema_migrations"})
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migration instance: %w", err)
	}
	return m, nil
}

// RunMigrations waits for the database and applies every pending migration.
func RunMigrations(db *sql.DB, cfg MigrationConfig, logger *slog.Logger) error {
	if err := waitForDatabase(db, cfg, logger); err != nil {
		return err
	}
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	if v, dirty, err := m.Version(); err == nil {
		logger.Info("current schema version", "version", v, "dirty", dirty)
	} else if errors.Is(err, migrate.ErrNilVersion) {
		logger.Info("no migrations applied yet")
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema is up to date")
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}

	v, _, _ := m.Version()
	logger.Info("migrations applied", "version", v)
	return nil
}

// RollbackMigration reverts the given number of steps.
func RollbackMigration(db *sql.DB, steps int, logger *slog.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	logger.Info("migrations rolled back", "steps", steps)
	return nil
}

// MigrationVersion reports the applied schema version; 0 means none yet.
func MigrationVersion(db *sql.DB) (uint, bool, error) {
	m, err := newMigrator(db)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func waitForDatabase(db *sql.DB, cfg MigrationConfig, logger *slog.Logger) error {
	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if err := db.Ping(); err == nil {
			return nil
		}
		if i < attempts-1 {
			logger.Warn("database not ready, retrying", "delay", cfg.RetryDelay, "attempt", i+1, "of", attempts)
			time.Sleep(cfg.RetryDelay)
		}
	}
	return fmt.Errorf("database not ready after %d attempts", attempts)
}
