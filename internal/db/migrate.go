package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/config"
)

// Migrator applies the versioned SQL files under cfg.MigrationsPath. It is
// run from cmd/migrate, never from the API server.
type Migrator struct {
	m  *migrate.Migrate
	db *sql.DB
}

func NewMigrator(cfg config.PostgresConfig) (*Migrator, error) {
	sqlDB, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database for migrations: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.MigrationsPath, cfg.DBName, driver)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize migration instance: %w", err)
	}

	return &Migrator{m: m, db: sqlDB}, nil
}

func (mg *Migrator) Up() error {
	err := mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("No new migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info().Msg("New migrations applied successfully")
	return nil
}

// Down rolls back a single migration step.
func (mg *Migrator) Down() error {
	err := mg.m.Steps(-1)
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("No migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	log.Info().Msg("Rolled back one migration")
	return nil
}

func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return v, dirty, nil
}

func (mg *Migrator) Close() {
	if srcErr, dbErr := mg.m.Close(); srcErr != nil || dbErr != nil {
		log.Error().AnErr("source_err", srcErr).AnErr("db_err", dbErr).Msg("Failed to close migrator")
	}
	if err := mg.db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close migration database handle")
	}
}
