package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/config"
)

type Postgres struct {
	DB *sqlx.DB
}

func New(ctx context.Context, cfg config.PostgresConfig) (*Postgres, error) {
	dbConn, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := dbConn.PingContext(pingCtx); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("dbname", cfg.DBName).Msg("Connected to PostgreSQL")
	return &Postgres{DB: dbConn}, nil
}

func (p *Postgres) Close() {
	if p.DB != nil {
		if err := p.DB.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
			return
		}
		log.Info().Msg("Database connection closed")
	}
}
