package main

import (
	"context"
	"flag"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/config"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/db"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/logger"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/product"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/seed"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/user"
)

func main() {
	flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logg := logger.New(cfg.App, "seed")
	ctx := logg.WithContext(context.Background())

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	products := product.NewRepository(pg.DB)
	seeder := seed.NewSeeder(
		user.NewService(user.NewRepository(pg.DB)),
		product.NewService(products),
		products,
	)

	report, err := seeder.Run(ctx)
	if err != nil {
		pg.Close()
		logg.Fatal().Err(err).Msg("Seeding failed")
	}

	logg.Info().
		Int("users_created", report.UsersCreated).
		Int("users_skipped", report.UsersSkipped).
		Int("products_created", report.ProductsCreated).
		Int("products_skipped", report.ProductsSkipped).
		Msg("Seed data created successfully")
}
