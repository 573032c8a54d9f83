package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/config"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/db"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/logger"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] up|down|version\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.String("config", "", "path to the YAML config file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logg := logger.New(cfg.App, "migrate")

	migrator, err := db.NewMigrator(cfg.Postgres)
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to initialize migrator")
	}
	defer migrator.Close()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = migrator.Version()
		if err == nil {
			logg.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current schema version")
		}
	default:
		migrator.Close()
		logg.Fatal().Str("command", cmd).Msg("Unknown command")
	}

	if err != nil {
		migrator.Close()
		logg.Fatal().Err(err).Msg("Migration failed")
	}
}
