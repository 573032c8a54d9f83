package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/config"
)

// New builds the process logger: console output in development, JSON in
// production. It also becomes the global and default context logger.
func New(cfg config.AppConfig, component string) zerolog.Logger {
	return newWithWriter(cfg, component, consoleOrJSON(cfg))
}

func newWithWriter(cfg config.AppConfig, component string, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	l := zerolog.New(w).With().Timestamp().Str("service", component).Logger()
	log.Logger = l
	zerolog.DefaultContextLogger = &l
	return l
}

func consoleOrJSON(cfg config.AppConfig) io.Writer {
	if cfg.Env == "production" {
		return os.Stderr
	}
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
}
