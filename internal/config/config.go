package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port            string        `yaml:"port"`
	Env             string        `yaml:"env"`
	LogLevel        string        `yaml:"log_level"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MigrationsPath  string        `yaml:"migrations_path"`
}

// DSN returns a key/value connection string understood by lib/pq and pgx.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type RazorpayConfig struct {
	KeyID     string `yaml:"key_id"`
	KeySecret string `yaml:"key_secret"`
	BaseURL   string `yaml:"base_url"`
}

type StripeConfig struct {
	SecretKey string `yaml:"secret_key"`
	BaseURL   string `yaml:"base_url"`
}

type Config struct {
	App      AppConfig      `yaml:"app"`
	Postgres PostgresConfig `yaml:"postgres"`
	Auth     AuthConfig     `yaml:"auth"`
	Razorpay RazorpayConfig `yaml:"razorpay"`
	Stripe   StripeConfig   `yaml:"stripe"`
}

// NewConfig loads .env (if present), then the YAML file named by the -config
// flag or CONFIG_PATH, then applies environment overrides.
func NewConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if f := flag.Lookup("config"); f != nil && f.Value.String() != "" {
		path = f.Value.String()
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	return Load(path)
}

// Load reads the YAML file at path (optional) and overlays the environment.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %q: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Port:            "5000",
			Env:             "development",
			LogLevel:        "debug",
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Port:            "5432",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			MigrationsPath:  "migrations",
		},
		Auth: AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
		},
		Razorpay: RazorpayConfig{
			BaseURL: "https://api.razorpay.com/v1",
		},
		Stripe: StripeConfig{
			BaseURL: "https://api.stripe.com/v1",
		},
	}
}

func applyEnv(cfg *Config) error {
	setString(&cfg.App.Port, "APP_PORT")
	setString(&cfg.App.Env, "APP_ENV")
	setString(&cfg.App.LogLevel, "LOG_LEVEL")

	setString(&cfg.Postgres.Host, "DB_HOST")
	setString(&cfg.Postgres.Port, "DB_PORT")
	setString(&cfg.Postgres.User, "DB_USER")
	setString(&cfg.Postgres.Password, "DB_PASSWORD")
	setString(&cfg.Postgres.DBName, "DB_NAME")
	setString(&cfg.Postgres.SSLMode, "DB_SSLMODE")
	setString(&cfg.Postgres.MigrationsPath, "DB_MIGRATIONS_PATH")

	if v := os.Getenv("DB_MAX_OPEN_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", v, err)
		}
		cfg.Postgres.MaxOpenConns = n
	}

	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_TTL %q: %w", v, err)
		}
		cfg.Auth.TokenTTL = d
	}

	setString(&cfg.Razorpay.KeyID, "RAZORPAY_KEY_ID")
	setString(&cfg.Razorpay.KeySecret, "RAZORPAY_KEY_SECRET")
	setString(&cfg.Razorpay.BaseURL, "RAZORPAY_BASE_URL")
	setString(&cfg.Stripe.SecretKey, "STRIPE_SECRET_KEY")
	setString(&cfg.Stripe.BaseURL, "STRIPE_BASE_URL")

	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c *Config) validate() error {
	var missing []string
	if c.Postgres.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.Postgres.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Postgres.DBName == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}
	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("missing required configuration: [JWT_SECRET]")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}

// IsProduction reports whether logs should be emitted as JSON.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
