package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int
	TimeZone          *time.Location
	SweepInterval     time.Duration
	LogLevel          string
	MetricsEnabled    bool
}

// fileConfig mirrors the optional TOML file named by CONFIG_FILE.
// Every key is optional; environment variables override it.
type fileConfig struct {
	AppEnv        string `toml:"app_env"`
	ProdOrigins   string `toml:"prod_origins"`
	HTTPAddr      string `toml:"http_addr"`
	DBDSN         string `toml:"db_dsn"`
	JWTSecret     string `toml:"jwt_secret"`
	JWTTTL        string `toml:"jwt_access_token_ttl"`
	BcryptCost    int    `toml:"bcrypt_cost"`
	TimeZone      string `toml:"timezone"`
	SweepInterval string `toml:"sweep_interval"`
	LogLevel      string `toml:"log_level"`
	Metrics       *bool  `toml:"metrics_enabled"`
}

// Load loads configuration from .env (optional), an optional TOML file and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	var file fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return build(file)
}

func build(file fileConfig) (*Config, error) {
	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", file.ProdOrigins)

	// Application environment (default: dev)
	cfg.IsProduction = getEnv("APP_ENV", or(file.AppEnv, "dev")) == PROD_STRING
	if cfg.IsProduction && cfg.ProdOrigins == "" {
		return nil, fmt.Errorf("PROD_ORIGINS is required when APP_ENV=%s", PROD_STRING)
	}

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", or(file.HTTPAddr, ":8080"))

	// Database DSN is required
	cfg.DBDSN = getEnv("DB_DSN", file.DBDSN)
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = getEnv("JWT_SECRET", file.JWTSecret)
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	var err error
	cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", or(file.JWTTTL, "15m"))
	if err != nil {
		return nil, err
	}

	// Bcrypt cost for password hashing (default: 12)
	defaultCost := 12
	if file.BcryptCost > 0 {
		defaultCost = file.BcryptCost
	}
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", defaultCost)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	// Booking dates are computed and displayed in this zone (default: process local).
	tzName := getEnv("TIMEZONE", or(file.TimeZone, "Local"))
	cfg.TimeZone, err = time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}

	cfg.SweepInterval, err = getEnvAsDuration("SWEEP_INTERVAL", or(file.SweepInterval, "24h"))
	if err != nil {
		return nil, err
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL must be positive")
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", or(file.LogLevel, "info"))

	defaultMetrics := true
	if file.Metrics != nil {
		defaultMetrics = *file.Metrics
	}
	cfg.MetricsEnabled, err = getEnvAsBool("METRICS_ENABLED", defaultMetrics)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsDuration parses a time.Duration (e.g. "15m", "24h").
func getEnvAsDuration(key, defaultValue string) (time.Duration, error) {
	s := getEnv(key, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
