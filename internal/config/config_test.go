package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/hotdesk")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 24*time.Hour, cfg.SweepInterval)
	assert.Equal(t, time.Local, cfg.TimeZone)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.IsProduction)
}

func TestLoadRequiresDSNAndSecret(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := Load()
	assert.ErrorContains(t, err, "DB_DSN")

	t.Setenv("DB_DSN", "postgres://localhost/hotdesk")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/hotdesk")
	t.Setenv("JWT_SECRET", "secret")

	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err := Load()
	assert.ErrorContains(t, err, "TIMEZONE")

	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("SWEEP_INTERVAL", "-1h")
	_, err = Load()
	assert.ErrorContains(t, err, "SWEEP_INTERVAL")

	t.Setenv("SWEEP_INTERVAL", "24h")
	t.Setenv("BCRYPT_COST", "high")
	_, err = Load()
	assert.ErrorContains(t, err, "BCRYPT_COST")
}

func TestLoadTOMLFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hotdesk.toml")
	content := `
app_env = "prod"
prod_origins = "https://desks.example.com"
http_addr = ":9090"
db_dsn = "postgres://file/hotdesk"
jwt_secret = "from-file"
timezone = "Europe/Berlin"
sweep_interval = "12h"
metrics_enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction)
	assert.Equal(t, ":7070", cfg.HTTPAddr, "env wins over file")
	assert.Equal(t, "postgres://file/hotdesk", cfg.DBDSN)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "Europe/Berlin", cfg.TimeZone.String())
	assert.Equal(t, 12*time.Hour, cfg.SweepInterval)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, "https://desks.example.com", cfg.ProdOrigins)
}

func TestLoadProductionRequiresOrigins(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/hotdesk")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PROD_ORIGINS", "")

	_, err := Load()
	assert.ErrorContains(t, err, "PROD_ORIGINS")
}
