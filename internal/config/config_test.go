package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DROPVOX_DATABASE_DSN", "postgres://localhost/dropvox_test?sslmode=disable")
	t.Setenv("DROPVOX_STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("DROPVOX_STRIPE_WEBHOOK_SECRET", "whsec_test")
	t.Setenv("DROPVOX_STRIPE_PRICE_ID", "price_123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "migrations", cfg.Database.MigrationsPath)
	assert.Equal(t, 5*time.Minute, cfg.Release.CacheTTL)
	assert.Equal(t, "0.7.1", cfg.Release.FallbackVersion)
	assert.Equal(t, "https://dropvox.app", cfg.Site.BaseURL)
	assert.Equal(t, "DropVox <noreply@dropvox.app>", cfg.Email.From)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DROPVOX_SERVER_PORT", "9090")
	t.Setenv("DROPVOX_LOGGING_LEVEL", "debug")
	t.Setenv("DROPVOX_SITE_BASE_URL", "https://staging.dropvox.app")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "https://staging.dropvox.app", cfg.Site.BaseURL)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		omit string
	}{
		{name: "database dsn", omit: "DROPVOX_DATABASE_DSN"},
		{name: "stripe secret key", omit: "DROPVOX_STRIPE_SECRET_KEY"},
		{name: "stripe webhook secret", omit: "DROPVOX_STRIPE_WEBHOOK_SECRET"},
		{name: "stripe price id", omit: "DROPVOX_STRIPE_PRICE_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.omit, "")

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestMergeConfigs_EnvWins(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Database.DSN = "postgres://file-host/db"
	fileCfg.Stripe.SecretKey = "sk_from_file"

	envCfg := Config{}
	envCfg.Database.DSN = "postgres://env-host/db"

	merged := mergeConfigs(fileCfg, envCfg)

	assert.Equal(t, "postgres://env-host/db", merged.Database.DSN)
	assert.Equal(t, "sk_from_file", merged.Stripe.SecretKey)
}

func TestValidate_RejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.Database.DSN = "postgres://localhost/db"
	cfg.Stripe = StripeConfig{SecretKey: "sk", WebhookSecret: "whsec", PriceID: "price"}
	cfg.Server.Port = 0

	require.Error(t, cfg.validate())
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "dropvox", cfg.Release.Repo)
	assert.Equal(t, "DropVox-0.7.1.dmg", cfg.Release.FallbackFileName)
}
