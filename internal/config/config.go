package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Stripe   StripeConfig   `yaml:"stripe" envconfig:"STRIPE"`
	Email    EmailConfig    `yaml:"email" envconfig:"EMAIL"`
	Release  ReleaseConfig  `yaml:"release" envconfig:"RELEASE"`
	Site     SiteConfig     `yaml:"site" envconfig:"SITE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"50"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"25"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// DatabaseConfig contains the license store connection settings
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" envconfig:"DSN"`
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	MigrationsPath  string        `yaml:"migrations_path" envconfig:"MIGRATIONS_PATH" default:"migrations"`
}

// StripeConfig contains payment processor credentials and product identifiers
type StripeConfig struct {
	SecretKey     string `yaml:"secret_key" envconfig:"SECRET_KEY"`
	WebhookSecret string `yaml:"webhook_secret" envconfig:"WEBHOOK_SECRET"`
	PriceID       string `yaml:"price_id" envconfig:"PRICE_ID"`
}

// EmailConfig contains transactional email provider settings
type EmailConfig struct {
	APIKey string `yaml:"api_key" envconfig:"API_KEY"`
	From   string `yaml:"from" envconfig:"FROM" default:"DropVox <noreply@dropvox.app>"`
}

// ReleaseConfig contains the release metadata source and its static fallback
type ReleaseConfig struct {
	Owner            string        `yaml:"owner" envconfig:"OWNER" default:"helrabelo"`
	Repo             string        `yaml:"repo" envconfig:"REPO" default:"dropvox"`
	CacheTTL         time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL" default:"5m"`
	FallbackVersion  string        `yaml:"fallback_version" envconfig:"FALLBACK_VERSION" default:"0.7.1"`
	FallbackURL      string        `yaml:"fallback_url" envconfig:"FALLBACK_URL" default:"https://github.com/helrabelo/dropvox/releases/download/v0.7.1/DropVox-0.7.1.dmg"`
	FallbackFileName string        `yaml:"fallback_file_name" envconfig:"FALLBACK_FILE_NAME" default:"DropVox-0.7.1.dmg"`
}

// SiteConfig contains the public site settings used to build redirect URLs
type SiteConfig struct {
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL" default:"https://dropvox.app"`
}

// Load loads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("DROPVOX", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := getConfigFilePath(); configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Database.DSN == "" {
		envConfig.Database.DSN = fileConfig.Database.DSN
	}
	if envConfig.Stripe.SecretKey == "" {
		envConfig.Stripe.SecretKey = fileConfig.Stripe.SecretKey
	}
	if envConfig.Stripe.WebhookSecret == "" {
		envConfig.Stripe.WebhookSecret = fileConfig.Stripe.WebhookSecret
	}
	if envConfig.Stripe.PriceID == "" {
		envConfig.Stripe.PriceID = fileConfig.Stripe.PriceID
	}
	if envConfig.Email.APIKey == "" {
		envConfig.Email.APIKey = fileConfig.Email.APIKey
	}
	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("stripe secret key is required")
	}
	if c.Stripe.WebhookSecret == "" {
		return fmt.Errorf("stripe webhook secret is required")
	}
	if c.Stripe.PriceID == "" {
		return fmt.Errorf("stripe price id is required")
	}
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site base url is required")
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    50,
			RateLimitBurst:  25,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			MigrationsPath:  "migrations",
		},
		Email: EmailConfig{
			From: "DropVox <noreply@dropvox.app>",
		},
		Release: ReleaseConfig{
			Owner:            "helrabelo",
			Repo:             "dropvox",
			CacheTTL:         5 * time.Minute,
			FallbackVersion:  "0.7.1",
			FallbackURL:      "https://github.com/helrabelo/dropvox/releases/download/v0.7.1/DropVox-0.7.1.dmg",
			FallbackFileName: "DropVox-0.7.1.dmg",
		},
		Site: SiteConfig{
			BaseURL: "https://dropvox.app",
		},
	}
}
