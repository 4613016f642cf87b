// Package config loads runtime settings from FINBOARD_* environment
// variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"finboard/internal/log"
	"finboard/internal/seed"
)

// Prefix is shared by every environment variable read here.
const Prefix = "FINBOARD_"

type Config struct {
	// Seed source
	SeedSource string `koanf:"FINBOARD_SEED_SOURCE"`
	SeedPath   string `koanf:"FINBOARD_SEED_PATH"`
	SQLitePath string `koanf:"FINBOARD_SQLITE_PATH"`

	// Google Sheets
	SheetsSpreadsheetID   string `koanf:"FINBOARD_SHEETS_SPREADSHEET_ID"`
	SheetsCredentialsFile string `koanf:"FINBOARD_SHEETS_CREDENTIALS_FILE"`

	// AMQP change relay, disabled when the URL is empty
	AMQPURL        string `koanf:"FINBOARD_AMQP_URL"`
	AMQPExchange   string `koanf:"FINBOARD_AMQP_EXCHANGE"`
	AMQPRoutingKey string `koanf:"FINBOARD_AMQP_ROUTING_KEY"`

	// Views
	PageSize      int           `koanf:"FINBOARD_PAGE_SIZE"`
	CacheSize     int           `koanf:"FINBOARD_CACHE_SIZE"`
	CacheTTL      time.Duration `koanf:"FINBOARD_CACHE_TTL"`
	DueSoonPolicy string        `koanf:"FINBOARD_DUE_SOON_POLICY"`
	DueSoonDays   int           `koanf:"FINBOARD_DUE_SOON_DAYS"`

	// Logging
	LogLevel string `koanf:"FINBOARD_LOG_LEVEL"`
	LogJSON  bool   `koanf:"FINBOARD_LOG_JSON"`
}

// Defaults returns the configuration used for every unset variable.
func Defaults() Config {
	return Config{
		SeedSource:     string(seed.KindJSON),
		SeedPath:       "./data/finboard.json",
		SQLitePath:     "./data/finboard.db",
		AMQPExchange:   "finboard",
		AMQPRoutingKey: "dataset.changed",
		PageSize:       10,
		CacheSize:      128,
		CacheTTL:       5 * time.Minute,
		DueSoonPolicy:  "forward",
		DueSoonDays:    7,
		LogLevel:       "info",
	}
}

// Load reads the environment over Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(Prefix, ".", nil), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.SeedSource = strings.ToLower(strings.TrimSpace(cfg.SeedSource))
	return &cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if err := c.SeedConfig().Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if c.PageSize < 1 || c.PageSize > 100 {
		errors = append(errors, fmt.Sprintf("invalid page size %d: must be between 1 and 100", c.PageSize))
	}
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}
	if c.DueSoonPolicy != "forward" && c.DueSoonPolicy != "trailing" {
		errors = append(errors, fmt.Sprintf("invalid due-soon policy '%s': must be 'forward' or 'trailing'", c.DueSoonPolicy))
	}
	if c.DueSoonDays < 0 || c.DueSoonDays > 365 {
		errors = append(errors, fmt.Sprintf("invalid due-soon days %d: must be between 0 and 365", c.DueSoonDays))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// SeedConfig converts the seed settings for seed.Open.
func (c *Config) SeedConfig() seed.Config {
	return seed.Config{
		Kind:            seed.Kind(c.SeedSource),
		JSONPath:        c.SeedPath,
		SQLitePath:      c.SQLitePath,
		SpreadsheetID:   c.SheetsSpreadsheetID,
		CredentialsFile: c.SheetsCredentialsFile,
	}
}

// LogConfig converts the logging settings for log.New.
func (c *Config) LogConfig() log.Config {
	cfg := log.DefaultConfig()
	if level, err := log.ParseLevel(c.LogLevel); err == nil {
		cfg.Level = level
	}
	cfg.JSON = c.LogJSON
	return cfg
}
