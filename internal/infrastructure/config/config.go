package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	Log     LogConfig
	Billing BillingConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// BillingConfig holds invoice engine settings
type BillingConfig struct {
	Currency              string // ISO 4217 code used on new invoices
	NumberPrefix          string // Invoice number prefix, e.g. "INV"
	PaymentTermsDays      int    // Default days between issue and due date
	RecurrenceHorizonDays int    // How far ahead recurring invoices are generated
}

// Load reads configuration from config.toml and environment variables.
// A missing config file is fine; defaults and env vars apply.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("HOUSEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Billing: BillingConfig{
			Currency:              v.GetString("billing.currency"),
			NumberPrefix:          v.GetString("billing.number_prefix"),
			PaymentTermsDays:      v.GetInt("billing.payment_terms_days"),
			RecurrenceHorizonDays: v.GetInt("billing.recurrence_horizon_days"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "houseway"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Billing.Currency == "" {
		cfg.Billing.Currency = "USD"
	}
	if cfg.Billing.NumberPrefix == "" {
		cfg.Billing.NumberPrefix = "INV"
	}
	if cfg.Billing.PaymentTermsDays == 0 {
		cfg.Billing.PaymentTermsDays = 30
	}
	if cfg.Billing.RecurrenceHorizonDays == 0 {
		cfg.Billing.RecurrenceHorizonDays = 7
	}
}

func (c *Config) validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}
	if len(c.Billing.Currency) != 3 {
		return fmt.Errorf("invalid billing currency: %s", c.Billing.Currency)
	}
	if c.Billing.PaymentTermsDays < 0 {
		return fmt.Errorf("payment terms days cannot be negative: %d", c.Billing.PaymentTermsDays)
	}
	if c.Billing.RecurrenceHorizonDays < 0 {
		return fmt.Errorf("recurrence horizon days cannot be negative: %d", c.Billing.RecurrenceHorizonDays)
	}
	return nil
}

// IsProduction returns true when running in the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
