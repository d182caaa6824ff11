// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Database struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"database" yaml:"database"`

	Sync struct {
		TargetCurrency string `mapstructure:"target_currency" yaml:"target_currency"`
		WindowDays     int    `mapstructure:"window_days" yaml:"window_days"`
		OrderLimit     int    `mapstructure:"order_limit" yaml:"order_limit"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	} `mapstructure:"sync" yaml:"sync"`

	Bank struct {
		BaseURL    string   `mapstructure:"base_url" yaml:"base_url"`
		SecretID   string   `mapstructure:"secret_id" yaml:"-"` // Never serialize secrets
		SecretKey  string   `mapstructure:"secret_key" yaml:"-"`
		AccountIDs []string `mapstructure:"account_ids" yaml:"account_ids"`
	} `mapstructure:"bank" yaml:"bank"`

	Brokerage struct {
		BaseURL string `mapstructure:"base_url" yaml:"base_url"`
		APIKey  string `mapstructure:"api_key" yaml:"-"`
	} `mapstructure:"brokerage" yaml:"brokerage"`

	Rates struct {
		BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	} `mapstructure:"rates" yaml:"rates"`

	AI struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		Model   string `mapstructure:"model" yaml:"model"`
		APIKey  string `mapstructure:"api_key" yaml:"-"`
	} `mapstructure:"ai" yaml:"ai"`

	Categorization struct {
		CategoriesFile string `mapstructure:"categories_file" yaml:"categories_file"`
	} `mapstructure:"categorization" yaml:"categorization"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.finsync")
	v.AddConfigPath(".finsync")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("FINSYNC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. Secrets always bind from unprefixed env vars
	bindings := map[string]string{
		"bank.secret_id":    "GOCARDLESS_SECRET_ID",
		"bank.secret_key":   "GOCARDLESS_SECRET_KEY",
		"brokerage.api_key": "TRADING212_API_KEY",
		"ai.api_key":        "GEMINI_API_KEY",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			fmt.Printf("Warning: failed to bind %s environment variable: %v\n", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.path", "finsync.db")

	v.SetDefault("sync.target_currency", "CZK")
	v.SetDefault("sync.window_days", 90)
	v.SetDefault("sync.order_limit", 100)
	v.SetDefault("sync.timeout_seconds", 30)

	v.SetDefault("bank.base_url", "https://bankaccountdata.gocardless.com/api/v2")
	v.SetDefault("bank.account_ids", []string{})
	v.SetDefault("brokerage.base_url", "https://live.trading212.com/api/v0")
	v.SetDefault("rates.base_url", "https://api.frankfurter.app")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")

	v.SetDefault("categorization.categories_file", "categories.yaml")
}

// validateConfig validates the configuration values.
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len(config.Sync.TargetCurrency) != 3 {
		return fmt.Errorf("sync.target_currency must be a 3-letter code, got: %s", config.Sync.TargetCurrency)
	}

	if config.Sync.WindowDays < 1 || config.Sync.WindowDays > 730 {
		return fmt.Errorf("sync.window_days must be between 1 and 730, got: %d", config.Sync.WindowDays)
	}

	if config.Sync.TimeoutSeconds < 1 || config.Sync.TimeoutSeconds > 300 {
		return fmt.Errorf("sync.timeout_seconds must be between 1 and 300, got: %d", config.Sync.TimeoutSeconds)
	}

	if config.AI.Enabled && config.AI.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct.
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
