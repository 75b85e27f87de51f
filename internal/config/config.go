// Package config provides Viper-based hierarchical configuration management:
// defaults, then an optional YAML config file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Server struct {
		Addr string `mapstructure:"addr" yaml:"addr"`
	} `mapstructure:"server" yaml:"server"`

	Data struct {
		Database        string `mapstructure:"database" yaml:"database"`
		CategoriesFile  string `mapstructure:"categories_file" yaml:"categories_file"`
		VendorRulesFile string `mapstructure:"vendor_rules_file" yaml:"vendor_rules_file"`
	} `mapstructure:"data" yaml:"data"`

	Ingest struct {
		MaxTextBytes int `mapstructure:"max_text_bytes" yaml:"max_text_bytes"`
		MaxNoteChars int `mapstructure:"max_note_chars" yaml:"max_note_chars"`
	} `mapstructure:"ingest" yaml:"ingest"`

	OCR struct {
		Model               string  `mapstructure:"model" yaml:"model"`
		ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
		APIKey              string  `mapstructure:"api_key" yaml:"-"` // Never serialize the API key
	} `mapstructure:"ocr" yaml:"ocr"`
}

var loadEnvOnce sync.Once

// LoadEnv loads environment variables from a .env file when one exists.
func LoadEnv() {
	loadEnvOnce.Do(func() {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
		_ = godotenv.Load(".env")
	})
}

// Initialize builds the configuration with hierarchical loading.
func Initialize() (*Config, error) {
	LoadEnv()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.pocket-ledger")
	v.AddConfigPath(".pocket-ledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("POCKET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// A malformed file is worth surfacing; a missing one is not.
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// The OCR key always comes from the unprefixed Gemini variable.
	if err := v.BindEnv("ocr.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("data.database", "pocket-ledger.db")
	v.SetDefault("data.categories_file", "categories.yaml")
	v.SetDefault("data.vendor_rules_file", "vendor-rules.yaml")

	v.SetDefault("ingest.max_text_bytes", 8192)
	v.SetDefault("ingest.max_note_chars", 500)

	v.SetDefault("ocr.model", "gemini-2.0-flash")
	v.SetDefault("ocr.confidence_threshold", 0.5)
}

func validate(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}
	if config.Ingest.MaxTextBytes < 1 {
		return fmt.Errorf("ingest.max_text_bytes must be positive, got: %d", config.Ingest.MaxTextBytes)
	}
	if config.Ingest.MaxNoteChars < 0 {
		return fmt.Errorf("ingest.max_note_chars must not be negative, got: %d", config.Ingest.MaxNoteChars)
	}
	if config.OCR.ConfidenceThreshold < 0.0 || config.OCR.ConfidenceThreshold > 1.0 {
		return fmt.Errorf("ocr.confidence_threshold must be between 0.0 and 1.0, got: %f", config.OCR.ConfidenceThreshold)
	}
	return nil
}
