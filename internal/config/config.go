// Package config provides configuration for the orchestrator.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Generation modes.
const (
	GenerationModeMock   = "mock"
	GenerationModeRAG    = "rag"
	GenerationModeOpenAI = "openai"
)

// Config holds the orchestrator configuration.
type Config struct {
	// Server settings
	HTTPPort int `mapstructure:"http_port"`

	// Database
	DatabaseDriver string `mapstructure:"database_driver"`
	DatabaseURL    string `mapstructure:"database_url"`

	// Generation
	GenerationMode string        `mapstructure:"generation_mode"`
	RAGURL         string        `mapstructure:"rag_url"`
	RAGTimeout     time.Duration `mapstructure:"-"`
	OpenAIBaseURL  string        `mapstructure:"openai_base_url"`
	OpenAIAPIKey   string        `mapstructure:"openai_api_key"`
	OpenAIModel    string        `mapstructure:"openai_model"`
	SummaryEnabled bool          `mapstructure:"summary_enabled"`

	// Credits
	CreditsAutoGenerate bool `mapstructure:"credits_auto_generate"`

	// Policy
	PolicyPath       string `mapstructure:"policy_path"`
	MaxContentLength int    `mapstructure:"max_content_length"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
}

var keys = []string{
	"http_port",
	"database_driver",
	"database_url",
	"generation_mode",
	"rag_url",
	"rag_timeout_ms",
	"openai_base_url",
	"openai_api_key",
	"openai_model",
	"summary_enabled",
	"credits_auto_generate",
	"policy_path",
	"max_content_length",
	"log_level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_port", 8080)
	v.SetDefault("database_driver", "sqlite3")
	v.SetDefault("database_url", "file:guidely.db?cache=shared&mode=rwc")
	v.SetDefault("generation_mode", GenerationModeMock)
	v.SetDefault("rag_url", "http://localhost:8000")
	v.SetDefault("rag_timeout_ms", 30000)
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("summary_enabled", true)
	v.SetDefault("credits_auto_generate", true)
	v.SetDefault("policy_path", "")
	v.SetDefault("max_content_length", 8000)
	v.SetDefault("log_level", "info")
}

// Load reads config.yaml (or the file named by CONFIG_PATH) when present and
// overlays environment variables such as HTTP_PORT or RAG_URL.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", k, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.RAGTimeout = time.Duration(v.GetInt("rag_timeout_ms")) * time.Millisecond

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.GenerationMode {
	case GenerationModeMock, GenerationModeRAG, GenerationModeOpenAI:
	default:
		return fmt.Errorf("invalid generation_mode %q", c.GenerationMode)
	}
	switch c.DatabaseDriver {
	case "sqlite3", "sqlite", "memory":
	default:
		return fmt.Errorf("invalid database_driver %q", c.DatabaseDriver)
	}
	if c.RAGTimeout <= 0 {
		return errors.New("rag_timeout_ms must be positive")
	}
	if c.MaxContentLength <= 0 {
		return errors.New("max_content_length must be positive")
	}
	return nil
}
