package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/artpar/airflow-compose/internal/shell/schema"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Schema   SchemaConfig   `mapstructure:"schema"`
	Template TemplateConfig `mapstructure:"template"`
	Log      LogConfig      `mapstructure:"log"`
}

// SchemaConfig selects where the Compose JSON Schema comes from.
type SchemaConfig struct {
	// Source is "remote" (default), "embedded" or "file".
	Source string `mapstructure:"source"`
	// URL is fetched when Source is "remote".
	URL string `mapstructure:"url"`
	// File is read when Source is "file".
	File string `mapstructure:"file"`
	// Timeout bounds the remote fetch. Zero waits indefinitely.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Provider converts the config into a schema provider configuration.
func (c SchemaConfig) Provider() schema.Config {
	return schema.Config{
		Source:  schema.Source(c.Source),
		URL:     c.URL,
		File:    c.File,
		Timeout: c.Timeout,
	}
}

// TemplateConfig holds template lookup configuration.
type TemplateConfig struct {
	// Dir overrides the templates built into the binary.
	Dir string `mapstructure:"dir"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Config Loading
// =============================================================================

// EnvPrefix prefixes every environment override, e.g. AIRFLOW_COMPOSE_SCHEMA_SOURCE.
const EnvPrefix = "AIRFLOW_COMPOSE"

// newViper returns a viper instance with defaults and environment overrides.
func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("schema.source", string(schema.SourceRemote))
	v.SetDefault("schema.url", schema.DefaultURL)
	v.SetDefault("schema.file", "")
	v.SetDefault("schema.timeout", "0s")
	v.SetDefault("template.dir", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	return loadConfig(newViper(), configPath)
}

func loadConfig(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
// Logs go to w (stderr for the CLIs) so stdout carries only the document.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
