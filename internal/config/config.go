// Package config provides unified configuration loading for FreightLens.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/freightlens/freightlens/internal/domain"
)

// Config holds all configuration for FreightLens.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Convert       ConvertConfig       `yaml:"convert"`
	LLM           LLMConfig           `yaml:"llm"`
	Session       SessionConfig       `yaml:"session"`
	Observability ObservabilityConfig `yaml:"observability"`
	Auth          AuthConfig          `yaml:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
}

// ConvertConfig holds PDF conversion settings.
type ConvertConfig struct {
	// Provider selects the conversion backend: remote or local.
	Provider string        `yaml:"provider"`
	Remote   RemoteConvert `yaml:"remote"`
	Local    LocalConvert  `yaml:"local"`
}

// RemoteConvert holds settings for the external conversion service.
type RemoteConvert struct {
	BaseURL string        `yaml:"base_url"`
	Secret  string        `yaml:"secret"` // bearer secret, env CONVERT_API_SECRET
	Format  string        `yaml:"format"` // png or jpg
	Timeout time.Duration `yaml:"timeout"`
}

// LocalConvert holds settings for the in-process rasterizer.
type LocalConvert struct {
	DPI int `yaml:"dpi"`
}

// LLMConfig holds settings for the model service.
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"` // env LLM_API_KEY
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

// SessionConfig holds document session store settings.
type SessionConfig struct {
	// Store selects the session store driver: memory or redis.
	Store string        `yaml:"store"`
	TTL   time.Duration `yaml:"ttl"`
	Redis RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"` // env FREIGHTLENS_API_TOKEN
}

// Load reads configuration from a YAML file and applies environment
// overrides. An empty path loads defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for
// development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      60 * time.Second,
			WriteTimeout:     120 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxUploadBytes:   32 << 20, // 32MB
		},
		Convert: ConvertConfig{
			Provider: "remote",
			Remote: RemoteConvert{
				BaseURL: "https://v2.convertapi.com",
				Format:  "png",
				Timeout: 90 * time.Second,
			},
			Local: LocalConvert{
				DPI: 150,
			},
		},
		LLM: LLMConfig{
			BaseURL:     "https://openrouter.ai/api/v1",
			Model:       "anthropic/claude-3.5-sonnet",
			Temperature: 0.1,
			Timeout:     120 * time.Second,
			MaxRetries:  3,
		},
		Session: SessionConfig{
			Store: "memory",
			TTL:   1 * time.Hour,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:  "debug",
			LogFormat: "json",
		},
		Auth: AuthConfig{
			Enabled: false,
		},
	}
}

// Validate checks the configuration for errors. Credential absence is a
// startup-time fatal condition, not a per-request check.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Convert.Provider != "remote" && c.Convert.Provider != "local" {
		return fmt.Errorf("invalid convert provider: %s", c.Convert.Provider)
	}

	if c.Convert.Provider == "remote" && c.Convert.Remote.Secret == "" {
		return domain.ConfigurationError("conversion secret is not set (CONVERT_API_SECRET)", nil)
	}

	if c.Convert.Remote.Format != "png" && c.Convert.Remote.Format != "jpg" {
		return fmt.Errorf("invalid convert format: %s", c.Convert.Remote.Format)
	}

	if c.LLM.APIKey == "" {
		return domain.ConfigurationError("LLM API key is not set (LLM_API_KEY)", nil)
	}

	if c.Session.Store != "memory" && c.Session.Store != "redis" {
		return fmt.Errorf("invalid session store: %s", c.Session.Store)
	}

	if c.Auth.Enabled && c.Auth.Token == "" {
		return domain.ConfigurationError("auth enabled but no token set (FREIGHTLENS_API_TOKEN)", nil)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CONVERT_PROVIDER"); v != "" {
		cfg.Convert.Provider = v
	}
	if v := os.Getenv("CONVERT_API_URL"); v != "" {
		cfg.Convert.Remote.BaseURL = v
	}
	if v := os.Getenv("CONVERT_API_SECRET"); v != "" {
		cfg.Convert.Remote.Secret = v
	}
	if v := os.Getenv("LLM_API_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("SESSION_STORE"); v != "" {
		cfg.Session.Store = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Session.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Session.Redis.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
	if v := os.Getenv("FREIGHTLENS_API_TOKEN"); v != "" {
		cfg.Auth.Token = v
		cfg.Auth.Enabled = true
	}
}
