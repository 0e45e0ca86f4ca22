package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for InsightReporter.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Briefing BriefingConfig `yaml:"briefing"`
	AI       AIConfig       `yaml:"ai"`
}

type ServerConfig struct {
	Port               int    `yaml:"port"`
	Env                string `yaml:"env"`
	LogLevel           string `yaml:"log_level"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

type DatasetConfig struct {
	Source      string        `yaml:"source"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL        string        `yaml:"url"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// BriefingConfig controls the scheduled briefing. An empty Schedule disables it.
type BriefingConfig struct {
	Schedule string `yaml:"schedule"`
}

type AIConfig struct {
	Provider         string          `yaml:"provider"`
	InferenceTimeout time.Duration   `yaml:"inference_timeout"`
	MaxTokens        int             `yaml:"max_tokens"`
	Gemini           GeminiConfig    `yaml:"gemini"`
	OpenAI           OpenAIConfig    `yaml:"openai"`
	Anthropic        AnthropicConfig `yaml:"anthropic"`
	Ollama           OllamaConfig    `yaml:"ollama"`
	VLLM             VLLMConfig      `yaml:"vllm"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type VLLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// EnvConfigFile names the environment variable pointing at an optional YAML file.
const EnvConfigFile = "INSIGHTREPORTER_CONFIG"

var validProviders = map[string]bool{
	"gemini":    true,
	"openai":    true,
	"anthropic": true,
	"ollama":    true,
	"vllm":      true,
	"mock":      true,
}

// Defaults returns the built-in configuration before any file or environment
// overrides are applied.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8080,
			Env:                "development",
			LogLevel:           "info",
			RateLimitPerMinute: 60,
		},
		Dataset: DatasetConfig{
			Source:      "company_data.csv",
			HTTPTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			SessionTTL: 30 * time.Minute,
		},
		AI: AIConfig{
			Provider:         "gemini",
			InferenceTimeout: 120 * time.Second,
			MaxTokens:        1024,
			Gemini:           GeminiConfig{Model: "gemini-2.0-flash"},
			OpenAI:           OpenAIConfig{Model: "gpt-4o-mini"},
			Anthropic:        AnthropicConfig{Model: "claude-sonnet-4-5-20250929"},
			Ollama:           OllamaConfig{BaseURL: "http://localhost:11434", Model: "llama3"},
			VLLM:             VLLMConfig{BaseURL: "http://localhost:8000"},
		},
	}
}

// Load reads configuration and returns a validated Config. The YAML file named
// by INSIGHTREPORTER_CONFIG (if any) is applied first; environment variables
// take precedence over it.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(EnvConfigFile))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = envInt("INSIGHTREPORTER_PORT", c.Server.Port)
	c.Server.Env = envString("INSIGHTREPORTER_ENV", c.Server.Env)
	c.Server.LogLevel = envString("LOG_LEVEL", c.Server.LogLevel)
	c.Server.RateLimitPerMinute = envInt("RATE_LIMIT_PER_MINUTE", c.Server.RateLimitPerMinute)

	c.Dataset.Source = envString("DATASET_SOURCE", c.Dataset.Source)
	c.Dataset.HTTPTimeout = envDuration("DATASET_HTTP_TIMEOUT", c.Dataset.HTTPTimeout)

	c.Database.URL = envString("DATABASE_URL", c.Database.URL)
	c.Database.MaxOpenConns = envInt("DATABASE_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = envInt("DATABASE_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetime = envDuration("DATABASE_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime)

	c.Redis.URL = envString("REDIS_URL", c.Redis.URL)
	c.Redis.SessionTTL = envDuration("SESSION_TTL", c.Redis.SessionTTL)

	c.Briefing.Schedule = envString("BRIEFING_SCHEDULE", c.Briefing.Schedule)

	c.AI.Provider = envString("AI_PROVIDER", c.AI.Provider)
	c.AI.InferenceTimeout = envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", c.AI.InferenceTimeout)
	c.AI.MaxTokens = envInt("AI_MAX_TOKENS", c.AI.MaxTokens)

	// GOOGLE_API_KEY is what the Gemini SDK itself reads; accept both.
	c.AI.Gemini.APIKey = envString("GOOGLE_API_KEY", c.AI.Gemini.APIKey)
	c.AI.Gemini.APIKey = envString("GEMINI_API_KEY", c.AI.Gemini.APIKey)
	c.AI.Gemini.Model = envString("GEMINI_MODEL", c.AI.Gemini.Model)

	c.AI.OpenAI.APIKey = envString("OPENAI_API_KEY", c.AI.OpenAI.APIKey)
	c.AI.OpenAI.BaseURL = envString("OPENAI_BASE_URL", c.AI.OpenAI.BaseURL)
	c.AI.OpenAI.Model = envString("OPENAI_MODEL", c.AI.OpenAI.Model)

	c.AI.Anthropic.APIKey = envString("ANTHROPIC_API_KEY", c.AI.Anthropic.APIKey)
	c.AI.Anthropic.Model = envString("ANTHROPIC_MODEL", c.AI.Anthropic.Model)

	c.AI.Ollama.BaseURL = envString("OLLAMA_BASE_URL", c.AI.Ollama.BaseURL)
	c.AI.Ollama.Model = envString("OLLAMA_MODEL", c.AI.Ollama.Model)

	c.AI.VLLM.BaseURL = envString("VLLM_BASE_URL", c.AI.VLLM.BaseURL)
	c.AI.VLLM.Model = envString("VLLM_MODEL", c.AI.VLLM.Model)
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Dataset.Source) == "" {
		return fmt.Errorf("DATASET_SOURCE is required")
	}

	if _, err := ParseLogLevel(c.Server.LogLevel); err != nil {
		return err
	}

	return nil
}

// ValidateAI checks the provider settings. Only commands that call a model
// need them, so Load leaves them unchecked.
func (c *Config) ValidateAI() error {
	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of gemini, openai, anthropic, ollama, vllm, mock; got %q", c.AI.Provider)
	}
	if c.AI.InferenceTimeout < 0 {
		return fmt.Errorf("AI_INFERENCE_TIMEOUT_SECS must not be negative")
	}

	switch c.AI.Provider {
	case "gemini":
		if c.AI.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY (or GOOGLE_API_KEY) is required when AI_PROVIDER is gemini")
		}
	case "openai":
		if c.AI.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
		}
	case "anthropic":
		if c.AI.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is anthropic")
		}
	case "ollama":
		if !isHTTPURL(c.AI.Ollama.BaseURL) {
			return fmt.Errorf("OLLAMA_BASE_URL must start with http:// or https://, got %q", c.AI.Ollama.BaseURL)
		}
	case "vllm":
		if !isHTTPURL(c.AI.VLLM.BaseURL) {
			return fmt.Errorf("VLLM_BASE_URL must start with http:// or https://, got %q", c.AI.VLLM.BaseURL)
		}
		if c.AI.VLLM.Model == "" {
			return fmt.Errorf("VLLM_MODEL is required when AI_PROVIDER is vllm")
		}
	}
	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.Redis.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// ParseLogLevel maps a LOG_LEVEL value to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, errors.New("LOG_LEVEL must be one of debug, info, warn, error")
	}
	return lvl, nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
