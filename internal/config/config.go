// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (DATABASE_URL and explicitly bound secrets)
//  2. Config file (~/.botgpt/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Model: provider, chat model, temperature, output token cap, call timeout
//   - Embedding: embedder model for chunk and query vectors
//   - Storage: PostgreSQL connection
//   - Server: HTTP listen address
//   - Tracing: optional OTLP trace export
//
// Sensitive values (password) are never logged. Validation is fail-fast with
// sentinel errors so callers can use errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidProvider      = errors.New("invalid provider")
	ErrInvalidModelName     = errors.New("invalid model name")
	ErrInvalidTemperature   = errors.New("invalid temperature")
	ErrInvalidMaxTokens     = errors.New("invalid max output tokens")
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")
	ErrInvalidPostgresHost  = errors.New("invalid PostgreSQL host")
	ErrInvalidPostgresPort  = errors.New("invalid PostgreSQL port")
	ErrInvalidPostgresDB    = errors.New("invalid PostgreSQL database name")
	ErrInvalidListenAddr    = errors.New("invalid listen address")
	ErrInvalidTopK          = errors.New("invalid retrieval top-k")
	ErrInvalidChunkWords    = errors.New("invalid chunk word limit")
)

// Model provider identifiers used in Config.Provider.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Default model settings. The embedder must emit 768-dimensional vectors to
// match the vector(768) schema column (see rag.VectorDimension);
// text-embedding-004 does, while gemini-embedding-001 defaults to 3072.
const (
	DefaultChatModel     = "gemini-2.5-flash"
	DefaultEmbedderModel = "text-embedding-004"
)

// Config stores application configuration.
type Config struct {
	// Model configuration
	Provider     string        `mapstructure:"provider"`       // "gemini" (default), "ollama", "openai"
	ModelName    string        `mapstructure:"model_name"`     // chat model identifier
	Temperature  float64       `mapstructure:"temperature"`    // 0.0 - 2.0
	MaxTokens    int           `mapstructure:"max_tokens"`     // max output tokens per assistant reply
	ModelTimeout time.Duration `mapstructure:"model_timeout"`  // upper bound per model call
	EmbedderModel string       `mapstructure:"embedder_model"` // embedding model identifier

	// Ollama configuration (only used when provider is "ollama")
	OllamaHost string `mapstructure:"ollama_host"`

	// Retrieval configuration
	RetrieveTopK  int `mapstructure:"retrieve_top_k"`  // chunks injected per grounded turn
	ChunkMaxWords int `mapstructure:"chunk_max_words"` // words per document chunk

	// Storage configuration
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// HTTP server
	ListenAddr string `mapstructure:"listen_addr"`

	// Tracing configuration (optional OTLP export)
	Tracing TracingConfig `mapstructure:"tracing"`
}

// TracingConfig configures optional OTLP trace export to a local collector.
type TracingConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	CollectorURL string `mapstructure:"collector_url"` // host:port of the OTLP HTTP endpoint
	ServiceName  string `mapstructure:"service_name"`
	Environment  string `mapstructure:"environment"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".botgpt")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is not an error, defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	viper.SetDefault("provider", ProviderGemini)
	viper.SetDefault("model_name", DefaultChatModel)
	viper.SetDefault("temperature", 0.7)
	viper.SetDefault("max_tokens", 300)
	viper.SetDefault("model_timeout", 30*time.Second)
	viper.SetDefault("embedder_model", DefaultEmbedderModel)

	viper.SetDefault("ollama_host", "http://localhost:11434")

	viper.SetDefault("retrieve_top_k", 3)
	viper.SetDefault("chunk_max_words", 500)

	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "botgpt")
	viper.SetDefault("postgres_password", "botgpt_dev_password")
	viper.SetDefault("postgres_db_name", "botgpt")
	viper.SetDefault("postgres_ssl_mode", "disable")

	viper.SetDefault("listen_addr", "127.0.0.1:8000")

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.collector_url", "localhost:4318")
	viper.SetDefault("tracing.service_name", "botgpt")
	viper.SetDefault("tracing.environment", "dev")
}

// bindEnvVariables binds environment variables explicitly.
// GEMINI_API_KEY is read directly by the genkit plugin, not via viper.
func bindEnvVariables() {
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("listen_addr", "BOTGPT_ADDR")
	mustBind("postgres_password", "BOTGPT_POSTGRES_PASSWORD")
	mustBind("tracing.enabled", "BOTGPT_TRACING")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: %q (expected gemini, ollama, or openai)", ErrInvalidProvider, c.Provider)
	}
	if c.ModelName == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %v (expected 0.0-2.0)", ErrInvalidTemperature, c.Temperature)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("%w: %d (must be positive)", ErrInvalidMaxTokens, c.MaxTokens)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder model must not be empty", ErrInvalidEmbedderModel)
	}
	if c.RetrieveTopK < 1 {
		return fmt.Errorf("%w: %d (must be positive)", ErrInvalidTopK, c.RetrieveTopK)
	}
	if c.ChunkMaxWords < 1 {
		return fmt.Errorf("%w: %d (must be positive)", ErrInvalidChunkWords, c.ChunkMaxWords)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name must not be empty", ErrInvalidPostgresDB)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: address must not be empty", ErrInvalidListenAddr)
	}
	return nil
}
