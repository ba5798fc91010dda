// Package config loads the bot's configuration from an optional YAML file
// with environment variable overrides.
//
// Precedence: built-in defaults, then the YAML file, then environment
// variables (OPENAI_API_KEY, CHROMA_HOST, ...), so a plain .env deployment
// works without a config file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	OpenAI   OpenAIConfig `yaml:"openai"`
	Chroma   ChromaConfig `yaml:"chroma"`
	API      APIConfig    `yaml:"api"`
	RAG      RAGConfig    `yaml:"rag"`
	Store    StoreConfig  `yaml:"store"`
	Owner    OwnerConfig  `yaml:"owner"`
	LogLevel string       `yaml:"log_level"`
}

// OpenAIConfig holds the OpenAI credentials and model selection.
type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// ChromaConfig locates the Chroma vector database.
type ChromaConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the host:port the server listens on.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// RAGConfig tunes document chunking and retrieval.
type RAGConfig struct {
	ChunkSize         int `yaml:"chunk_size"`
	ChunkOverlap      int `yaml:"chunk_overlap"`
	NumDocsToRetrieve int `yaml:"num_docs_to_retrieve"`
}

// StoreConfig selects the checkpoint backend for conversation threads.
type StoreConfig struct {
	// Backend is one of "memory", "sqlite", "mysql", "redis".
	Backend       string        `yaml:"backend"`
	SQLitePath    string        `yaml:"sqlite_path"`
	MySQLDSN      string        `yaml:"mysql_dsn"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisTTL      time.Duration `yaml:"redis_ttl"`
}

// OwnerConfig describes the portfolio owner the bot speaks for. The values
// flow into the responder persona and the email/calendar tools.
type OwnerConfig struct {
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	BookingLink string `yaml:"booking_link"`
}

// Load reads the YAML file at path (missing file is not an error), applies
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.setDefaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case os.IsNotExist(err):
			// Defaults plus environment only.
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	c.OpenAI.Model = "gpt-4o-mini"
	c.OpenAI.EmbeddingModel = "text-embedding-3-small"

	c.Chroma.Host = "localhost"
	c.Chroma.Port = 8000
	c.Chroma.Collection = "portfolio_docs"

	c.API.Host = "0.0.0.0"
	c.API.Port = 8004
	c.API.ShutdownTimeout = 10 * time.Second

	c.RAG.ChunkSize = 1000
	c.RAG.ChunkOverlap = 200
	c.RAG.NumDocsToRetrieve = 5

	c.Store.Backend = "memory"
	c.Store.SQLitePath = "chatbot.db"
	c.Store.RedisAddr = "localhost:6379"

	c.LogLevel = "INFO"
}

func (c *Config) applyEnv() error {
	envString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	envString(&c.OpenAI.Model, "OPENAI_MODEL")
	envString(&c.OpenAI.EmbeddingModel, "OPENAI_EMBEDDING_MODEL")

	envString(&c.Chroma.Host, "CHROMA_HOST")
	envString(&c.Chroma.Collection, "CHROMA_COLLECTION")

	envString(&c.API.Host, "API_HOST")

	envString(&c.Store.Backend, "STORE_BACKEND")
	envString(&c.Store.SQLitePath, "SQLITE_PATH")
	envString(&c.Store.MySQLDSN, "MYSQL_DSN")
	envString(&c.Store.RedisAddr, "REDIS_ADDR")
	envString(&c.Store.RedisPassword, "REDIS_PASSWORD")

	envString(&c.Owner.Name, "OWNER_NAME")
	envString(&c.Owner.Email, "OWNER_EMAIL")
	envString(&c.Owner.BookingLink, "OWNER_BOOKING_LINK")

	envString(&c.LogLevel, "LOG_LEVEL")

	for _, v := range []struct {
		dst *int
		key string
	}{
		{&c.Chroma.Port, "CHROMA_PORT"},
		{&c.API.Port, "API_PORT"},
		{&c.RAG.ChunkSize, "CHUNK_SIZE"},
		{&c.RAG.ChunkOverlap, "CHUNK_OVERLAP"},
		{&c.RAG.NumDocsToRetrieve, "NUM_DOCS_TO_RETRIEVE"},
		{&c.Store.RedisDB, "REDIS_DB"},
	} {
		if err := envInt(v.dst, v.key); err != nil {
			return err
		}
	}

	if err := envDuration(&c.Store.RedisTTL, "REDIS_TTL"); err != nil {
		return err
	}
	return envDuration(&c.API.ShutdownTimeout, "SHUTDOWN_TIMEOUT")
}

// Validate checks the configuration, collecting every problem into one
// error so a broken deployment surfaces all issues at once.
func (c *Config) Validate() error {
	var errs []string

	if c.OpenAI.APIKey == "" {
		errs = append(errs, "OPENAI_API_KEY is required")
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, "invalid API port")
	}
	if c.Chroma.Port <= 0 || c.Chroma.Port > 65535 {
		errs = append(errs, "invalid Chroma port")
	}
	if c.RAG.ChunkSize <= 0 {
		errs = append(errs, "chunk_size must be positive")
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		errs = append(errs, "chunk_overlap must be non-negative and smaller than chunk_size")
	}
	if c.RAG.NumDocsToRetrieve <= 0 {
		errs = append(errs, "num_docs_to_retrieve must be positive")
	}

	switch c.Store.Backend {
	case "memory", "sqlite", "mysql", "redis":
	default:
		errs = append(errs, fmt.Sprintf("unknown store backend %q", c.Store.Backend))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ZapLevel maps the configured log level onto a zap level. WARNING and
// CRITICAL are accepted aliases. Unknown values default to Info.
func (c *Config) ZapLevel() zapcore.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "CRITICAL", "FATAL":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", key, err)
	}
	*dst = d
	return nil
}
