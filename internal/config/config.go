// Package config loads estimator settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// Config is the complete process configuration
type Config struct {
	Server    ServerConfig             `yaml:"server"`
	Documents DocumentsConfig          `yaml:"documents"`
	LLM       domain.LLMSettings       `yaml:"llm"`
	Embedding domain.EmbeddingSettings `yaml:"embedding"`
	Index     IndexConfig              `yaml:"index"`
	Storage   StorageConfig            `yaml:"storage"`
	Estimate  EstimateConfig           `yaml:"estimate"`
	Log       LogConfig                `yaml:"log"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DocumentsConfig names the reference corpus
type DocumentsConfig struct {
	DataDir          string   `yaml:"data_dir"`
	Files            []string `yaml:"files"` // empty means the built-in list
	PrimaryReference string   `yaml:"primary_reference"`
	ExamplesDocument string   `yaml:"examples_document"`
}

// IndexConfig sizes the context index build
type IndexConfig struct {
	Enabled        bool `yaml:"enabled"`
	PassageSize    int  `yaml:"passage_size"`
	PassageOverlap int  `yaml:"passage_overlap"`
	BatchSize      int  `yaml:"batch_size"`
	Concurrency    int  `yaml:"concurrency"`
}

// StorageConfig selects the vector store and optional shared backends
type StorageConfig struct {
	VectorBackend     string        `yaml:"vector_backend"` // memory or postgres
	DatabaseURL       string        `yaml:"database_url"`
	RedisURL          string        `yaml:"redis_url"`
	EmbeddingCacheTTL time.Duration `yaml:"embedding_cache_ttl"`
}

// EstimateConfig holds pricing defaults
type EstimateConfig struct {
	DefaultHourlyRate float64 `yaml:"default_hourly_rate"`
	BufferPercentage  float64 `yaml:"buffer_percentage"` // fraction, 0.20 is 20%
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8000,
			CORSOrigins:    []string{"*"},
			RateLimitRPS:   10,
			RateLimitBurst: 20,
			MaxUploadBytes: 10 << 20,
			RequestTimeout: 150 * time.Second,
		},
		Documents: DocumentsConfig{
			DataDir:          "data",
			PrimaryReference: "Estimates.txt",
			ExamplesDocument: "Estimation Calculator Data.pdf",
		},
		LLM: domain.LLMSettings{
			Provider: domain.AIProviderOpenAI,
			Timeout:  60 * time.Second,
		},
		Embedding: domain.EmbeddingSettings{
			Provider: domain.AIProviderOpenAI,
		},
		Index: IndexConfig{
			Enabled:        true,
			PassageSize:    1500,
			PassageOverlap: 200,
			BatchSize:      16,
			Concurrency:    3,
		},
		Storage: StorageConfig{
			VectorBackend:     domain.VectorBackendMemory,
			EmbeddingCacheTTL: 7 * 24 * time.Hour,
		},
		Estimate: EstimateConfig{
			DefaultHourlyRate: 30,
			BufferPercentage:  0.20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (when non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.resolveCredentials()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.Port = getEnvInt("PORT", c.Server.Port)
	c.Server.CORSOrigins = getEnvList("CORS_ORIGINS", c.Server.CORSOrigins)
	c.Server.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", c.Server.RateLimitRPS)
	c.Server.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", c.Server.RateLimitBurst)
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
		c.Server.RequestTimeout = d
	}

	c.Documents.DataDir = getEnv("DATA_DIR", c.Documents.DataDir)
	c.Documents.Files = getEnvList("DOCUMENT_FILES", c.Documents.Files)
	c.Documents.PrimaryReference = getEnv("PRIMARY_REFERENCE", c.Documents.PrimaryReference)
	c.Documents.ExamplesDocument = getEnv("EXAMPLES_DOCUMENT", c.Documents.ExamplesDocument)

	c.LLM.Provider = domain.AIProvider(getEnv("LLM_PROVIDER", string(c.LLM.Provider)))
	c.LLM.Model = getEnv("LLM_MODEL", getEnv("OPENAI_MODEL", c.LLM.Model))
	c.LLM.BaseURL = getEnv("LLM_BASE_URL", c.LLM.BaseURL)
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("LLM_TIMEOUT: %w", err)
		}
		c.LLM.Timeout = d
	}

	c.Embedding.Provider = domain.AIProvider(getEnv("EMBEDDING_PROVIDER", string(c.Embedding.Provider)))
	c.Embedding.Model = getEnv("EMBEDDING_MODEL", c.Embedding.Model)
	c.Index.Enabled = getEnvBool("INDEX_ENABLED", c.Index.Enabled)

	c.Storage.VectorBackend = getEnv("VECTOR_BACKEND", c.Storage.VectorBackend)
	c.Storage.DatabaseURL = getEnv("DATABASE_URL", c.Storage.DatabaseURL)
	c.Storage.RedisURL = getEnv("REDIS_URL", c.Storage.RedisURL)

	c.Estimate.DefaultHourlyRate = getEnvFloat("DEFAULT_HOURLY_RATE", c.Estimate.DefaultHourlyRate)
	c.Estimate.BufferPercentage = getEnvFloat("BUFFER_PERCENTAGE", c.Estimate.BufferPercentage)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	return nil
}

// resolveCredentials fills provider keys and URLs from their conventional variables
func (c *Config) resolveCredentials() {
	c.LLM.APIKey, c.LLM.BaseURL = credentialsFor(c.LLM.Provider, c.LLM.APIKey, c.LLM.BaseURL)
	c.Embedding.APIKey, c.Embedding.BaseURL = credentialsFor(c.Embedding.Provider, c.Embedding.APIKey, c.Embedding.BaseURL)
}

func credentialsFor(provider domain.AIProvider, apiKey, baseURL string) (string, string) {
	switch provider {
	case domain.AIProviderOpenAI:
		apiKey = getEnv("OPENAI_API_KEY", apiKey)
	case domain.AIProviderGemini:
		apiKey = getEnv("GEMINI_API_KEY", apiKey)
	case domain.AIProviderOllama:
		if baseURL == "" {
			baseURL = os.Getenv("OLLAMA_URL")
		}
	}
	return apiKey, baseURL
}

// Validate rejects settings the process cannot start with
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Server.Port))
	}
	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, errors.New("rate_limit_rps must not be negative"))
	}
	if c.Estimate.DefaultHourlyRate < 0 {
		errs = append(errs, errors.New("default_hourly_rate must not be negative"))
	}
	if c.Estimate.BufferPercentage < 0 {
		errs = append(errs, errors.New("buffer_percentage must not be negative"))
	}

	switch c.Storage.VectorBackend {
	case domain.VectorBackendMemory:
	case domain.VectorBackendPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("vector_backend postgres requires DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown vector_backend %q", c.Storage.VectorBackend))
	}

	if c.LLM.Provider != "" && !c.LLM.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("%w: llm %s", domain.ErrInvalidProvider, c.LLM.Provider))
	}
	if c.Embedding.Provider != "" && !c.Embedding.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("%w: embedding %s", domain.ErrInvalidProvider, c.Embedding.Provider))
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty items
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseDuration accepts Go durations ("90s") or plain seconds ("90")
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
