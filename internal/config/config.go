// Package config loads the process configuration from the environment,
// with an optional YAML overlay for values that are awkward to carry
// in the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LLM holds the model endpoint configuration.
type LLM struct {
	ModelID string        `yaml:"model_id"`
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Embedding holds the embedding backend configuration.
type Embedding struct {
	Type       string `yaml:"type"` // openai, dashscope, simple
	ModelName  string `yaml:"model_name"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Dimensions int    `yaml:"dimensions"`
}

// Qdrant holds the vector store configuration.
type Qdrant struct {
	URL        string        `yaml:"url"`
	APIKey     string        `yaml:"api_key"`
	Collection string        `yaml:"collection"`
	VectorSize int           `yaml:"vector_size"`
	Distance   string        `yaml:"distance"` // Cosine, Dot, Euclid
	Timeout    time.Duration `yaml:"timeout"`
}

// Neo4j holds the graph store configuration.
type Neo4j struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Config is the fully resolved process configuration.
type Config struct {
	LLM       LLM       `yaml:"llm"`
	Embedding Embedding `yaml:"embedding"`
	Qdrant    Qdrant    `yaml:"qdrant"`
	Neo4j     Neo4j     `yaml:"neo4j"`
	LogLevel  string    `yaml:"log_level"`

	// ProviderOverride pins the LLM provider, bypassing autodetection
	// (internal/llm.DetectProvider's explicit-arg priority level).
	ProviderOverride string `yaml:"provider_override"`
}

// Load builds a Config from the environment, optionally overlaid by a
// YAML file (with $VAR/${VAR} expansion) if path is non-empty. Env
// vars always take precedence over the file: the file seeds defaults,
// Load then re-applies every set env var on top.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		expanded := os.ExpandEnv(string(raw))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("config: missing API key (set LLM_API_KEY or a provider-specific key)")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.LLM.ModelID, "LLM_MODEL_ID")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setDuration(&cfg.LLM.Timeout, "LLM_TIMEOUT")

	// Provider-specific keys are consulted in the same priority order
	// as internal/llm.DetectProvider; the first one present wins the
	// plain LLM_API_KEY slot too, so callers that only look at
	// cfg.LLM.APIKey still get a usable key.
	for _, envVar := range []string{"DEEPSEEK_API_KEY", "DASHSCOPE_API_KEY", "OPENAI_API_KEY", "LLM_API_KEY"} {
		if v := os.Getenv(envVar); v != "" {
			cfg.LLM.APIKey = v
			break
		}
	}

	setString(&cfg.Embedding.Type, "EMBED_MODEL_TYPE")
	setString(&cfg.Embedding.ModelName, "EMBED_MODEL_NAME")
	setString(&cfg.Embedding.APIKey, "EMBED_API_KEY")
	setString(&cfg.Embedding.BaseURL, "EMBED_BASE_URL")
	setInt(&cfg.Embedding.Dimensions, "EMBED_DIMENSIONS")

	setString(&cfg.Qdrant.URL, "QDRANT_URL")
	setString(&cfg.Qdrant.APIKey, "QDRANT_API_KEY")
	setString(&cfg.Qdrant.Collection, "QDRANT_COLLECTION")
	setInt(&cfg.Qdrant.VectorSize, "QDRANT_VECTOR_SIZE")
	setString(&cfg.Qdrant.Distance, "QDRANT_DISTANCE")
	setDuration(&cfg.Qdrant.Timeout, "QDRANT_TIMEOUT")

	setString(&cfg.Neo4j.URI, "NEO4J_URI")
	setString(&cfg.Neo4j.Username, "NEO4J_USERNAME")
	setString(&cfg.Neo4j.Password, "NEO4J_PASSWORD")
	setString(&cfg.Neo4j.Database, "NEO4J_DATABASE")

	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.ProviderOverride, "LLM_PROVIDER")
}

func setString(dst *string, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		*dst = v
	}
}

func setInt(dst *int, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// LogLevelOrDefault parses cfg.LogLevel into an slog.Level, defaulting
// to Info on an unrecognized value. SILENT maps to a level above Error
// so nothing is emitted by default handlers.
func LogLevelOrDefault(level string) slog.Level {
	switch level {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	case "SILENT":
		return slog.Level(100)
	default:
		return slog.LevelInfo
	}
}
