// Package config provides configuration loading and structs for the corpora server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Provider  ProviderConfig  `yaml:"provider"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ProviderConfig holds settings for the embedding and answer providers.
type ProviderConfig struct {
	// BaseURL is the OpenAI-compatible API base URL.
	BaseURL string `yaml:"base_url"`
	// APIKeyEnv names the environment variable carrying the API key.
	APIKeyEnv string `yaml:"api_key_env"`
	// EmbeddingModel fixes the embedding vector dimensionality.
	EmbeddingModel string `yaml:"embedding_model"`
	// EmbeddingDimensions overrides the dimensionality known for the model.
	EmbeddingDimensions int `yaml:"embedding_dimensions"`
	// ChatModel generates answers.
	ChatModel string `yaml:"chat_model"`
	// AnswerMaxTokens caps generated answer length.
	AnswerMaxTokens int `yaml:"answer_max_tokens"`
	// AnswerTemperature controls answer creativity. Nil means the default;
	// an explicit 0 configures deterministic answers.
	AnswerTemperature *float64 `yaml:"answer_temperature"`
	// TimeoutSeconds bounds each provider call.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// RetrievalConfig holds ranking and context assembly settings.
type RetrievalConfig struct {
	// TopK is the maximum number of documents returned per query.
	TopK int `yaml:"top_k"`
	// Threshold is the minimum cosine similarity for a document to rank.
	Threshold float64 `yaml:"threshold"`
	// PreviewLength is the character budget for source previews.
	PreviewLength int `yaml:"preview_length"`
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, filepath.Dir(path))

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
