package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the chat server.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Docs      DocsConfig      `yaml:"docs"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chat      ChatConfig      `yaml:"chat"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Cache     CacheConfig     `yaml:"cache"`
	Retry     RetryConfig     `yaml:"retry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DocsConfig holds source document configuration.
type DocsConfig struct {
	Dir      string   `yaml:"dir"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	BaseURL           string  `yaml:"base_url"`
	Model             string  `yaml:"model"`
	APIKeyEnv         string  `yaml:"api_key_env"` // Environment variable for API key
	BatchSize         int     `yaml:"batch_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // Inter-batch pacing
	TimeoutSecs       int     `yaml:"timeout_secs"`
}

// ChatConfig holds generative chat provider configuration.
type ChatConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	Preamble    string  `yaml:"preamble"` // Overrides the built-in system preamble when set
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
}

// CacheConfig holds embedding cache configuration.
type CacheConfig struct {
	Path    string `yaml:"path"`     // Flat-file corpus cache
	QueryDB string `yaml:"query_db"` // BoltDB query-embedding cache ("" disables)
}

// RetryConfig holds outbound-call retry configuration.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMS int `yaml:"base_delay_ms"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Docs: DocsConfig{
			Dir:      "documents",
			Includes: []string{"**/*.txt", "**/*.md"},
			Excludes: []string{"**/.*"},
		},
		Embedding: EmbeddingConfig{
			BaseURL:           "https://api.cohere.com/v1",
			Model:             "embed-english-v3.0",
			APIKeyEnv:         "COHERE_API_KEY",
			BatchSize:         96,
			RequestsPerSecond: 0.5,
			TimeoutSecs:       60,
		},
		Chat: ChatConfig{
			Model:       "command-r",
			Temperature: 0.1,
			TimeoutSecs: 120,
		},
		Retrieve: RetrieveConfig{
			TopK: 5,
		},
		Cache: CacheConfig{
			Path:    filepath.Join(".ragchat", "embeddings.json"),
			QueryDB: filepath.Join(".ragchat", "queries.db"),
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelayMS: 500,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for ragchat.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "ragchat.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".ragchat", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EnsureCacheDir ensures the directory holding the cache files exists.
func EnsureCacheDir(c *Config) error {
	if err := os.MkdirAll(filepath.Dir(c.Cache.Path), 0755); err != nil {
		return err
	}
	if c.Cache.QueryDB != "" {
		return os.MkdirAll(filepath.Dir(c.Cache.QueryDB), 0755)
	}
	return nil
}
