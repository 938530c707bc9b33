package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ChunkerConfig configures how extracted text is split into chunks.
type ChunkerConfig struct {
	Strategy     string `yaml:"strategy"`
	ChunkSize    int    `yaml:"chunk_size"`
	Overlap      int    `yaml:"overlap"`
	MaxChunkSize int    `yaml:"max_chunk_size"`
}

// GeminiConfig holds configuration for the Gemini embeddings client.
type GeminiConfig struct {
	APIKeyEnv         string  `yaml:"api_key_env"`
	BaseURL           string  `yaml:"base_url"`
	Model             string  `yaml:"model"`
	Dimension         int     `yaml:"dimension"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// EmbedderConfig selects and configures the embedder implementation.
type EmbedderConfig struct {
	Type   string        `yaml:"type"`
	Gemini *GeminiConfig `yaml:"gemini,omitempty"`
}

// SQLiteConfig contains the SQLite store location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig selects and configures the chunk store implementation.
type StoreConfig struct {
	Type   string        `yaml:"type"`
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Store    StoreConfig    `yaml:"store"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docindex/config.yaml.
// If neither exists, it writes defaults to ~/.config/docindex/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docindex", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Chunker:  ChunkerConfig{Strategy: "fixed"},
		Embedder: EmbedderConfig{Type: "gemini", Gemini: &GeminiConfig{}},
		Store:    StoreConfig{Type: "sqlite", SQLite: &SQLiteConfig{}},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.Strategy == "" {
		cfg.Chunker.Strategy = "fixed"
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 500
		if cfg.Chunker.Overlap == 0 {
			cfg.Chunker.Overlap = 50
		}
	}
	if cfg.Chunker.MaxChunkSize == 0 {
		cfg.Chunker.MaxChunkSize = 500
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "gemini"
	}
	if cfg.Embedder.Type == "gemini" {
		if cfg.Embedder.Gemini == nil {
			cfg.Embedder.Gemini = &GeminiConfig{}
		}
		g := cfg.Embedder.Gemini
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "GEMINI_API_KEY"
		}
		if g.BaseURL == "" {
			g.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
		}
		if g.Model == "" {
			g.Model = "models/text-embedding-004"
		}
		if g.Dimension == 0 {
			g.Dimension = 768
		}
		if g.TimeoutSecs == 0 {
			g.TimeoutSecs = 30
		}
		if g.MaxRetries == 0 {
			g.MaxRetries = 3
		}
		if g.RequestsPerSecond == 0 {
			g.RequestsPerSecond = 10
		}
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "sqlite"
	}
	if cfg.Store.Type == "sqlite" {
		if cfg.Store.SQLite == nil {
			cfg.Store.SQLite = &SQLiteConfig{}
		}
		if cfg.Store.SQLite.Path == "" {
			cfg.Store.SQLite.Path = "docindex.db"
		}
	}
}
