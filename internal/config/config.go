package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

// EmbedderConfig holds configuration for the OpenAI-compatible embedder.
type EmbedderConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size"`
}

// LetterWriterConfig holds configuration for the Gemini letter writer.
type LetterWriterConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// ListingConfig configures listing-page fetching and field extraction.
// Selectors maps a listing field to an ordered list of candidate
// selectors tried until one matches.
type ListingConfig struct {
	TimeoutSecs int                 `yaml:"timeout_secs"`
	Selectors   map[string][]string `yaml:"selectors"`
}

// WorkerConfig sizes the background job pool.
type WorkerConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder     EmbedderConfig                  `yaml:"embedder"`
	LetterWriter LetterWriterConfig              `yaml:"letter_writer"`
	Listing      ListingConfig                   `yaml:"listing"`
	Worker       WorkerConfig                    `yaml:"worker"`
	Tiers        map[domain.TierName]domain.Tier `yaml:"tiers"`
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

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "text-embedding-3-small"
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 64
	}

	if cfg.LetterWriter.BaseURL == "" {
		cfg.LetterWriter.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.LetterWriter.APIKeyEnv == "" {
		cfg.LetterWriter.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.LetterWriter.Model == "" {
		cfg.LetterWriter.Model = "gemini-2.0-flash"
	}

	if cfg.Listing.TimeoutSecs == 0 {
		cfg.Listing.TimeoutSecs = 30
	}

	if cfg.Worker.Workers == 0 {
		cfg.Worker.Workers = 4
	}
	if cfg.Worker.QueueSize == 0 {
		cfg.Worker.QueueSize = 64
	}

	if len(cfg.Tiers) == 0 {
		cfg.Tiers = domain.DefaultTiers()
	}
}
