package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	LlamaCloud LlamaCloudConfig `toml:"llamacloud"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Rerank     RerankConfig     `toml:"rerank"`
	Database   DatabaseConfig   `toml:"database"`
	Retrieval  RetrievalConfig  `toml:"retrieval"`
	Ingest     IngestConfig     `toml:"ingest"`
	Observer   ObserverConfig   `toml:"observer"`
}

type LlamaCloudConfig struct {
	APIKey string `toml:"api_key"`
}

type EmbeddingConfig struct {
	Provider   string `toml:"provider"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
	APIKey     string `toml:"api_key"`
}

type RerankConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
}

type DatabaseConfig struct {
	Path        string `toml:"path"`
	PostgresURL string `toml:"postgres_url"`
}

type RetrievalConfig struct {
	Candidates      int `toml:"candidates"`
	TopK            int `toml:"top_k"`
	Expansions      int `toml:"expansions"`
	DensityPipes    int `toml:"density_pipes"`
	DensityMinChars int `toml:"density_min_chars"`
}

type IngestConfig struct {
	Window    int `toml:"window"`
	BatchSize int `toml:"batch_size"`
}

type ObserverConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Embedding: EmbeddingConfig{Provider: "gemini", Model: "text-embedding-004", Dimensions: 768},
		Rerank:    RerankConfig{Provider: "gemini", Model: "gemini-2.5-flash-lite"},
		Database:  DatabaseConfig{Path: "tenk.db"},
		Retrieval: RetrievalConfig{Candidates: 50, TopK: 7, Expansions: 2, DensityPipes: 5, DensityMinChars: 1500},
		Ingest:    IngestConfig{Window: 500, BatchSize: 64},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "tenk.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("TENK_LLAMACLOUD_API_KEY"); v != "" {
		cfg.LlamaCloud.APIKey = v
	}
	if v := os.Getenv("TENK_EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("TENK_RERANK_API_KEY"); v != "" {
		cfg.Rerank.APIKey = v
	}
	if v := os.Getenv("TENK_POSTGRES_URL"); v != "" {
		cfg.Database.PostgresURL = v
	}
	if v := os.Getenv("TENK_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TENK_RETRIEVAL_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retrieval.TopK = n
		}
	}
	if os.Getenv("TENK_OBSERVER_ENABLED") == "true" || os.Getenv("TENK_OBSERVER_ENABLED") == "1" {
		cfg.Observer.Enabled = true
	}

	// Fallbacks
	if cfg.Rerank.APIKey == "" {
		cfg.Rerank.APIKey = cfg.Embedding.APIKey
	}

	return cfg
}
