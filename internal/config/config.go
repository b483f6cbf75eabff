// Package config loads service configuration from defaults and TRIAGED_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Server  ServerConfig
	Model   ModelConfig
	LLM     LLMConfig
	Report  ReportConfig
	Session SessionConfig
	Ranking RankingConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

// ModelConfig locates the external scoring model server.
type ModelConfig struct {
	BaseURL string
}

// LLMConfig locates the external assistant model used for document Q&A.
type LLMConfig struct {
	BaseURL string
	Model   string
}

// ReportConfig locates the care-coordination backend the report sink posts
// to. An empty BaseURL disables report delivery.
type ReportConfig struct {
	BaseURL string
}

type SessionConfig struct {
	TTL string // Go duration string, e.g. "30m"
}

type RankingConfig struct {
	TopN       int
	RosterPath string // JSON roster file; empty uses the built-in roster
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8090,
		},
		Model: ModelConfig{
			BaseURL: "http://localhost:8501",
		},
		LLM: LLMConfig{
			BaseURL: "http://localhost:11434",
			Model:   "gemini-2.5-flash",
		},
		Report: ReportConfig{
			BaseURL: "",
		},
		Session: SessionConfig{
			TTL: "30m",
		},
		Ranking: RankingConfig{
			TopN: 3,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults overridden by TRIAGED_*
// environment variables.
func Load() (Config, error) {
	cfg := defaults()
	applyEnvOverrides(&cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	if _, err := time.ParseDuration(cfg.Session.TTL); err != nil {
		return Config{}, fmt.Errorf("invalid session TTL %q: %w", cfg.Session.TTL, err)
	}
	if cfg.Ranking.TopN <= 0 {
		return Config{}, fmt.Errorf("invalid ranking top_n %d", cfg.Ranking.TopN)
	}
	return cfg, nil
}

// SessionTTL returns the parsed TTL. Load has already validated it.
func (c Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".triaged"
	}
	return filepath.Join(home, ".triaged")
}
