// Package config loads nrstats settings from a YAML file with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all nrstats configuration.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	NRDB       NRDBConfig       `yaml:"nrdb"`
	Cobra      CobraConfig      `yaml:"cobra"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// NRDBConfig configures the NetrunnerDB client.
type NRDBConfig struct {
	BaseURL   string  `yaml:"base_url"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second
	Burst     int     `yaml:"burst"`
}

// CobraConfig configures where tournament exports are fetched from.
type CobraConfig struct {
	BaseURL string `yaml:"base_url"`
}

// ClassifierConfig configures the side classifier.
type ClassifierConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	Epochs       int     `yaml:"epochs"`
	ModelName    string  `yaml:"model_name"`
}

// ServerConfig configures the JSON API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// Dir is the per-user state directory, ~/.nrstats.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nrstats"
	}
	return filepath.Join(home, ".nrstats")
}

// DefaultPath is the config file location used when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath: filepath.Join(Dir(), "stats.db"),
		NRDB: NRDBConfig{
			BaseURL:   "https://netrunnerdb.com/api/2.0/public",
			RateLimit: 5,
			Burst:     5,
		},
		Cobra: CobraConfig{
			BaseURL: "https://tournaments.nullsignal.games",
		},
		Classifier: ClassifierConfig{
			LearningRate: 0.1,
			Epochs:       5,
			ModelName:    "side",
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// applyEnvOverrides lets NRSTATS_* variables win over the file.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("NRSTATS_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("NRSTATS_NRDB_URL"); v != "" {
		c.NRDB.BaseURL = v
	}
	if v := os.Getenv("NRSTATS_COBRA_URL"); v != "" {
		c.Cobra.BaseURL = v
	}
	if v := os.Getenv("NRSTATS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NRSTATS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("NRSTATS_LEARNING_RATE"); v != "" {
		lr, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("NRSTATS_LEARNING_RATE: %w", err)
		}
		c.Classifier.LearningRate = lr
	}
	return nil
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: db_path is empty")
	}
	if c.NRDB.RateLimit <= 0 {
		return fmt.Errorf("config: nrdb.rate_limit must be positive, got %v", c.NRDB.RateLimit)
	}
	if c.Classifier.LearningRate <= 0 {
		return fmt.Errorf("config: classifier.learning_rate must be positive, got %v", c.Classifier.LearningRate)
	}
	if c.Classifier.Epochs < 1 {
		return fmt.Errorf("config: classifier.epochs must be at least 1, got %d", c.Classifier.Epochs)
	}
	return nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
