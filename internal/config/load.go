package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvBackend        = "TALKS_BACKEND"
	EnvMongoURI       = "TALKS_MONGO_URI"
	EnvDatabase       = "TALKS_DATABASE"
	EnvCollection     = "TALKS_COLLECTION"
	EnvDataDir        = "TALKS_DATA_DIR"
	EnvConnectTimeout = "TALKS_CONNECT_TIMEOUT"
	EnvLogLevel       = "LOG_LEVEL"
)

// LoadDotEnv loads a .env file from the working directory if present.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load builds the effective configuration: defaults, then the config file,
// then environment overrides. A missing config file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	if err := cfg.mergeFile(ConfigPath()); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.DataDir = ExpandTilde(cfg.DataDir)
	return cfg, nil
}

// mergeFile overlays the YAML file at path onto c.
func (c *Config) mergeFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	// Unmarshal onto the defaults so unset keys keep their default values
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays TALKS_* environment variables onto c.
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.MongoURI = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvCollection); v != "" {
		c.Collection = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvConnectTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvConnectTimeout, err)
		}
		c.ConnectTimeout = d
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}
