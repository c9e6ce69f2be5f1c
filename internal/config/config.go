// Package config handles global configuration for the talks CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents configuration stored in ~/.config/talks/config.yml.
type Config struct {
	// Backend selects the record store: mongo, sqlite or jsonl.
	Backend string `yaml:"backend" json:"backend"`

	// Used by the mongo backend
	MongoURI   string `yaml:"mongo_uri,omitempty" json:"mongo_uri,omitempty"`
	Database   string `yaml:"database,omitempty" json:"database,omitempty"`
	Collection string `yaml:"collection,omitempty" json:"collection,omitempty"`

	// Directory for the sqlite and jsonl files
	DataDir string `yaml:"data_dir,omitempty" json:"data_dir,omitempty"`

	ConnectTimeout time.Duration `yaml:"connect_timeout,omitempty" json:"connect_timeout"`
	LogLevel       string        `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// Backend names.
const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
	BackendJSONL  = "jsonl"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "talks"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"

	DefaultMongoURI       = "mongodb://localhost:27017"
	DefaultDatabase       = "ittpdb"
	DefaultCollection     = "techtalks"
	DefaultConnectTimeout = 5 * time.Second
	DefaultLogLevel       = "warn"

	SQLiteFile = "talks.db"
	JSONLFile  = "talks.jsonl"
)

// ValidBackends lists the supported backend values.
var ValidBackends = []string{BackendMongo, BackendSQLite, BackendJSONL}

// DisplayName returns the name shown to users for a backend.
func DisplayName(backend string) string {
	switch backend {
	case BackendMongo:
		return "MongoDB"
	case BackendSQLite:
		return "SQLite"
	case BackendJSONL:
		return "JSONL"
	default:
		return backend
	}
}

// Default returns the configuration used when nothing is configured.
// The default backend is a local MongoDB.
func Default() *Config {
	return &Config{
		Backend:        BackendMongo,
		MongoURI:       DefaultMongoURI,
		Database:       DefaultDatabase,
		Collection:     DefaultCollection,
		DataDir:        DefaultDataDir(),
		ConnectTimeout: DefaultConnectTimeout,
		LogLevel:       DefaultLogLevel,
	}
}

// ConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/talks/config.yml.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// DefaultDataDir returns the directory for file-based backends.
// Respects XDG_DATA_HOME, defaults to ~/.local/share/talks.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ConfigDir
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, ConfigDir)
}

// SQLitePath returns the path to the SQLite database.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, SQLiteFile)
}

// JSONLPath returns the path to the JSONL file.
func (c *Config) JSONLPath() string {
	return filepath.Join(c.DataDir, JSONLFile)
}

// Validate checks the backend and the fields that backend needs.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("mongo_uri is required for the mongo backend")
		}
		if c.Database == "" || c.Collection == "" {
			return fmt.Errorf("database and collection are required for the mongo backend")
		}
	case BackendSQLite, BackendJSONL:
		if c.DataDir == "" {
			return fmt.Errorf("data_dir is required for the %s backend", c.Backend)
		}
	default:
		return fmt.Errorf("invalid backend: %s (valid: %v)", c.Backend, ValidBackends)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect_timeout must be positive, got %s", c.ConnectTimeout)
	}
	return nil
}

// ExpandTilde expands a leading ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
