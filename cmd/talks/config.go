package main

import (
	"fmt"
	"strings"

	"github.com/matsen/talkportal/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration after the config file, .env,
TALKS_* environment variables and flags are applied.

Config file: ~/.config/talks/config.yml (respects XDG_CONFIG_HOME)

Keys:
  backend          mongo, sqlite or jsonl
  mongo_uri        MongoDB connection string
  database         MongoDB database name
  collection       MongoDB collection name
  data_dir         Directory for the sqlite and jsonl files
  connect_timeout  Store connection timeout (e.g. 5s)
  log_level        Diagnostic log level`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	Path   string         `json:"path"`
	Config *config.Config `json:"config"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	loaded := mustLoadConfig()
	cfg := *loaded
	cfg.MongoURI = redactURI(cfg.MongoURI)

	if !humanOutput {
		outputJSON(ConfigResponse{Path: config.ConfigPath(), Config: &cfg})
		return nil
	}

	fmt.Printf("config file:     %s\n", config.ConfigPath())
	fmt.Printf("backend:         %s\n", cfg.Backend)
	if cfg.Backend == config.BackendMongo {
		fmt.Printf("mongo_uri:       %s\n", cfg.MongoURI)
		fmt.Printf("database:        %s\n", cfg.Database)
		fmt.Printf("collection:      %s\n", cfg.Collection)
	} else {
		fmt.Printf("data_dir:        %s\n", cfg.DataDir)
	}
	fmt.Printf("connect_timeout: %s\n", cfg.ConnectTimeout)
	fmt.Printf("log_level:       %s\n", cfg.LogLevel)
	return nil
}

// redactURI masks the password in a connection URI's userinfo.
func redactURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}

	authority, path := rest, ""
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		authority, path = rest[:i], rest[i:]
	}
	at := strings.LastIndex(authority, "@")
	if at < 0 {
		return uri
	}

	user, _, hasPassword := strings.Cut(authority[:at], ":")
	if hasPassword {
		user += ":xxxxx"
	}
	return scheme + "://" + user + authority[at:] + path
}
