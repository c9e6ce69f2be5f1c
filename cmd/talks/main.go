// Package main provides the talks CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matsen/talkportal/internal/catalog"
	"github.com/matsen/talkportal/internal/config"
	"github.com/matsen/talkportal/internal/console"
	"github.com/matsen/talkportal/internal/logging"
	"github.com/matsen/talkportal/internal/storage"
	"github.com/matsen/talkportal/internal/talk"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool

	backendFlag  string
	logLevelFlag string
	verbose      bool

	logger = zerolog.Nop()
)

func main() {
	config.LoadDotEnv()

	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra errors (bad flags, missing args) are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "talks",
	Short: "Internal tech talk portal",
	Long: `talks manages a catalog of internal tech talks.

Run without a subcommand to open the interactive menu. Subcommands perform a
single operation and print JSON (or text with --human).

Records live in a document store selected by the backend setting:
  mongo   MongoDB collection (default)
  sqlite  SQLite file in the data directory
  jsonl   git-versionable JSONL file in the data directory

Configuration is read from ~/.config/talks/config.yml, then .env and
TALKS_* environment variables, then flags.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	RunE:              runMenu,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Record store: mongo, sqlite or jsonl (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Diagnostic log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Version = Version
}

// setupLogging builds the diagnostic logger before any command runs.
// mustLoadConfig rebuilds it once the config file's log_level is known.
func setupLogging(cmd *cobra.Command, args []string) error {
	fallback := os.Getenv(config.EnvLogLevel)
	if fallback == "" {
		fallback = config.DefaultLogLevel
	}
	logger = logging.NewStderr(logging.ResolveLevel(logLevelFlag, verbose, fallback))
	return nil
}

func runMenu(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := mustLoadConfig()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		// The menu reports to stderr in plain text regardless of --human
		fmt.Fprintln(os.Stderr, err)
		exit(exitCodeFor(err))
	}
	onExit(store.Close)
	defer store.Close()
	fmt.Printf("Connected to %s successfully!\n", config.DisplayName(cfg.Backend))

	cat := mustLoadCatalog(ctx, store)
	fmt.Printf("Loaded %d tech talks into memory.\n", cat.Len())

	if err := console.New(cat, os.Stdin, os.Stdout).Run(ctx); err != nil {
		return fmt.Errorf("menu: %w", err)
	}
	return nil
}

// mustLoadConfig loads configuration and applies the --backend flag, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	logger = logging.NewStderr(logging.ResolveLevel(logLevelFlag, verbose, cfg.LogLevel))
	logger.Debug().Str("backend", cfg.Backend).Str("config", config.ConfigPath()).Msg("config loaded")
	return cfg
}

// mustOpenStore connects to the configured store, exits on error.
// The caller is responsible for calling Close() on the returned store.
func mustOpenStore(ctx context.Context, cfg *config.Config) storage.Store {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	onExit(store.Close)
	return store
}

// mustLoadCatalog mirrors the store into memory, exits on error.
func mustLoadCatalog(ctx context.Context, store storage.Store) *catalog.Catalog {
	cat := catalog.New(store, catalog.WithLogger(logger))
	if _, err := cat.Load(ctx); err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	return cat
}

// mustOpenCatalog connects and loads in one step for single-shot subcommands.
// The caller is responsible for calling Close() on the returned store.
func mustOpenCatalog(ctx context.Context) (*catalog.Catalog, storage.Store) {
	cfg := mustLoadConfig()
	store := mustOpenStore(ctx, cfg)
	return mustLoadCatalog(ctx, store), store
}

// exitCodeFor maps an error to the exit code for its kind.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, talk.ErrConnection):
		return ExitConnectionError
	case errors.Is(err, talk.ErrValidation),
		errors.Is(err, talk.ErrDuplicate),
		errors.Is(err, talk.ErrParse):
		return ExitDataError
	default:
		return ExitError
	}
}

// exitCleanups run before the process exits early; os.Exit skips deferred calls.
var exitCleanups []func() error

// onExit registers fn to run on an early exit.
func onExit(fn func() error) {
	exitCleanups = append(exitCleanups, fn)
}

// runExitCleanups runs registered cleanups in reverse order and clears them.
func runExitCleanups() {
	for i := len(exitCleanups) - 1; i >= 0; i-- {
		if err := exitCleanups[i](); err != nil {
			logger.Debug().Err(err).Msg("cleanup before exit failed")
		}
	}
	exitCleanups = nil
}

// exit releases registered resources and exits with code.
func exit(code int) {
	runExitCleanups()
	os.Exit(code)
}
