// Package cli implements the skillcat command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skillcat/pkg/buildinfo"
	"github.com/matzehuels/skillcat/pkg/cache"
	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/config"
	errs "github.com/matzehuels/skillcat/pkg/errors"
	"github.com/matzehuels/skillcat/pkg/integrations/github"
	"github.com/matzehuels/skillcat/pkg/query"
	"github.com/matzehuels/skillcat/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "skillcat"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	outDir     string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Skillcat builds and browses a catalogue of Claude skills",
		Long:          `Skillcat crawls GitHub for Claude skill packages, merges and ranks them into a versioned catalogue, and lets you search, browse and serve that catalogue.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./skillcat.toml)")
	root.PersistentFlags().StringVar(&c.outDir, "out", "", "catalogue directory (overrides [output] dir)")

	root.AddCommand(c.collectCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Factories
// =============================================================================

// loadConfig loads the layered configuration and applies the global flags.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.outDir != "" {
		cfg.Output.Dir = c.outDir
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return cfg, nil
}

// openCatalog opens the catalogue written to the configured output directory.
func openCatalog(cfg *config.Config) (*query.Catalog, error) {
	return query.Open(store.NewFileStore(cfg.Output))
}

// newCache builds the upstream response cache selected by cfg.
func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
	default:
		dir, err := cacheDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// newClient creates a GitHub client backed by ch.
func newClient(cfg *config.Config, ch cache.Cache) *github.Client {
	return github.NewClient(cfg.GitHub.Token, cfg.GitHub.BaseURL, ch, cfg.Cache.TTL.Duration)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// standard (~/.cache/skillcat/).
func cacheDir(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Flag Parsing
// =============================================================================

// parseCategory validates a --category value. Empty means any category.
func parseCategory(s string) (catalog.Category, error) {
	if s == "" {
		return "", nil
	}
	for _, c := range catalog.Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown category %q", s)
}

// parseTier validates a --tier value. Empty or 0 means any tier.
func parseTier(s string) (catalog.Tier, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "tier must be a number, got %q", s)
	}
	t := catalog.Tier(n)
	if n != 0 && !t.Valid() {
		return 0, errs.New(errs.ErrCodeInvalidInput, "tier must be between 1 and 5, got %d", n)
	}
	return t, nil
}
