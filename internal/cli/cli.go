// Package cli implements the flowkit command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowkit/pkg/buildinfo"
	"github.com/matzehuels/flowkit/pkg/cache"
	"github.com/matzehuels/flowkit/pkg/config"
	"github.com/matzehuels/flowkit/pkg/engine"
	"github.com/matzehuels/flowkit/pkg/layout"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "flowkit"

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
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "flowkit",
		Short:        "Flowkit manages group hierarchy and layout for diagram flows",
		Long:         `Flowkit is a CLI tool for diagram flows stored as JSON: it creates and dissolves node groups, toggles their collapsed state, recomputes visibility and synthetic boundary edges, and lays out the visible graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configFile())
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/flowkit/config.toml)")

	// Register all subcommands
	root.AddCommand(c.groupCommand())
	root.AddCommand(c.recomputeCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.halosCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// configFile resolves the configuration file path, preferring the --config
// flag over the XDG default.
func (c *CLI) configFile() string {
	if c.configPath != "" {
		return c.configPath
	}
	dir, err := configDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates an engine runner configured from the loaded config.
// Per-command overrides go through the opts argument.
func (c *CLI) newRunner(ctx context.Context, opts engine.Options, noCache bool) (*engine.Runner, error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}

	if opts.Direction == "" {
		opts.Direction = c.Config.Direction
	}
	if opts.Spacing == (layout.Spacing{}) {
		opts.Spacing = c.Config.Spacing
	}
	opts.Padding = c.Config.Padding
	if opts.Dimensions == nil {
		opts.Dimensions = c.Config.Dimensions()
	}
	opts.Logger = c.Logger

	return engine.NewRunner(backend, nil, opts)
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.Backend == config.CacheRedis {
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisAddr)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/flowkit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/flowkit/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
