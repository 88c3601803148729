// Package cli implements the copper command-line interface.
//
// The commands load a TOML design file and work on it through the library
// packages: DRC via the shared pipeline runner, scripted routing via the
// routing engine, and read-only queries over nets and the ratsnest. The
// CLI is built using cobra and logs via charmbracelet/log.
//
// # Commands
//
//   - drc: Check a design and print or export the report
//   - route: Replay a route script against a design
//   - nets: List nets, their pins and routing status
//   - ratsnest: Export unrouted connections as DOT, SVG or JSON
//   - exclude: Manage accepted violations
//   - serve: Serve read-only queries and DRC over HTTP
//   - cache: Manage the report cache
//
// # Backends
//
// Reports are cached under ~/.cache/copper unless COPPER_REDIS_ADDR names a
// Redis server. Exclusions are stored under ~/.config/copper/exclusions
// unless COPPER_MONGO_URI names a MongoDB deployment.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/copper/pkg/buildinfo"
	"github.com/matzehuels/copper/pkg/cache"
	"github.com/matzehuels/copper/pkg/pipeline"
	"github.com/matzehuels/copper/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "copper"

	// Environment variables selecting remote backends.
	envRedisAddr = "COPPER_REDIS_ADDR"
	envMongoURI  = "COPPER_MONGO_URI"
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
		Use:          appName,
		Short:        "Copper checks and routes printed circuit boards",
		Long:         `Copper is the physical-design core of a PCB editor: a board and netlist model, an interactive router and a design rule checker, driven from design files.`,
		Version:      buildinfo.Read().Short(),
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.drcCommand())
	root.AddCommand(c.routeCommand())
	root.AddCommand(c.netsCommand())
	root.AddCommand(c.ratsnestCommand())
	root.AddCommand(c.excludeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use, with the report cache
// and exclusion store selected from the environment.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	st, err := newStore(ctx)
	if err != nil {
		ch.Close()
		return nil, err
	}
	r := pipeline.NewRunner(ch, nil, c.Logger)
	r.Store = st
	return r, nil
}

func newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := os.Getenv(envRedisAddr); addr != "" {
		return cache.NewRedisCache(ctx, cache.RedisOptions{Addr: addr, Prefix: appName + ":"})
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

func newStore(ctx context.Context) (store.Store, error) {
	if uri := os.Getenv(envMongoURI); uri != "" {
		return store.NewMongoStore(ctx, store.MongoConfig{URI: uri})
	}
	dir, err := configDir()
	if err != nil {
		return store.NewFileStore("")
	}
	return store.NewFileStore(filepath.Join(dir, "exclusions"))
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/copper/).
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

// configDir returns the config directory using XDG standard (~/.config/copper/).
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
