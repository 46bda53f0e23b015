// Package cli implements the foamlayout command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/foamlayout/pkg/buildinfo"
	"github.com/matzehuels/foamlayout/pkg/cache"
	"github.com/matzehuels/foamlayout/pkg/config"
	"github.com/matzehuels/foamlayout/pkg/pipeline"
	"github.com/matzehuels/foamlayout/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "foamlayout"

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
	config     config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Foamlayout turns traced tool outlines into foam insert layouts",
		Long: `Foamlayout reads a traced "faces" document, detects the block outline and the
cavities inside it, and exports the result as a DXF cut file, an SVG preview or
a layout JSON model.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.lintCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	r.TTL = c.config.Cache.TTL.Duration
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, c.config.Cache.RedisURL)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newStore opens the configured package store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	switch c.config.Store.Backend {
	case config.StoreMemory:
		return store.NewMemory(), nil
	case config.StoreMongo:
		return store.NewMongo(ctx, c.config.Store.MongoURI, c.config.Store.Database)
	}
	return store.NewSQLite(c.config.Store.Path)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/foamlayout/).
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

// outputBase returns the stem multi-file outputs are written under: output
// (or input when output is empty) without its format extension and without a
// ".layout" or ".faces" suffix. "part.layout.json" → "part".
func outputBase(output, input string) string {
	if output == "" {
		output = input
	}
	if ext := filepath.Ext(output); pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		output = strings.TrimSuffix(output, ext)
	}
	for _, suffix := range []string{".layout", ".faces"} {
		output = strings.TrimSuffix(output, suffix)
	}
	return output
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutOptions seeds pipeline options from the config file's build section.
func (c *CLI) layoutOptions() pipeline.Options {
	return pipeline.Options{
		DepthIn:     c.config.Build.DepthIn,
		ThicknessIn: c.config.Build.ThicknessIn,
		Fallback:    c.config.Build.Fallback,
		Logger:      c.Logger,
	}
}
