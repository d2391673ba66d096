// Package cli implements the accessmap command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/accessmap/internal/config"
	"github.com/matzehuels/accessmap/pkg/buildinfo"
	"github.com/matzehuels/accessmap/pkg/cache"
	"github.com/matzehuels/accessmap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "accessmap"

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
	verbose    bool
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
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
		Short: "accessmap draws U.S. abortion access and out-of-state travel as a choropleth",
		Long: `accessmap joins a U.S. states topology with a per-state table of abortion
access metrics and renders a choropleth of out-of-state travel, filterable by
clinic and provider availability.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			if cfg.Path() != "" {
				c.Logger.Debug("loaded config", "path", cfg.Path())
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.regionsCommand())
	root.AddCommand(c.filterCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, nil, c.Logger)
	if ttl := c.cfg.Cache.TTL.Duration; ttl > 0 {
		r.ArtifactTTL = ttl
	}
	return r, nil
}

// newCache opens the backend named in the [cache] section. A file cache
// that cannot find a home directory degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc := c.cfg.Cache
	switch cc.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cc.RedisAddr,
			Password: cc.RedisPassword,
			DB:       cc.RedisDB,
		})
	case config.BackendMongo:
		return cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:      cc.MongoURI,
			Database: cc.MongoDatabase,
		})
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/accessmap/).
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

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

// =============================================================================
// Options Helpers
// =============================================================================

// sourceFlags are the load flags shared by every command that builds a map.
type sourceFlags struct {
	topology string
	data     string
	refresh  bool
	warn     bool
	noCache  bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.topology, "topology", "", "topology file or URL (default from config)")
	cmd.Flags().StringVar(&f.data, "data", "", "state table CSV file or URL (default from config)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass the topology cache")
	cmd.Flags().BoolVar(&f.warn, "warn", false, "log dropped rows and non-numeric cells")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options layers the flags over the config file.
func (c *CLI) options(f *sourceFlags) pipeline.Options {
	opts := pipeline.Options{
		Topology: c.cfg.Source.Topology,
		Data:     c.cfg.Source.Data,
		Width:    c.cfg.Render.Width,
		Height:   c.cfg.Render.Height,
		Tooltips: c.cfg.Render.Tooltips,
		Refresh:  f.refresh,
		Warn:     f.warn,
		Logger:   c.Logger,
	}
	if f.topology != "" {
		opts.Topology = f.topology
	}
	if f.data != "" {
		opts.Data = f.data
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
