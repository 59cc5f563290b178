package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/buildinfo"
	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "treemap"

	// configFileName is the config file looked up in the working directory
	// and the XDG config directory.
	configFileName = "treemap.toml"
)

// Cache backends selectable in treemap.toml.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
	backendNone  = "none"
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

	// configPath is set by the persistent --config flag.
	configPath string
	config     *Config
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
		Use:   appName,
		Short: "Treemap lays out weighted trees as nested rectangles",
		Long: `Treemap computes squarified treemap layouts for weighted trees and renders
them as SVG, PNG, JSON or Graphviz DOT. Trees come from nested JSON/TOML
documents or from scanning a directory.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			installLogHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./treemap.toml, then $XDG_CONFIG_HOME/treemap/treemap.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// cfg returns the loaded config, or defaults when no file was read.
func (c *CLI) cfg() *Config {
	if c.config == nil {
		return &Config{}
	}
	return c.config
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend, err := newCache(ctx, c.cfg().Cache, noCache)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("cache ready", "backend", backendName(c.cfg().Cache, noCache))

	var keyer cache.Keyer
	if scope := c.cfg().Cache.Scope; scope != "" {
		keyer = cache.NewScopedKeyer(nil, scope+":")
	}
	return pipeline.NewRunner(backend, keyer, c.Logger), nil
}

// newCache opens the configured cache backend. The file cache falls back to
// no caching when no cache directory can be determined.
func newCache(ctx context.Context, cfg CacheConfig, noCache bool) (cache.Cache, error) {
	switch backendName(cfg, noCache) {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("cache backend %q needs cache.redis_url", backendRedis)
		}
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	case backendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("cache backend %q needs cache.mongo_uri", backendMongo)
		}
		return cache.NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case backendFile:
		dir, err := fileCacheDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
	return nil, fmt.Errorf("unknown cache backend %q (must be one of: file, redis, mongo, none)", cfg.Backend)
}

func backendName(cfg CacheConfig, noCache bool) string {
	if noCache {
		return backendNone
	}
	if cfg.Backend == "" {
		return backendFile
	}
	return strings.ToLower(cfg.Backend)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/treemap/).
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

// configDir returns the config directory using XDG standard (~/.config/treemap/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// basePath strips the extension from an input path for naming outputs.
// A trailing ".layout" is removed as well so re-rendering a saved layout
// does not stack suffixes.
func basePath(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return strings.TrimSuffix(base, ".layout")
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
