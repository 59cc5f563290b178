package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/server"
)

// =============================================================================
// Config File
// =============================================================================

// Config mirrors treemap.toml. Flags override file values and file values
// override the pipeline defaults.
type Config struct {
	Input  InputConfig  `toml:"input"`
	Scan   ScanConfig   `toml:"scan"`
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`

	// path is the file the config was read from; empty for defaults.
	path string
}

// InputConfig names the fields of nested tree documents.
type InputConfig struct {
	Children string `toml:"children,omitempty"`
	Count    string `toml:"count,omitempty"`
	Data     string `toml:"data,omitempty"`
}

// ScanConfig configures directory scans.
type ScanConfig struct {
	MaxDepth  int      `toml:"max_depth,omitempty"`
	Hidden    bool     `toml:"hidden,omitempty"`
	FreeSpace bool     `toml:"free_space,omitempty"`
	Ignore    []string `toml:"ignore,omitempty"`
}

// LayoutConfig configures layout computation.
type LayoutConfig struct {
	Width     float64  `toml:"width,omitempty"`
	Height    float64  `toml:"height,omitempty"`
	Sort      *bool    `toml:"sort,omitempty"`
	Seed      uint64   `toml:"seed,omitempty"`
	Direction string   `toml:"direction,omitempty"`
	Padding   float64  `toml:"padding,omitempty"`
	Exclude   []string `toml:"exclude,omitempty"`
}

// RenderConfig configures rendering.
type RenderConfig struct {
	Type        string   `toml:"type,omitempty"`
	Formats     []string `toml:"formats,omitempty"`
	Style       string   `toml:"style,omitempty"`
	Palette     string   `toml:"palette,omitempty"`
	Labels      bool     `toml:"labels,omitempty"`
	Legend      bool     `toml:"legend,omitempty"`
	Interactive bool     `toml:"interactive,omitempty"`
	Scale       float64  `toml:"scale,omitempty"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend         string `toml:"backend,omitempty"` // file (default), redis, mongo, none
	Dir             string `toml:"dir,omitempty"`
	RedisURL        string `toml:"redis_url,omitempty"`
	MongoURI        string `toml:"mongo_uri,omitempty"`
	MongoDatabase   string `toml:"mongo_database,omitempty"`
	MongoCollection string `toml:"mongo_collection,omitempty"`
	Scope           string `toml:"scope,omitempty"` // key prefix for shared backends
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `toml:"addr,omitempty"`
	Timeout      string `toml:"timeout,omitempty"`
	MaxBodyBytes int64  `toml:"max_body_bytes,omitempty"`
}

// Path returns the file the config was read from.
func (c *Config) Path() string { return c.path }

// loadConfig reads path, or the first treemap.toml found in the working
// directory and the config directory. No file at the default locations
// yields an empty config; a missing explicit path is an error.
func loadConfig(path string) (*Config, error) {
	if path == "" {
		path = findConfig()
		if path == "" {
			return &Config{}, nil
		}
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.path = path
	return &cfg, nil
}

func findConfig() string {
	candidates := []string{configFileName}
	if dir, err := configDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, configFileName))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// apply copies file values into opts for every option whose flag was not
// set on cmd.
func (c *Config) apply(cmd *cobra.Command, opts *pipeline.Options) {
	unset := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f == nil || !f.Changed
	}
	setString := func(name string, dst *string, v string) {
		if v != "" && unset(name) {
			*dst = v
		}
	}
	setFloat := func(name string, dst *float64, v float64) {
		if v != 0 && unset(name) {
			*dst = v
		}
	}
	setBool := func(name string, dst *bool, v bool) {
		if v && unset(name) {
			*dst = true
		}
	}
	setList := func(name string, dst *[]string, v []string) {
		if len(v) > 0 && unset(name) {
			*dst = slices.Clone(v)
		}
	}

	setString("children-key", &opts.Keys.Children, c.Input.Children)
	setString("count-key", &opts.Keys.Count, c.Input.Count)
	setString("data-key", &opts.Keys.Data, c.Input.Data)

	if c.Scan.MaxDepth != 0 && unset("max-depth") {
		opts.MaxDepth = c.Scan.MaxDepth
	}
	setBool("hidden", &opts.Hidden, c.Scan.Hidden)
	setBool("free-space", &opts.FreeSpace, c.Scan.FreeSpace)
	setList("ignore", &opts.Ignore, c.Scan.Ignore)

	setFloat("width", &opts.Width, c.Layout.Width)
	setFloat("height", &opts.Height, c.Layout.Height)
	if c.Layout.Sort != nil && unset("shuffle") {
		opts.Sort = c.Layout.Sort
	}
	if c.Layout.Seed != 0 && unset("seed") {
		opts.Seed = c.Layout.Seed
	}
	setString("direction", &opts.Direction, c.Layout.Direction)
	setFloat("padding", &opts.Padding, c.Layout.Padding)
	setList("exclude", &opts.Exclude, c.Layout.Exclude)

	setString("type", &opts.VizType, c.Render.Type)
	setList("format", &opts.Formats, c.Render.Formats)
	setString("style", &opts.Style, c.Render.Style)
	setString("palette", &opts.Palette, c.Render.Palette)
	setBool("labels", &opts.Labels, c.Render.Labels)
	setBool("legend", &opts.Legend, c.Render.Legend)
	setBool("interactive", &opts.Interactive, c.Render.Interactive)
	setFloat("scale", &opts.Scale, c.Render.Scale)
}

// serverConfig resolves the [server] section, letting a set --addr flag win.
func (c *Config) serverConfig(cmd *cobra.Command, addr string) (server.Config, error) {
	cfg := server.Config{Addr: addr, MaxBodyBytes: c.Server.MaxBodyBytes}
	if f := cmd.Flags().Lookup("addr"); c.Server.Addr != "" && (f == nil || !f.Changed) {
		cfg.Addr = c.Server.Addr
	}
	if c.Server.Timeout != "" {
		d, err := time.ParseDuration(c.Server.Timeout)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "server.timeout")
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// =============================================================================
// Config Command
// =============================================================================

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the treemap.toml config file",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFileName
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			data, err := encodeConfig(defaultConfig())
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}

			printSuccess("Config written")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config file settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg()
			if cfg.Path() == "" {
				printInfo("No config file found; showing defaults")
				cfg = defaultConfig()
			} else {
				printInfo("Config from %s", cfg.Path())
			}
			data, err := encodeConfig(cfg)
			if err != nil {
				return err
			}
			printNewline()
			fmt.Print(string(data))
			return nil
		},
	}
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			if p := c.cfg().Path(); p != "" {
				fmt.Println(p)
				return nil
			}
			dir, err := configDir()
			if err != nil {
				return fmt.Errorf("get config dir: %w", err)
			}
			printInfo("No config file found")
			printDetail("Looked in ./%s and %s", configFileName, filepath.Join(dir, configFileName))
			return nil
		},
	}
}

func defaultConfig() *Config {
	sorted := true
	return &Config{
		Input: InputConfig{Children: "children", Count: "value", Data: "name"},
		Layout: LayoutConfig{
			Width:     pipeline.DefaultWidth,
			Height:    pipeline.DefaultHeight,
			Sort:      &sorted,
			Direction: "both",
		},
		Render: RenderConfig{
			Type:    pipeline.VizTypeTreemap,
			Formats: []string{pipeline.FormatSVG},
			Style:   pipeline.DefaultStyle,
			Palette: pipeline.DefaultPalette,
			Scale:   1,
		},
		Cache:  CacheConfig{Backend: backendFile},
		Server: ServerConfig{Addr: server.DefaultAddr, Timeout: server.DefaultTimeout.String()},
	}
}

func encodeConfig(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
