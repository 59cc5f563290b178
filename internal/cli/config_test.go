package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/pipeline"
)

const sampleConfig = `
[input]
count = "size"

[layout]
width = 1200.0
height = 900.0
sort = false
seed = 7
direction = "vertical"
exclude = ["vendor"]

[render]
formats = ["svg", "png"]
palette = "heat"
labels = true

[cache]
backend = "none"

[server]
addr = ":9090"
timeout = "5s"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if cfg.Layout.Width != 1200 || cfg.Layout.Seed != 7 || cfg.Layout.Sort == nil || *cfg.Layout.Sort {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if !slices.Equal(cfg.Render.Formats, []string{"svg", "png"}) || !cfg.Render.Labels {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Input.Count != "size" || cfg.Cache.Backend != "none" || cfg.Server.Addr != ":9090" {
		t.Errorf("input/cache/server = %+v %+v %+v", cfg.Input, cfg.Cache, cfg.Server)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code errors.Code
	}{
		{
			name: "missing explicit file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.toml") },
			code: errors.ErrCodeFileNotFound,
		},
		{
			name: "syntax error",
			path: func(t *testing.T) string { return writeConfig(t, "[layout\nwidth = 1") },
			code: errors.ErrCodeInvalidFormat,
		},
		{
			name: "unknown key",
			path: func(t *testing.T) string { return writeConfig(t, "[layout]\nwidht = 10.0\n") },
			code: errors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(tt.path(t))
			if !errors.Is(err, tt.code) {
				t.Errorf("loadConfig() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() without file error: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty", cfg.Path())
	}

	dir := filepath.Join(xdg, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, []byte("[layout]\nwidth = 10.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err = loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Path() != path || cfg.Layout.Width != 10 {
		t.Errorf("loaded %q with width %v", cfg.Path(), cfg.Layout.Width)
	}
}

func newFlagCommand(t *testing.T, args ...string) (*cobra.Command, *optionFlags) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	flags := newOptionFlags()
	flags.addInput(cmd)
	flags.addLayout(cmd)
	flags.addRender(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v) error: %v", args, err)
	}
	return cmd, flags
}

func TestResolvePrecedence(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("file overrides defaults", func(t *testing.T) {
		cmd, flags := newFlagCommand(t)
		opts := flags.resolve(cmd, cfg)

		if opts.Width != 1200 || opts.Height != 900 {
			t.Errorf("size = %vx%v, want 1200x900", opts.Width, opts.Height)
		}
		if opts.Sorted() || opts.Seed != 7 || opts.Direction != "vertical" {
			t.Errorf("sort=%v seed=%d direction=%q", opts.Sorted(), opts.Seed, opts.Direction)
		}
		if !slices.Equal(opts.Formats, []string{"svg", "png"}) || opts.Palette != "heat" || !opts.Labels {
			t.Errorf("render = %v %q %v", opts.Formats, opts.Palette, opts.Labels)
		}
		if opts.Keys.Count != "size" || opts.Keys.Children != "children" {
			t.Errorf("keys = %+v", opts.Keys)
		}
		if !slices.Equal(opts.Exclude, []string{"vendor"}) {
			t.Errorf("exclude = %v", opts.Exclude)
		}
	})

	t.Run("flags override file", func(t *testing.T) {
		cmd, flags := newFlagCommand(t, "--width", "300", "--shuffle=false", "-f", "json", "--palette", "greens", "--count-key", "n")
		opts := flags.resolve(cmd, cfg)

		if opts.Width != 300 || opts.Height != 900 {
			t.Errorf("size = %vx%v, want 300x900", opts.Width, opts.Height)
		}
		if !opts.Sorted() {
			t.Error("--shuffle=false should keep sorting on")
		}
		if !slices.Equal(opts.Formats, []string{"json"}) || opts.Palette != "greens" || opts.Keys.Count != "n" {
			t.Errorf("render = %v %q, count key %q", opts.Formats, opts.Palette, opts.Keys.Count)
		}
	})

	t.Run("no file keeps defaults", func(t *testing.T) {
		cmd, flags := newFlagCommand(t, "--shuffle")
		opts := flags.resolve(cmd, &Config{})

		if opts.Width != pipeline.DefaultWidth || opts.Height != pipeline.DefaultHeight {
			t.Errorf("size = %vx%v", opts.Width, opts.Height)
		}
		if opts.Sorted() || opts.Seed != pipeline.DefaultSeed {
			t.Errorf("sorted=%v seed=%d", opts.Sorted(), opts.Seed)
		}
		if !slices.Equal(opts.Formats, []string{pipeline.FormatSVG}) {
			t.Errorf("formats = %v", opts.Formats)
		}
		if opts.Logger != nil {
			t.Error("logger should be left for the runner to fill in")
		}
	})
}

func TestServerConfig(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatal(err)
	}

	cmd := &cobra.Command{Use: "serve"}
	var addr string
	cmd.Flags().StringVar(&addr, "addr", ":8080", "")

	sc, err := cfg.serverConfig(cmd, addr)
	if err != nil {
		t.Fatalf("serverConfig() error: %v", err)
	}
	if sc.Addr != ":9090" || sc.Timeout != 5*time.Second {
		t.Errorf("server config = %+v", sc)
	}

	if err := cmd.ParseFlags([]string{"--addr", ":7070"}); err != nil {
		t.Fatal(err)
	}
	if sc, _ := cfg.serverConfig(cmd, addr); sc.Addr != ":7070" {
		t.Errorf("flag addr = %q, want :7070", sc.Addr)
	}

	bad := &Config{Server: ServerConfig{Timeout: "soon"}}
	if _, err := bad.serverConfig(cmd, addr); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad timeout error = %v", err)
	}
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	data, err := encodeConfig(defaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	var back Config
	md, err := toml.Decode(string(data), &back)
	if err != nil {
		t.Fatalf("decode generated config: %v\n%s", err, data)
	}
	if len(md.Undecoded()) > 0 {
		t.Errorf("generated config has unknown keys: %v", md.Undecoded())
	}
	if back.Layout.Width != pipeline.DefaultWidth || back.Render.Style != pipeline.DefaultStyle || back.Cache.Backend != backendFile {
		t.Errorf("round trip = %+v", back)
	}
}

func TestBackendName(t *testing.T) {
	tests := []struct {
		cfg     CacheConfig
		noCache bool
		want    string
	}{
		{CacheConfig{}, false, backendFile},
		{CacheConfig{Backend: "Redis"}, false, backendRedis},
		{CacheConfig{Backend: "mongo"}, true, backendNone},
	}
	for _, tt := range tests {
		if got := backendName(tt.cfg, tt.noCache); got != tt.want {
			t.Errorf("backendName(%+v, %v) = %q, want %q", tt.cfg, tt.noCache, got, tt.want)
		}
	}
}

func TestNewCacheErrors(t *testing.T) {
	ctx := t.Context()
	for _, cfg := range []CacheConfig{
		{Backend: "redis"},
		{Backend: "mongo"},
		{Backend: "memcached"},
	} {
		if _, err := newCache(ctx, cfg, false); err == nil {
			t.Errorf("newCache(%+v) should fail", cfg)
		}
	}

	c, err := newCache(ctx, CacheConfig{Dir: t.TempDir()}, false)
	if err != nil {
		t.Fatalf("file cache error: %v", err)
	}
	c.Close()
}
