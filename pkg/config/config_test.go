package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/format"
	"github.com/redcanaryco/vscode-attack/pkg/search"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	def := Default()
	if cfg.Prefix != def.Prefix || cfg.Search != def.Search || cfg.Timeout != 5*time.Second {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if err := def.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
cache_dir = "/tmp/attack"
description = "long"
insert_format = "link"
enabled = ["techniques", "group"]
timeout = "10s"
exclude_prerelease = false

[search]
min_term_length = 4
description_cap = 10

[registry]
cache_ttl = "30m"

[redis]
addr = "localhost:6379"
db = 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.CacheDir != "/tmp/attack" || cfg.Timeout != 10*time.Second || cfg.ExcludePrerelease {
		t.Errorf("top-level fields = %+v", cfg)
	}
	if cfg.DescriptionLength() != format.Long || cfg.Insert() != format.InsertLink {
		t.Errorf("formatting = %s %s", cfg.DescriptionLength(), cfg.Insert())
	}
	if !slices.Equal(cfg.Kinds(), []attack.Kind{attack.KindTechnique, attack.KindGroup}) {
		t.Errorf("Kinds() = %v", cfg.Kinds())
	}
	opts := cfg.SearchOptions()
	if opts.MinTermLength != 4 || opts.DescriptionCap != 10 {
		t.Errorf("SearchOptions() = %+v", opts)
	}
	if cfg.Registry.CacheTTL != 30*time.Minute || cfg.Registry.APIURL != Default().Registry.APIURL {
		t.Errorf("registry = %+v", cfg.Registry)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if dir, _ := cfg.ResolvedCacheDir(); dir != "/tmp/attack" {
		t.Errorf("ResolvedCacheDir() = %q", dir)
	}
}

func TestLoadZeroThresholds(t *testing.T) {
	path := writeConfig(t, `
[search]
min_term_length = 0
description_cap = 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if opts := cfg.SearchOptions(); opts.MinTermLength != 0 || opts.DescriptionCap != 0 {
		t.Errorf("SearchOptions() = %+v, want explicit zeros", opts)
	}

	cfg, err = Load(writeConfig(t, "[search]\nmin_term_length = 6\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if opts := cfg.SearchOptions(); opts.MinTermLength != 6 || opts.DescriptionCap != search.DefaultDescriptionCap {
		t.Errorf("omitted description_cap = %+v, want default", opts)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `description = `},
		{"unknown key", `colour = "blue"`},
		{"bad description", `description = "medium"`},
		{"bad insert format", `insert_format = "html"`},
		{"bad kind", `enabled = ["campaigns"]`},
		{"negative threshold", "[search]\nmin_term_length = -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")

	if p, _ := Path(); p != filepath.Join("/xdg/config", "attack", "config.toml") {
		t.Errorf("Path() = %q", p)
	}
	if p, _ := CacheDir(); p != filepath.Join("/xdg/cache", "attack") {
		t.Errorf("CacheDir() = %q", p)
	}
	if p, _ := Default().ResolvedCacheDir(); p != filepath.Join("/xdg/cache", "attack") {
		t.Errorf("ResolvedCacheDir() = %q", p)
	}
}
