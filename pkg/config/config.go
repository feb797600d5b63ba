// Package config loads user settings from a TOML file.
//
// The file is optional and lives at $XDG_CONFIG_HOME/attack/config.toml
// (~/.config/attack/config.toml when XDG_CONFIG_HOME is unset). Missing
// keys keep the values of [Default]:
//
//	description = "long"
//	insert_format = "link"
//	enabled = ["techniques", "groups"]
//
//	[search]
//	min_term_length = 4
//
//	[redis]
//	addr = "localhost:6379"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	"github.com/redcanaryco/vscode-attack/pkg/dataset"
	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/format"
	"github.com/redcanaryco/vscode-attack/pkg/integrations"
	"github.com/redcanaryco/vscode-attack/pkg/integrations/github"
	"github.com/redcanaryco/vscode-attack/pkg/registry"
	"github.com/redcanaryco/vscode-attack/pkg/search"
	"github.com/redcanaryco/vscode-attack/pkg/versions"
)

const appName = "attack"

// Config holds every user-tunable setting.
type Config struct {
	CacheDir          string        `toml:"cache_dir"`
	Dataset           string        `toml:"dataset"`
	Prefix            string        `toml:"prefix"`
	ExcludePrerelease bool          `toml:"exclude_prerelease"`
	PrereleaseMarkers []string      `toml:"prerelease_markers"`
	Timeout           time.Duration `toml:"timeout"`
	DownloadTimeout   time.Duration `toml:"download_timeout"`
	Enabled           []string      `toml:"enabled"`
	Description       string        `toml:"description"`
	InsertFormat      string        `toml:"insert_format"`

	Search   Search   `toml:"search"`
	Registry Registry `toml:"registry"`
	Redis    Redis    `toml:"redis"`
	Server   Server   `toml:"server"`
	Mongo    Mongo    `toml:"mongo"`
}

// Search tunes the lookup tiers. Omitted keys keep the defaults; an
// explicit 0 is honored, so description_cap = 0 never returns unconfirmed
// description matches.
type Search struct {
	MinTermLength  int `toml:"min_term_length"`
	DescriptionCap int `toml:"description_cap"`
}

// Registry points at the release source.
type Registry struct {
	APIURL     string        `toml:"api_url"`
	DatasetURL string        `toml:"dataset_url"`
	Token      string        `toml:"token"`
	CacheTTL   time.Duration `toml:"cache_ttl"`
}

// Redis enables the shared tag-listing cache when Addr is set.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Server configures "attack serve".
type Server struct {
	Addr           string        `toml:"addr"`
	AllowedOrigins []string      `toml:"allowed_origins"`
	ReloadInterval time.Duration `toml:"reload_interval"`
}

// Mongo configures "attack export".
type Mongo struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Dataset:           dataset.DefaultName,
		Prefix:            registry.DefaultPrefix,
		ExcludePrerelease: true,
		PrereleaseMarkers: versions.DefaultPrereleaseMarkers,
		Timeout:           integrations.DefaultTimeout,
		DownloadTimeout:   dataset.DefaultDownloadTimeout,
		Description:       string(format.Short),
		InsertFormat:      string(format.InsertIDName),
		Search: Search{
			MinTermLength:  search.DefaultMinTermLength,
			DescriptionCap: search.DefaultDescriptionCap,
		},
		Registry: Registry{
			APIURL:     github.DefaultBaseURL,
			DatasetURL: dataset.DefaultURLTemplate,
			CacheTTL:   time.Hour,
		},
		Server: Server{Addr: "127.0.0.1:8080"},
		Mongo:  Mongo{Database: "attack"},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the default dataset cache directory.
func CacheDir() (string, error) {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated and numeric fields.
func (c Config) Validate() error {
	if _, err := format.ParseDescriptionLength(c.Description); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "description")
	}
	if _, err := format.ParseInsertFormat(c.InsertFormat); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "insert_format")
	}
	for _, name := range c.Enabled {
		if _, ok := attack.ParseKind(name); !ok {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "enabled: unknown kind %q", name)
		}
	}
	if c.Search.MinTermLength < 0 || c.Search.DescriptionCap < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "search thresholds must not be negative")
	}
	if c.Timeout < 0 || c.DownloadTimeout < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "timeouts must not be negative")
	}
	return nil
}

// Kinds returns the enabled entity kinds; all kinds when none are listed.
func (c Config) Kinds() []attack.Kind {
	if len(c.Enabled) == 0 {
		return attack.Kinds
	}
	var out []attack.Kind
	for _, name := range c.Enabled {
		if k, ok := attack.ParseKind(name); ok {
			out = append(out, k)
		}
	}
	return out
}

// SearchOptions returns the lookup thresholds.
func (c Config) SearchOptions() search.Options {
	return search.Options{
		MinTermLength:  c.Search.MinTermLength,
		DescriptionCap: c.Search.DescriptionCap,
	}
}

// DescriptionLength returns the validated description length.
func (c Config) DescriptionLength() format.DescriptionLength {
	l, _ := format.ParseDescriptionLength(c.Description)
	return l
}

// Insert returns the validated insertion format.
func (c Config) Insert() format.InsertFormat {
	f, _ := format.ParseInsertFormat(c.InsertFormat)
	return f
}

// ResolvedCacheDir returns CacheDir or the default cache directory.
func (c Config) ResolvedCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	return CacheDir()
}
