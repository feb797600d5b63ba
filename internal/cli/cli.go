// Package cli implements the attack command-line interface.
//
// The commands wrap the dataset and lookup packages: "update" keeps the
// local dataset cache current, "search", "show" and "insert" answer lookups,
// "browse" pages through results interactively, "tree" draws the tactic
// hierarchy, "serve" exposes the lookups over HTTP and "export" copies the
// normalized collections to MongoDB.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// lives on the CLI and is also attached to the command context.
package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	"github.com/redcanaryco/vscode-attack/pkg/buildinfo"
	"github.com/redcanaryco/vscode-attack/pkg/cache"
	"github.com/redcanaryco/vscode-attack/pkg/config"
	"github.com/redcanaryco/vscode-attack/pkg/dataset"
	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/integrations/github"
	"github.com/redcanaryco/vscode-attack/pkg/registry"
	"github.com/redcanaryco/vscode-attack/pkg/versions"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// httpCacheDir is the response cache subdirectory of the cache directory.
const httpCacheDir = "http"

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cacheDir   string
	refresh    bool
	noCache    bool

	cfg config.Config
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), cfg: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "attack",
		Short:        "Look up MITRE ATT&CK techniques, groups, software and mitigations",
		Long:         `attack keeps a local copy of the MITRE ATT&CK enterprise dataset current and answers id, name and description lookups against it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/attack/config.toml)")
	pf.StringVar(&c.cacheDir, "dir", "", "dataset cache directory (overrides cache_dir)")
	pf.BoolVar(&c.refresh, "refresh", false, "bypass the cached release listing")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable the release listing cache")

	root.AddCommand(c.updateCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.insertCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			c.Logger.Debug("no config path", "err", err)
			return nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.cacheDir != "" {
		cfg.CacheDir = c.cacheDir
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Service Factories
// =============================================================================

// datasetDir returns the directory holding cached dataset files.
func (c *CLI) datasetDir() (string, error) {
	return c.cfg.ResolvedCacheDir()
}

// newResponseCache returns the release listing cache: Redis when configured,
// a file cache under the cache directory otherwise.
func (c *CLI) newResponseCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	if c.cfg.Redis.Addr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.cfg.Redis.Addr,
			Password: c.cfg.Redis.Password,
			DB:       c.cfg.Redis.DB,
		})
	}
	dir, err := c.datasetDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(filepath.Join(dir, httpCacheDir))
}

// services bundles the collaborators most commands need.
type services struct {
	cache        cache.Cache
	registry     *registry.Client
	fetcher      *dataset.Fetcher
	orchestrator *dataset.Orchestrator
}

func (s *services) Close() error { return s.cache.Close() }

func (c *CLI) newServices(ctx context.Context, n dataset.Notifier) (*services, error) {
	rc, err := c.newResponseCache(ctx)
	if err != nil {
		return nil, err
	}

	gh := github.NewClient(github.Options{
		BaseURL:  c.cfg.Registry.APIURL,
		Token:    c.cfg.Registry.Token,
		Cache:    rc,
		CacheTTL: c.cfg.Registry.CacheTTL,
		Timeout:  c.cfg.Timeout,
	})
	markers := c.cfg.PrereleaseMarkers
	if len(markers) == 0 {
		markers = versions.DefaultPrereleaseMarkers
	}
	reg := registry.New(gh, registry.WithPrereleaseMarkers(markers), registry.WithRefresh(c.refresh))

	fetcher := dataset.NewFetcher(reg, dataset.FetcherOptions{
		URLTemplate: c.cfg.Registry.DatasetURL,
		Prefix:      c.cfg.Prefix,
		Name:        c.cfg.Dataset,
		Timeout:     c.cfg.DownloadTimeout,
		Logger:      c.Logger,
	})
	if n == nil {
		n = notifier{}
	}
	orch := dataset.NewOrchestrator(reg, fetcher, dataset.Options{
		Name:              c.cfg.Dataset,
		Prefix:            c.cfg.Prefix,
		ExcludePrerelease: c.cfg.ExcludePrerelease,
		Notifier:          n,
		Logger:            c.Logger,
	})

	return &services{cache: rc, registry: reg, fetcher: fetcher, orchestrator: orch}, nil
}

// loadDataset runs the freshness check and returns the dataset in use.
func (c *CLI) loadDataset(ctx context.Context) (*attack.Dataset, error) {
	dir, err := c.datasetDir()
	if err != nil {
		return nil, err
	}
	svc, err := c.newServices(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer svc.Close()

	spinner := newSpinnerWithContext(ctx, "Checking ATT&CK dataset...")
	spinner.Start()
	ds, err := svc.orchestrator.CacheData(ctx, dir)
	spinner.Stop()
	if err != nil && spinner.Cancelled() {
		return nil, apperrors.Wrap(apperrors.ErrCodeCancelled, ctx.Err(), "dataset check interrupted")
	}
	return ds, err
}

// loadSnapshot loads the dataset and normalizes it.
func (c *CLI) loadSnapshot(ctx context.Context) (*attack.Snapshot, error) {
	ds, err := c.loadDataset(ctx)
	if err != nil {
		return nil, err
	}
	snap := attack.NewSnapshot(ds)
	c.Logger.Debug("normalized dataset",
		"version", snap.Version,
		"techniques", len(snap.Techniques()),
		"groups", len(snap.Groups),
		"software", len(snap.Software))
	return snap, nil
}
