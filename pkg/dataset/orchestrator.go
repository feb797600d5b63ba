package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/observability"
	"github.com/redcanaryco/vscode-attack/pkg/registry"
	"github.com/redcanaryco/vscode-attack/pkg/versions"
)

// Options configures an [Orchestrator].
type Options struct {
	Name              string // dataset file stem; default DefaultName
	Prefix            string // release tag prefix; default registry.DefaultPrefix
	ExcludePrerelease bool
	Notifier          Notifier // default LogNotifier over Logger
	Logger            *log.Logger
}

// Orchestrator decides whether the cached dataset can be used as is, must be
// updated, or has to stand in for an unreachable registry.
type Orchestrator struct {
	registry   Registry
	fetcher    *Fetcher
	name       string
	prefix     string
	excludePre bool
	notifier   Notifier
	logger     *log.Logger
}

// NewOrchestrator creates an orchestrator. The fetcher should share reg.
func NewOrchestrator(reg Registry, fetcher *Fetcher, opts Options) *Orchestrator {
	o := &Orchestrator{
		registry:   reg,
		fetcher:    fetcher,
		name:       nameOrDefault(opts.Name),
		prefix:     opts.Prefix,
		excludePre: opts.ExcludePrerelease,
		notifier:   opts.Notifier,
		logger:     opts.Logger,
	}
	if o.prefix == "" {
		o.prefix = registry.DefaultPrefix
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if o.notifier == nil {
		o.notifier = LogNotifier{Logger: o.logger}
	}
	return o
}

// CacheData returns the dataset to use, keeping dir current.
//
//   - No cached file: download the latest release. Failure is returned.
//   - Registry unreachable: use the newest cached file.
//   - Newer release online: download it; the old file stays. If the download
//     fails, use the newest cached file.
//   - Cache current: read the cached file without touching it.
func (o *Orchestrator) CacheData(ctx context.Context, dir string) (*attack.Dataset, error) {
	entry, ok, err := LatestCached(dir, o.name)
	if err != nil && !apperrors.Is(err, apperrors.ErrCodeNotFound) {
		o.logger.Warn("could not inspect cache", "dir", dir, "err", err)
	}
	if !ok {
		return o.initialize(ctx, dir)
	}

	o.logger.Debug("found cached dataset", "version", entry.Version, "path", entry.Path)

	online, err := o.registry.Latest(ctx, o.prefix, o.excludePre)
	observability.Dataset().OnVersionCheck(ctx, entry.Version, online, err)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		o.logger.Warn("version check failed", "err", err)
		o.notifier.Warn(fmt.Sprintf(
			"Could not check for ATT&CK updates; using cached version %s, which could not be verified as current.",
			entry.Version))
		return o.fallback(ctx, entry, err)
	}

	if !versions.Newer(online, entry.Version) {
		o.logger.Debug("cached dataset is current", "cached", entry.Version, "online", online)
		observability.Dataset().OnReuse(ctx, entry.Version)
		return o.load(entry)
	}

	o.logger.Info("newer dataset available", "cached", entry.Version, "online", online)
	ds, err := o.download(ctx, dir, online)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		o.logger.Warn("update failed", "version", online, "err", err)
		o.notifier.Warn(fmt.Sprintf(
			"Could not download ATT&CK %s; continuing with cached version %s.", online, entry.Version))
		return o.fallback(ctx, entry, err)
	}
	o.notifier.Info(fmt.Sprintf("Updated ATT&CK dataset from %s to %s.", entry.Version, online))
	return ds, nil
}

func (o *Orchestrator) initialize(ctx context.Context, dir string) (*attack.Dataset, error) {
	latest, err := o.registry.Latest(ctx, o.prefix, o.excludePre)
	observability.Dataset().OnVersionCheck(ctx, "", latest, err)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		o.notifier.Error("Could not download the ATT&CK dataset and no cached copy exists. Restart once the network is available.")
		return nil, err
	}

	o.logger.Info("no cached dataset, downloading", "version", latest, "dir", dir)
	ds, err := o.download(ctx, dir, latest)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		o.notifier.Error("Could not download the ATT&CK dataset and no cached copy exists. Restart once the network is available.")
		return nil, err
	}
	return ds, nil
}

// download fetches and parses version. A download that does not parse is
// removed from the cache so it is not picked up as the newest entry later.
func (o *Orchestrator) download(ctx context.Context, dir, version string) (*attack.Dataset, error) {
	text, err := o.fetcher.Fetch(ctx, dir, version)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, apperrors.New(apperrors.ErrCodeVersionNotFound, "version %s is no longer published", version)
	}

	path := filepath.Join(dir, FileName(o.name, version))
	ds, err := attack.Parse([]byte(text))
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			o.logger.Warn("could not remove malformed dataset", "path", path, "err", rmErr)
		}
		return nil, err
	}
	ds.Version, ds.Path = version, path
	return ds, nil
}

func (o *Orchestrator) fallback(ctx context.Context, entry Entry, cause error) (*attack.Dataset, error) {
	observability.Dataset().OnFallback(ctx, entry.Version, cause)
	return o.load(entry)
}

func (o *Orchestrator) load(entry Entry) (*attack.Dataset, error) {
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		o.notifier.Error("Could not read the cached ATT&CK dataset. Restart to download it again.")
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "read %s", entry.Path)
	}
	ds, err := attack.Parse(data)
	if err != nil {
		o.notifier.Error(fmt.Sprintf("The cached ATT&CK dataset %s is malformed. Remove it and restart.", entry.Path))
		return nil, err
	}
	ds.Version, ds.Path = entry.Version, entry.Path
	return ds, nil
}

// IsNewer reports whether a was modified after b, judged by the latest
// object modification timestamp inside each dataset.
func IsNewer(a, b *attack.Dataset) bool {
	return a.Modified().After(b.Modified())
}
