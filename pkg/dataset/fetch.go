package dataset

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/redcanaryco/vscode-attack/pkg/cache"
	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/integrations"
	"github.com/redcanaryco/vscode-attack/pkg/observability"
	"github.com/redcanaryco/vscode-attack/pkg/registry"
)

const (
	// DefaultURLTemplate is the raw download URL; {tag} is replaced by the
	// escaped release tag.
	DefaultURLTemplate = "https://raw.githubusercontent.com/mitre/cti/{tag}/enterprise-attack/enterprise-attack.json"

	// DefaultDownloadTimeout bounds a single dataset download. The file is
	// tens of megabytes, so it gets far more time than a registry call.
	DefaultDownloadTimeout = 2 * time.Minute
)

// Registry is the version source the dataset layer depends on.
// *registry.Client satisfies it.
type Registry interface {
	ListVersions(ctx context.Context, prefix string, excludePrerelease bool) ([]string, error)
	Latest(ctx context.Context, prefix string, excludePrerelease bool) (string, error)
}

// FetcherOptions configures a [Fetcher].
type FetcherOptions struct {
	URLTemplate string        // default DefaultURLTemplate
	Prefix      string        // release tag prefix; default registry.DefaultPrefix
	Name        string        // dataset file stem; default DefaultName
	Timeout     time.Duration // per-download timeout; default DefaultDownloadTimeout
	Logger      *log.Logger
}

// Fetcher downloads dataset releases into a cache directory.
type Fetcher struct {
	registry Registry
	http     *integrations.Client
	template string
	prefix   string
	name     string
	logger   *log.Logger
}

// NewFetcher creates a fetcher that validates versions against reg.
func NewFetcher(reg Registry, opts FetcherOptions) *Fetcher {
	f := &Fetcher{
		registry: reg,
		http:     integrations.NewClient(cache.NewNullCache(), "", 0, nil),
		template: opts.URLTemplate,
		prefix:   opts.Prefix,
		name:     nameOrDefault(opts.Name),
		logger:   opts.Logger,
	}
	if f.template == "" {
		f.template = DefaultURLTemplate
	}
	if f.prefix == "" {
		f.prefix = registry.DefaultPrefix
	}
	if f.logger == nil {
		f.logger = log.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	f.http.SetTimeout(timeout)
	return f
}

// URL returns the download URL of version.
func (f *Fetcher) URL(version string) string {
	return strings.ReplaceAll(f.template, "{tag}", url.PathEscape(f.prefix+version))
}

// Fetch downloads version, stores it in dir and returns its text.
//
// An unpublished version yields ("", nil). Download failures are coded
// NETWORK_ERROR. A failure to persist is logged and the text is still
// returned. If ctx is cancelled, Fetch returns ctx.Err() and writes nothing.
func (f *Fetcher) Fetch(ctx context.Context, dir, version string) (string, error) {
	published, err := f.registry.ListVersions(ctx, f.prefix, false)
	if err != nil {
		return "", err
	}
	if !slices.Contains(published, version) {
		f.logger.Debug("version not published", "version", version)
		return "", nil
	}

	u := f.URL(version)
	f.logger.Debug("downloading dataset", "version", version, "url", u)

	start := time.Now()
	var data []byte
	err = f.http.Do(ctx, func() error {
		var err error
		data, err = f.http.GetBytes(ctx, u)
		return err
	})
	observability.Dataset().OnDownload(ctx, version, len(data), time.Since(start), err)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		code := apperrors.ErrCodeNetwork
		if errors.Is(err, integrations.ErrNotFound) {
			code = apperrors.ErrCodeNotFound
		}
		return "", apperrors.Wrap(code, err, "download %s", u)
	}

	f.logger.Info("downloaded dataset", "version", version, "bytes", len(data), "duration", time.Since(start).Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if path, err := writeAtomic(dir, FileName(f.name, version), data); err != nil {
		f.logger.Warn("could not cache dataset", "version", version, "err", err)
	} else {
		f.logger.Debug("cached dataset", "path", path)
	}
	return string(data), nil
}

// writeAtomic writes data to dir/name through a temporary file in the same
// directory, so the final name only ever holds complete content.
func writeAtomic(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}
