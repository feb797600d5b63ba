package dataset

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/versions"
)

// DefaultName is the dataset file stem.
const DefaultName = "enterprise-attack"

// Entry is a cached dataset file.
type Entry struct {
	Path    string
	Version string
	ModTime time.Time
	Size    int64
}

// FileName returns the cache file name of version.
func FileName(name, version string) string {
	return nameOrDefault(name) + "." + version + ".json"
}

// ListCached returns the cached files of dataset name in ascending version
// order. A missing dir fails with NOT_FOUND; an empty one returns nil.
func ListCached(dir, name string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeNotFound, err, "cache directory %s", dir)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "read cache directory %s", dir)
	}

	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(nameOrDefault(name)) + `\.(.+)\.json$`)
	var entries []Entry
	for _, de := range des {
		if de.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		e := Entry{Path: filepath.Join(dir, de.Name()), Version: m[1]}
		if info, err := de.Info(); err == nil {
			e.ModTime = info.ModTime()
			e.Size = info.Size()
		}
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return versions.Compare(a.Version, b.Version)
	})
	return entries, nil
}

// LatestCached returns the cached file with the highest version. ok is false
// when dir holds no dataset files.
func LatestCached(dir, name string) (Entry, bool, error) {
	entries, err := ListCached(dir, name)
	if err != nil || len(entries) == 0 {
		return Entry{}, false, err
	}
	return entries[len(entries)-1], true, nil
}

func nameOrDefault(name string) string {
	if name == "" {
		return DefaultName
	}
	return name
}
