package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/integrations"
	"github.com/redcanaryco/vscode-attack/pkg/integrations/github"
)

type fakeTags struct {
	tags  []string
	err   error
	owner string
	repo  string
}

func (f *fakeTags) ListTags(ctx context.Context, owner, repo string, refresh bool) ([]string, error) {
	f.owner, f.repo = owner, repo
	return f.tags, f.err
}

func TestListVersions(t *testing.T) {
	src := &fakeTags{tags: []string{
		"ATT&CK-v9.0",
		"ATT&CK-v11.0",
		"ATT&CK-v7.0-beta",
		"ATT&CK-v8.0",
		"ATT&CK-v1.12",
		"subtechniques-beta",
		"ATT&CK-v8.0",
	}}
	c := New(src)

	tests := []struct {
		name       string
		prefix     string
		excludePre bool
		want       []string
	}{
		{"default prefix", "", false, []string{"1.12", "7.0-beta", "8.0", "9.0", "11.0"}},
		{"exclude prerelease", "", true, []string{"1.12", "8.0", "9.0", "11.0"}},
		{"explicit prefix", "ATT&CK-v8", false, []string{".0"}},
		{"no match", "nope-", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ListVersions(context.Background(), tt.prefix, tt.excludePre)
			if err != nil {
				t.Fatalf("ListVersions() error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ListVersions() = %v, want %v", got, tt.want)
			}
		})
	}

	if src.owner != "mitre" || src.repo != "cti" {
		t.Errorf("listed %s/%s, want mitre/cti", src.owner, src.repo)
	}
}

func TestListVersionsTagEqualsPrefix(t *testing.T) {
	c := New(&fakeTags{tags: []string{"ATT&CK-v"}})

	got, err := c.ListVersions(context.Background(), "ATT&CK-v", false)
	if err != nil {
		t.Fatalf("ListVersions() error: %v", err)
	}
	if !slices.Equal(got, []string{"ATT&CK-v"}) {
		t.Errorf("ListVersions() = %v, want [ATT&CK-v]", got)
	}
}

func TestListVersionsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.Code
	}{
		{"network", fmt.Errorf("%w: dial tcp: refused", integrations.ErrNetwork), apperrors.ErrCodeNetwork},
		{"decode", fmt.Errorf("%w: bad json", integrations.ErrDecode), apperrors.ErrCodeParse},
		{"missing repo", integrations.ErrNotFound, apperrors.ErrCodeNotFound},
		{"cancelled", context.Canceled, apperrors.ErrCodeCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&fakeTags{err: tt.err})
			got, err := c.ListVersions(context.Background(), "", false)
			if err == nil {
				t.Fatal("ListVersions() should fail")
			}
			if got != nil {
				t.Errorf("ListVersions() = %v, want nil on failure", got)
			}
			if !apperrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("error = %v, should wrap %v", err, tt.err)
			}
		})
	}
}

func TestLatest(t *testing.T) {
	c := New(&fakeTags{tags: []string{"ATT&CK-v7.2", "ATT&CK-v9.0", "ATT&CK-v11.0", "ATT&CK-v12.0-beta"}})

	got, err := c.Latest(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if got != "11.0" {
		t.Errorf("Latest() = %q, want 11.0", got)
	}

	got, _ = c.Latest(context.Background(), "", false)
	if got != "12.0-beta" {
		t.Errorf("Latest() with prereleases = %q, want 12.0-beta", got)
	}
}

func TestLatestNoTags(t *testing.T) {
	c := New(&fakeTags{tags: []string{"unrelated"}})

	_, err := c.Latest(context.Background(), "", false)
	if !apperrors.Is(err, apperrors.ErrCodeVersionNotFound) {
		t.Errorf("Latest() error = %v, want VERSION_NOT_FOUND", err)
	}
}

func TestHas(t *testing.T) {
	c := New(&fakeTags{tags: []string{"ATT&CK-v8.0"}})

	ok, err := c.Has(context.Background(), "", "8.0")
	if err != nil || !ok {
		t.Errorf("Has(8.0) = %v, %v", ok, err)
	}
	ok, _ = c.Has(context.Background(), "", "9.0")
	if ok {
		t.Error("Has(9.0) = true, want false")
	}
}

func TestOptions(t *testing.T) {
	src := &fakeTags{tags: []string{"ATT&CK-v9.0-preview", "ATT&CK-v8.0"}}
	c := New(src, WithRepository("acme", "taxonomy"), WithPrereleaseMarkers([]string{"preview"}))

	got, err := c.ListVersions(context.Background(), "", true)
	if err != nil {
		t.Fatalf("ListVersions() error: %v", err)
	}
	if !slices.Equal(got, []string{"8.0"}) {
		t.Errorf("ListVersions() = %v, want [8.0]", got)
	}
	if src.owner != "acme" || src.repo != "taxonomy" {
		t.Errorf("listed %s/%s, want acme/taxonomy", src.owner, src.repo)
	}
}

func TestListVersionsOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"ref":"refs/tags/ATT&CK-v10.0"},{"ref":"refs/tags/ATT&CK-v9.0"}]`))
	}))
	defer server.Close()

	c := New(github.NewClient(github.Options{BaseURL: server.URL}), WithRefresh(true))

	got, err := c.Latest(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if got != "10.0" {
		t.Errorf("Latest() = %q, want 10.0", got)
	}
}

func TestListVersionsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	gh := github.NewClient(github.Options{BaseURL: url})
	gh.SetRetry(1, 0)
	c := New(gh)

	_, err := c.ListVersions(context.Background(), "", false)
	if !apperrors.IsNetwork(err) {
		t.Errorf("ListVersions() error = %v, want network error", err)
	}
}

func TestLatestHangingRegistryBounded(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	const timeout = 200 * time.Millisecond
	c := New(github.NewClient(github.Options{BaseURL: server.URL, Timeout: timeout}))

	start := time.Now()
	_, err := c.Latest(context.Background(), "", false)
	elapsed := time.Since(start)

	if !apperrors.IsNetwork(err) {
		t.Errorf("Latest() error = %v, want network error", err)
	}
	// A second attempt would add another timeout plus the retry delay.
	if elapsed >= 2*timeout {
		t.Errorf("Latest() took %v, want about %v", elapsed, timeout)
	}
}
