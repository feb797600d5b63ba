// Package registry lists the published ATT&CK dataset releases.
//
// Releases are git tags of the form "<prefix><token>", for example
// "ATT&CK-v8.0". [Client.ListVersions] strips the prefix and returns the
// bare tokens in ascending numeric order.
//
// A failed lookup always returns an error, never an empty slice, so that
// callers can tell "no matching tags" apart from "could not determine tags".
package registry

import (
	"context"
	"errors"
	"slices"
	"strings"

	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/integrations"
	"github.com/redcanaryco/vscode-attack/pkg/versions"
)

// DefaultPrefix is the tag prefix of ATT&CK releases.
const DefaultPrefix = "ATT&CK-v"

const (
	defaultOwner = "mitre"
	defaultRepo  = "cti"
)

// TagLister is the remote tag source. *github.Client satisfies it.
type TagLister interface {
	ListTags(ctx context.Context, owner, repo string, refresh bool) ([]string, error)
}

// Client answers version queries against a tag source.
type Client struct {
	tags    TagLister
	owner   string
	repo    string
	markers []string
	refresh bool
}

// Option customizes a Client.
type Option func(*Client)

// WithRepository overrides the owner/repo whose tags are listed.
func WithRepository(owner, repo string) Option {
	return func(c *Client) {
		c.owner, c.repo = owner, repo
	}
}

// WithPrereleaseMarkers sets the substrings that mark pre-release tokens.
func WithPrereleaseMarkers(markers []string) Option {
	return func(c *Client) { c.markers = markers }
}

// WithRefresh bypasses any cached tag listing.
func WithRefresh(refresh bool) Option {
	return func(c *Client) { c.refresh = refresh }
}

// New creates a registry client over tags.
func New(tags TagLister, opts ...Option) *Client {
	c := &Client{
		tags:    tags,
		owner:   defaultOwner,
		repo:    defaultRepo,
		markers: versions.DefaultPrereleaseMarkers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListVersions returns the version tokens of tags starting with prefix,
// sorted ascending and deduplicated. An empty prefix means [DefaultPrefix].
// A tag equal to prefix yields prefix itself. With excludePrerelease, tokens
// containing a pre-release marker are dropped.
//
// Transport failures are coded NETWORK_ERROR (or TIMEOUT/CANCELLED);
// undecodable listings are coded PARSE_ERROR.
func (c *Client) ListVersions(ctx context.Context, prefix string, excludePrerelease bool) ([]string, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	tags, err := c.tags.ListTags(ctx, c.owner, c.repo, c.refresh)
	if err != nil {
		return nil, classify(err, "list tags of %s/%s", c.owner, c.repo)
	}

	var tokens []string
	for _, tag := range tags {
		if !strings.HasPrefix(tag, prefix) {
			continue
		}
		token := strings.TrimPrefix(tag, prefix)
		if token == "" {
			token = prefix
		}
		if excludePrerelease && versions.IsPrerelease(token, c.markers) {
			continue
		}
		tokens = append(tokens, token)
	}

	versions.Sort(tokens)
	return slices.Compact(tokens), nil
}

// Latest returns the highest version token. It fails with NOT_FOUND when no
// tag matches.
func (c *Client) Latest(ctx context.Context, prefix string, excludePrerelease bool) (string, error) {
	tokens, err := c.ListVersions(ctx, prefix, excludePrerelease)
	if err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		return "", apperrors.New(apperrors.ErrCodeVersionNotFound, "no release tags match prefix %q", prefixOrDefault(prefix))
	}
	return tokens[len(tokens)-1], nil
}

// Has reports whether version is a published token.
func (c *Client) Has(ctx context.Context, prefix, version string) (bool, error) {
	tokens, err := c.ListVersions(ctx, prefix, false)
	if err != nil {
		return false, err
	}
	return slices.Contains(tokens, version), nil
}

func prefixOrDefault(p string) string {
	if p == "" {
		return DefaultPrefix
	}
	return p
}

func classify(err error, format string, args ...any) error {
	switch {
	case errors.Is(err, integrations.ErrDecode):
		return apperrors.Wrap(apperrors.ErrCodeParse, err, format, args...)
	case errors.Is(err, integrations.ErrNotFound):
		return apperrors.Wrap(apperrors.ErrCodeNotFound, err, format, args...)
	default:
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, format, args...)
	}
}
