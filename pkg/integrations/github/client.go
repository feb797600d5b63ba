package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redcanaryco/vscode-attack/pkg/cache"
	"github.com/redcanaryco/vscode-attack/pkg/integrations"
)

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

const tagRefPrefix = "refs/tags/"

// Options configures a [Client].
type Options struct {
	BaseURL  string        // API base URL; empty means DefaultBaseURL
	Token    string        // optional bearer token
	Cache    cache.Cache   // response cache; nil disables caching
	CacheTTL time.Duration // lifetime of cached tag listings
	Timeout  time.Duration // per-request timeout; zero means integrations.DefaultTimeout
}

// Client lists git tags through the GitHub API.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client.
func NewClient(opts Options) *Client {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if opts.Token != "" {
		headers["Authorization"] = "Bearer " + opts.Token
	}
	base := strings.TrimSuffix(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	c := &Client{
		Client:  integrations.NewClient(opts.Cache, "github:", opts.CacheTTL, headers),
		baseURL: base,
	}
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	return c
}

// BaseURL returns the API base URL the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// ListTags returns the tag names of owner/repo in the order GitHub reports
// them. If refresh is true, a cached listing is bypassed.
func (c *Client) ListTags(ctx context.Context, owner, repo string, refresh bool) ([]string, error) {
	key := "tags:" + owner + "/" + repo

	var tags []string
	err := c.Cached(ctx, key, refresh, &tags, func() error {
		var err error
		tags, err = c.fetchTags(ctx, owner, repo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) fetchTags(ctx context.Context, owner, repo string) ([]string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/git/refs/tags", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))
	data, err := c.GetBytes(ctx, u)
	if err != nil {
		return nil, err
	}

	refs, err := decodeRefs(data)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(refs))
	for _, r := range refs {
		if name, ok := strings.CutPrefix(r.Ref, tagRefPrefix); ok {
			tags = append(tags, name)
		}
	}
	return tags, nil
}

// decodeRefs accepts both the array form and the single-object form GitHub
// uses when exactly one ref matches.
func decodeRefs(data []byte) ([]refResponse, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var one refResponse
		if err := json.Unmarshal(trimmed, &one); err != nil || one.Ref == "" {
			return nil, fmt.Errorf("%w: tag listing is not a ref object", integrations.ErrDecode)
		}
		return []refResponse{one}, nil
	}

	var refs []refResponse
	if err := json.Unmarshal(trimmed, &refs); err != nil {
		return nil, fmt.Errorf("%w: tag listing: %v", integrations.ErrDecode, err)
	}
	return refs, nil
}

type refResponse struct {
	Ref    string `json:"ref"`
	Object struct {
		SHA  string `json:"sha"`
		Type string `json:"type"`
	} `json:"object"`
}
