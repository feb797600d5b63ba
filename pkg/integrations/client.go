package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/redcanaryco/vscode-attack/pkg/cache"
	"github.com/redcanaryco/vscode-attack/pkg/httputil"
	"github.com/redcanaryco/vscode-attack/pkg/observability"
)

const (
	defaultRetries    = 2
	defaultRetryDelay = 500 * time.Millisecond
)

// Client provides shared HTTP functionality for remote API clients.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
	retry   httputil.Policy
}

// NewClient creates a Client whose cached responses live under namespace in c.
// Headers are applied to all requests made through this client.
// Pass nil for c to disable caching and nil for headers if none are needed.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	return &Client{
		http:    NewHTTPClient(DefaultTimeout),
		cache:   cache.Scoped(c, namespace),
		ttl:     ttl,
		headers: headers,
		retry:   httputil.Policy{Attempts: defaultRetries, Delay: defaultRetryDelay},
	}
}

// SetTimeout replaces the overall per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.http = NewHTTPClient(d)
}

// SetRetry configures how many attempts [Client.Do] makes and the initial
// backoff between them.
func (c *Client) SetRetry(attempts int, delay time.Duration) {
	c.retry.Attempts = max(attempts, 1)
	c.retry.Delay = delay
}

// Do runs fn with the client's retry policy.
func (c *Client) Do(ctx context.Context, fn func() error) error {
	return c.retry.Do(ctx, fn)
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok && json.Unmarshal(data, v) == nil {
			observability.Cache().OnCacheHit(ctx, key)
			return nil
		}
		observability.Cache().OnCacheMiss(ctx, key)
	}
	if err := c.Do(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, key, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// A body that does not decode into v yields [ErrDecode].
func (c *Client) Get(ctx context.Context, url string, v any) error {
	data, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// GetBytes performs an HTTP GET request and returns the full response body.
// Cancelling ctx aborts both the request and the body read.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, transportError("read body: ", err)
	}
	return data, nil
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, transportError("", err)
	}
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, resp.Header); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// transportError marks a failed exchange as ErrNetwork. Timeouts are not
// retried: the client timeout bounds the whole call, not each attempt.
func transportError(op string, err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %s%w", ErrNetwork, op, err)
	}
	return httputil.Retryable(fmt.Errorf("%w: %s%v", ErrNetwork, op, err))
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout())
}

// checkStatus maps a response status to the client's sentinel errors.
// Throttling (429) is retried after the server's Retry-After wait.
func checkStatus(code int, h http.Header) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return httputil.RetryableAfter(fmt.Errorf("%w: status %d", ErrNetwork, code), httputil.RetryAfter(h))
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
