// Package httputil holds the retry policy shared by the registry and dataset
// clients.
//
// Only failures marked with [Retryable] or [RetryableAfter] are retried. The
// shared client marks connection errors, 5xx responses and 429 throttling;
// for 429 the server's Retry-After wait replaces the backoff delay once:
//
//	p := httputil.Policy{Attempts: 3, Delay: 500 * time.Millisecond}
//	err := p.Do(ctx, fetchTags)
//
// A cancelled context stops the loop at the next wait and returns ctx.Err().
package httputil
