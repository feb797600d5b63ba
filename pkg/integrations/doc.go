// Package integrations provides the HTTP plumbing shared by remote clients.
//
// # Overview
//
// [Client] wraps net/http with:
//   - a bounded timeout ([DefaultTimeout] unless configured)
//   - context cancellation on every request
//   - status mapping: 404 to [ErrNotFound], 5xx and transport failures to a
//     retryable [ErrNetwork]
//   - optional response caching through [cache.Cache]
//   - HTTP events reported to [observability.HTTP]
//
// Remote-specific clients live in subpackages:
//
//   - [github]: tag listing for the ATT&CK data repository
//
// # Client Pattern
//
//	gh := github.NewClient(github.Options{Cache: c, CacheTTL: time.Hour})
//	tags, err := gh.ListTags(ctx, "mitre", "cti", false)  // false = use cache
//
// [github]: github.com/redcanaryco/vscode-attack/pkg/integrations/github
// [cache.Cache]: github.com/redcanaryco/vscode-attack/pkg/cache.Cache
// [observability.HTTP]: github.com/redcanaryco/vscode-attack/pkg/observability.HTTP
package integrations
