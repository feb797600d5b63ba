// Package dataset keeps a local cache of the ATT&CK dataset current.
//
// The cache is a directory of files named "<dataset>.<version>.json", for
// example "enterprise-attack.8.0.json". Old versions are never evicted; the
// newest file by numeric version comparison is the one in use.
//
// # Components
//
//   - [Fetcher] downloads one release and persists it.
//   - [LatestCached] and [ListCached] inspect the cache directory.
//   - [Orchestrator] decides between reusing, updating and falling back.
//
// [Orchestrator.CacheData] is the entry point:
//
//	reg := registry.New(github.NewClient(github.Options{}))
//	orch := dataset.NewOrchestrator(reg, dataset.NewFetcher(reg, dataset.FetcherOptions{}), dataset.Options{})
//	ds, err := orch.CacheData(ctx, dir)
//
// When the registry cannot be reached and a cached file exists, CacheData
// returns the cached dataset and tells the [Notifier] that it could not be
// verified as current. Only a run with no usable cache fails outright.
//
// # Cancellation
//
// Every operation takes a context. A cancelled download never writes to the
// cache directory, and files are written through a temporary file and a
// rename so readers never see a partial dataset.
package dataset
