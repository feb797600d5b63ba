// Package pkg holds the libraries behind the attack command.
//
// # Overview
//
// The libraries keep a local copy of the MITRE ATT&CK enterprise dataset
// current and answer lookups against it. They fall into three areas:
//
//  1. Data: [attack] parses and normalizes the STIX bundle, [dataset] caches
//     and refreshes it, [registry] lists published releases.
//  2. Lookup: [search] matches queries, [format] renders results, [graph]
//     draws the tactic hierarchy.
//  3. Surfaces: [server] answers lookups over HTTP, [export] copies the
//     collections to MongoDB.
//
// Shared infrastructure lives in [cache], [integrations], [httputil],
// [observability], [config] and [errors].
//
// # Data Flow
//
//	GitHub tag listing
//	         ↓
//	    [registry] (release versions)
//	         ↓
//	    [dataset] (download, cache, fall back)
//	         ↓
//	    [attack] (normalize into a Snapshot)
//	         ↓
//	    [search] / [format] / [graph] / [server] / [export]
//
// # Quick Start
//
//	gh := github.NewClient(github.Options{Cache: cache.NewNullCache()})
//	reg := registry.New(gh)
//	orch := dataset.NewOrchestrator(reg, dataset.NewFetcher(reg, dataset.FetcherOptions{}), dataset.Options{})
//
//	ds, err := orch.CacheData(ctx, dir)
//	if err != nil {
//		return err
//	}
//	snap := attack.NewSnapshot(ds)
//	for _, t := range search.Techniques("powershell", snap, search.DefaultOptions()) {
//		fmt.Println(format.Label(t))
//	}
package pkg
