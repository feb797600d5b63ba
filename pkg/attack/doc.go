// Package attack parses the ATT&CK STIX bundle and normalizes it into flat,
// ordered entity collections.
//
// # Pipeline
//
// A dataset file is decoded once by [Parse]. Each raw [Object] has its kind
// resolved at that point, so the per-kind initializers ([InitTactics],
// [InitTechniques], [InitGroups], [InitSoftware], [InitMitigations]) only
// filter on [Kind]:
//
//	ds, err := attack.Parse(data)
//	techniques := attack.InitTechniques(ds)
//
// Every entity takes its identifier and URL from the first external reference
// whose source name is [SourceName]. When there is none, both stay [Unknown];
// such entities are kept but cannot be found by identifier.
//
// # Snapshots
//
// [NewSnapshot] builds all five collections plus lookup indexes. A snapshot is
// never modified after it is built. [Store] publishes the current snapshot
// to concurrent readers and replaces it wholesale on reload:
//
//	var store attack.Store
//	store.Swap(attack.NewSnapshot(ds))
//	snap := store.Load()
//
// Sub-techniques point at their parent technique through a non-owning
// pointer assigned after the whole technique collection exists. A missing
// parent leaves [Technique.Parent] nil; that is not an error.
package attack
