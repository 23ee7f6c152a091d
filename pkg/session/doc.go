// Package session implements the client-side session cache: a single
// locally persisted record of session identifier, entitlement tier and
// feature flags, kept consistent with the remote identity service.
//
// # Architecture
//
// A Manager mirrors exactly one Record in memory and in a store.Store.
// On Bootstrap it trusts a persisted record younger than the staleness
// window and refreshes an older one. Every mutation (Identify,
// Refresh, SetGroup, Forget) swaps the in-memory record and the
// persisted copy in one critical section, so observers never see a
// torn combination of fields; overlapping mutations resolve to
// whichever response completes last.
//
//	┌──────────┐  identify / refresh / …  ┌─────────────┐
//	│ Embedder │ ───────────────────────► │   Manager   │
//	└──────────┘                           └─────────────┘
//	      ▲ notify                          │         │
//	      └── Subscribe(fn)          API (remote)   store.Store
//
// # Usage
//
//	client, _ := api.New(baseURL, appID)
//	mgr, _ := session.New(client, store.NewMemoryStore(0))
//	mgr.Bootstrap(ctx)
//
//	rec, err := mgr.Identify(ctx, credential, session.IdentifyConfig{})
//	if err != nil {
//	    // only identify surfaces remote failures
//	}
//	_ = rec.Tier
//
// Refresh, SetGroup and Upgrade absorb remote failures: they log and
// return the unchanged cached state. Forget is local, synchronous and
// idempotent.
package session
