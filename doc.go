// Package userstack is the Go SDK for the Userstack identity and
// entitlement service. It maintains a locally persisted session record
// (session id, plan tier, feature flags), transparently refreshes it
// when stale, and keeps every mutation consistent between memory and
// storage.
//
// # Client-side usage
//
//	var cfg userstack.Config
//	config.MustLoad(&cfg)
//
//	app, err := userstack.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.Bootstrap(ctx)
//
//	rec, err := app.Identify(ctx, credential, session.IdentifyConfig{TTL: time.Hour})
//	if err != nil {
//	    // show the server's response to the user
//	}
//	if beta, _ := rec.FlagBool("beta"); beta {
//	    // feature gated UI
//	}
//
// # Server-side usage
//
// Trusted backends configure an API key and verify client-presented
// sessions with VerifyMiddleware. Client-side deployments never hold
// the key.
//
// The heavy lifting lives in the sub-packages: pkg/session (the cache
// state machine), pkg/api (the HTTP client) and pkg/store (persistence
// back-ends: memory, file, Redis, MongoDB).
package userstack
