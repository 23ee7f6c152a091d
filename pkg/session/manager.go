package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/userstack/userstack-go/pkg/store"
)

// IdentifyConfig carries optional parameters for an identify call.
type IdentifyConfig struct {
	// TTL bounds how long the resulting record is retained by the
	// persistence layer. Zero means effectively unlimited retention.
	TTL       time.Duration
	GroupID   string
	GroupName string
	Data      map[string]any
}

// API is the remote session service contract the manager drives.
// Implemented by api.Client.
type API interface {
	Identify(ctx context.Context, credential string, cfg IdentifyConfig) (Record, error)
	Refresh(ctx context.Context, sessionID string) (Record, error)
	SetGroup(ctx context.Context, sessionID, groupID string) (Record, error)
	Upgrade(ctx context.Context, sessionID, planID, successURL, cancelURL string) (string, error)
}

// Manager owns the single cached session record: the in-memory mirror,
// its persisted copy, and the rules for when the cache is trusted
// versus refreshed. All mutations adopt server responses whole-record
// under one mutex, so callers never observe a torn combination of
// session id, tier and flags; when mutations overlap, the response
// that completes last wins.
//
// Failure posture follows the remote contract: only Identify surfaces
// its error to the caller. Refresh, SetGroup and Upgrade absorb
// failures — they log and leave the cached state untouched.
type Manager struct {
	api   API
	store store.Store
	cfg   Config
	log   *slog.Logger

	mu      sync.Mutex
	current Record

	subs subscriberSet
}

// New creates a session cache manager over the given remote client and
// persistence store. The manager starts in the anonymous state; call
// Bootstrap to adopt a previously persisted record.
func New(api API, st store.Store, opts ...Option) (*Manager, error) {
	if api == nil {
		return nil, ErrNoAPI
	}
	if st == nil {
		return nil, ErrNoStore
	}

	m := &Manager{
		api:     api,
		store:   st,
		cfg:     DefaultConfig(),
		log:     slog.Default(),
		current: Anonymous(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Bootstrap loads the persisted record, adopts it directly when fresh,
// and attempts one refresh when stale. A failed refresh still adopts
// the stale record (best-effort answer, failure logged) so callers see
// available-but-possibly-outdated state rather than dropping to
// anonymous; its original fetch time is kept, so a later refresh still
// sees it as stale.
func (m *Manager) Bootstrap(ctx context.Context) Record {
	stored, ok := m.loadStored(ctx)
	if !ok {
		return m.Current()
	}

	if !stored.Stale(m.cfg.StalenessWindow, time.Now()) {
		return m.adoptStored(stored)
	}

	rec, err := m.api.Refresh(ctx, stored.SessionID)
	if err != nil {
		m.log.WarnContext(ctx, "bootstrap refresh failed, serving stale record",
			"session_id", stored.SessionID,
			"age", stored.Age(time.Now()),
			"error", err)
		return m.adoptStored(stored)
	}

	return m.adopt(ctx, rec, UnlimitedTTL)
}

// Identify exchanges a credential for a fresh session record. It is
// always a network round trip regardless of current state, and it is
// the one operation whose failure is returned to the caller: the
// embedding application is actively blocked on it and needs the server
// response to display.
func (m *Manager) Identify(ctx context.Context, credential string, cfg IdentifyConfig) (Record, error) {
	rec, err := m.api.Identify(ctx, credential, cfg)
	if err != nil {
		m.log.ErrorContext(ctx, "identify failed", "error", err)
		return m.Current(), err
	}

	ttl := UnlimitedTTL
	if cfg.TTL > 0 {
		ttl = cfg.TTL
	}

	return m.adopt(ctx, rec, ttl), nil
}

// Refresh re-fetches the current session's record from the server.
// Safe to call opportunistically: failures are logged and absorbed,
// leaving the prior state untouched. With no known session it is a
// no-op.
func (m *Manager) Refresh(ctx context.Context) Record {
	sessionID := m.SessionID()
	if sessionID == "" {
		m.log.DebugContext(ctx, "refresh skipped: no active session")
		return m.Current()
	}

	rec, err := m.api.Refresh(ctx, sessionID)
	if err != nil {
		m.log.WarnContext(ctx, "refresh failed, keeping cached record",
			"session_id", sessionID, "error", err)
		return m.Current()
	}

	return m.adopt(ctx, rec, UnlimitedTTL)
}

// SetGroup assigns the session to a group. The session id is taken
// from the in-memory state, falling back to the persisted record;
// with neither available the call is a logged no-op rather than an
// error, since embedders may call it speculatively. Failures are
// logged and absorbed.
func (m *Manager) SetGroup(ctx context.Context, groupID string) Record {
	sessionID := m.SessionID()
	if sessionID == "" {
		if stored, ok := m.loadStored(ctx); ok {
			sessionID = stored.SessionID
		}
	}
	if sessionID == "" {
		m.log.InfoContext(ctx, "setgroup skipped: no session", "group_id", groupID)
		return m.Current()
	}

	rec, err := m.api.SetGroup(ctx, sessionID, groupID)
	if err != nil {
		m.log.WarnContext(ctx, "setgroup failed, keeping cached record",
			"session_id", sessionID, "group_id", groupID, "error", err)
		return m.Current()
	}

	return m.adopt(ctx, rec, UnlimitedTTL)
}

// Upgrade starts a plan upgrade and returns the checkout redirect URL,
// or "" when there is nothing to do. A missing session id or plan id
// is a logged local no-op with no network call. The cached record is
// never mutated here: the entitlement change lands server-side and
// arrives via a later identify or refresh.
func (m *Manager) Upgrade(ctx context.Context, planID, successURL, cancelURL string) string {
	sessionID := m.SessionID()
	if sessionID == "" || planID == "" {
		m.log.InfoContext(ctx, "upgrade skipped: missing session or plan",
			"has_session", sessionID != "", "plan_id", planID)
		return ""
	}

	redirectURL, err := m.api.Upgrade(ctx, sessionID, planID, successURL, cancelURL)
	if err != nil {
		m.log.WarnContext(ctx, "upgrade failed", "session_id", sessionID,
			"plan_id", planID, "error", err)
		return ""
	}

	return redirectURL
}

// Forget clears the persisted record and resets the cache to the
// anonymous state. Local and synchronous, never a network call, and
// idempotent.
func (m *Manager) Forget(ctx context.Context) {
	m.mu.Lock()
	if err := m.store.Remove(ctx, m.cfg.StorageKey); err != nil {
		m.log.WarnContext(ctx, "failed to clear persisted session", "error", err)
	}
	anon := Anonymous()
	m.current = anon
	m.mu.Unlock()

	m.subs.notify(anon)
}

// Current returns a copy of the cached record.
func (m *Manager) Current() Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.clone()
}

// SessionID returns the cached session identifier ("" when anonymous).
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.SessionID
}

// Tier returns the cached entitlement tier.
func (m *Manager) Tier() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Tier
}

// Flags returns a copy of the cached feature flags.
func (m *Manager) Flags() map[string]any {
	return m.Current().Flags
}

// Stale reports whether the cached record is outside the staleness
// window (anonymous records are never stale to refresh).
func (m *Manager) Stale() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.current.IsAnonymous() && m.current.Stale(m.cfg.StalenessWindow, time.Now())
}

// Subscribe registers a callback invoked synchronously after every
// atomic state swap. The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Record)) func() {
	return m.subs.add(fn)
}

// adopt makes a server response the new cached truth: whole-record
// replacement, FetchedAt stamped at adoption time, memory and
// persisted copy swapped in the same critical section.
func (m *Manager) adopt(ctx context.Context, rec Record, ttl time.Duration) Record {
	rec = rec.clone()
	if rec.Flags == nil {
		rec.Flags = map[string]any{}
	}

	m.mu.Lock()
	rec.FetchedAt = time.Now().UnixMilli()
	if rec.FetchedAt < m.current.FetchedAt {
		// Clock went backwards; never backdate staleness.
		rec.FetchedAt = m.current.FetchedAt
	}

	if data, err := rec.Encode(); err != nil {
		m.log.ErrorContext(ctx, "failed to encode session record", "error", err)
	} else if err := m.store.Save(ctx, m.cfg.StorageKey, data, ttl); err != nil {
		m.log.WarnContext(ctx, "failed to persist session record", "error", err)
	}

	m.current = rec
	m.mu.Unlock()

	m.subs.notify(rec)
	return rec.clone()
}

// adoptStored installs a record read back from persistence. Unlike
// adopt it keeps the record's original FetchedAt and does not write it
// back, and it never replaces a newer in-memory record (a concurrent
// identify may already have completed).
func (m *Manager) adoptStored(stored Record) Record {
	m.mu.Lock()
	if stored.FetchedAt < m.current.FetchedAt {
		current := m.current.clone()
		m.mu.Unlock()
		return current
	}
	m.current = stored.clone()
	m.mu.Unlock()

	m.subs.notify(stored)
	return stored.clone()
}

// loadStored reads and decodes the persisted record. Absence, expiry
// and malformed content all come back as (Record{}, false): the
// persistence layer always fails open to anonymous.
func (m *Manager) loadStored(ctx context.Context) (Record, bool) {
	data, err := m.store.Load(ctx, m.cfg.StorageKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.WarnContext(ctx, "failed to load persisted session", "error", err)
		}
		return Record{}, false
	}

	rec, err := DecodeRecord(data)
	if err != nil {
		m.log.WarnContext(ctx, "discarding malformed persisted session", "error", err)
		_ = m.store.Remove(ctx, m.cfg.StorageKey)
		return Record{}, false
	}

	if rec.SessionID == "" {
		return Record{}, false
	}

	return rec, true
}
