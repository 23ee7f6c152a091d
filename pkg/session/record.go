package session

import (
	"encoding/json"
	"errors"
	"maps"
	"time"
)

// TierNone is the tier label carried by the anonymous record.
const TierNone = "none"

// Record is the cached unit of truth synchronized with the remote
// service: session identifier, entitlement tier and feature flags.
// FetchedAt records when the client last obtained the record from the
// server (milliseconds since epoch), not when the server computed the
// underlying entitlement.
type Record struct {
	SessionID string         `json:"sessionId"`
	Tier      string         `json:"tier"`
	Flags     map[string]any `json:"flags,omitempty"`
	FetchedAt int64          `json:"fetchedAt"`
}

// Anonymous returns the record representing "no active session".
func Anonymous() Record {
	return Record{Tier: TierNone, Flags: map[string]any{}}
}

// IsAnonymous reports whether the record carries no session.
func (r Record) IsAnonymous() bool {
	return r.SessionID == ""
}

// Age returns how long ago the record was fetched, relative to now.
func (r Record) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(r.FetchedAt))
}

// Stale reports whether the record is older than the given window.
func (r Record) Stale(window time.Duration, now time.Time) bool {
	return r.Age(now) >= window
}

// FlagBool retrieves a boolean feature flag value.
func (r Record) FlagBool(name string) (bool, bool) {
	v, ok := r.Flags[name]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// FlagString retrieves a string feature flag value.
func (r Record) FlagString(name string) (string, bool) {
	v, ok := r.Flags[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// FlagNumber retrieves a numeric feature flag value.
func (r Record) FlagNumber(name string) (float64, bool) {
	v, ok := r.Flags[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// clone returns a deep copy so callers can never mutate the manager's
// current record through the flags map.
func (r Record) clone() Record {
	out := r
	if r.Flags != nil {
		out.Flags = make(map[string]any, len(r.Flags))
		maps.Copy(out.Flags, r.Flags)
	}
	return out
}

// Encode serializes the record for persistence.
func (r Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRecord parses a persisted record. Unparsable content yields
// ErrMalformedRecord; callers treat that as "absent".
func DecodeRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, errors.Join(ErrMalformedRecord, err)
	}
	if r.Flags == nil {
		r.Flags = map[string]any{}
	}
	return r, nil
}
