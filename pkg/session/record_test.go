package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userstack/userstack-go/pkg/session"
)

func TestRecord(t *testing.T) {
	t.Parallel()

	t.Run("anonymous invariant", func(t *testing.T) {
		t.Parallel()

		rec := session.Anonymous()
		assert.True(t, rec.IsAnonymous())
		assert.Equal(t, session.TierNone, rec.Tier)
		assert.Empty(t, rec.Flags)
	})

	t.Run("encode decode round-trip", func(t *testing.T) {
		t.Parallel()

		original := session.Record{
			SessionID: "s1",
			Tier:      "pro",
			Flags:     map[string]any{"beta": true, "limit": float64(10), "theme": "dark"},
			FetchedAt: time.Now().UnixMilli(),
		}

		data, err := original.Encode()
		require.NoError(t, err)

		decoded, err := session.DecodeRecord(data)
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	})

	t.Run("malformed data yields ErrMalformedRecord", func(t *testing.T) {
		t.Parallel()

		_, err := session.DecodeRecord([]byte("not json at all"))
		assert.ErrorIs(t, err, session.ErrMalformedRecord)
	})

	t.Run("staleness boundary", func(t *testing.T) {
		t.Parallel()

		// Millisecond-aligned clock so age computes exactly against
		// the millisecond-resolution FetchedAt.
		now := time.UnixMilli(time.Now().UnixMilli())
		window := 90 * time.Second

		fresh := session.Record{FetchedAt: now.Add(-window + time.Millisecond).UnixMilli()}
		assert.False(t, fresh.Stale(window, now))
		assert.Equal(t, window-time.Millisecond, fresh.Age(now))

		exact := session.Record{FetchedAt: now.Add(-window).UnixMilli()}
		assert.True(t, exact.Stale(window, now))
		assert.Equal(t, window, exact.Age(now))

		stale := session.Record{FetchedAt: now.Add(-window - time.Millisecond).UnixMilli()}
		assert.True(t, stale.Stale(window, now))
	})

	t.Run("flag accessors", func(t *testing.T) {
		t.Parallel()

		rec := session.Record{Flags: map[string]any{
			"beta":  true,
			"theme": "dark",
			"seats": float64(5),
		}}

		b, ok := rec.FlagBool("beta")
		assert.True(t, ok)
		assert.True(t, b)

		s, ok := rec.FlagString("theme")
		assert.True(t, ok)
		assert.Equal(t, "dark", s)

		n, ok := rec.FlagNumber("seats")
		assert.True(t, ok)
		assert.Equal(t, float64(5), n)

		_, ok = rec.FlagBool("missing")
		assert.False(t, ok)

		// Wrong type reads fail closed.
		_, ok = rec.FlagBool("theme")
		assert.False(t, ok)
	})
}
