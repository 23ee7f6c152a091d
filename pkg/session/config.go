package session

import "time"

// UnlimitedTTL is the retention horizon used when a mutation carries no
// explicit TTL: effectively forever, capped so storage back-ends still
// receive a concrete expiry.
const UnlimitedTTL = 100 * 365 * 24 * time.Hour

// Config holds session cache configuration
type Config struct {
	// StorageKey is the persistence key for the cached record
	StorageKey string `env:"USERSTACK_STORAGE_KEY" envDefault:"_us_session"`

	// StalenessWindow is how long a cached record is trusted without a
	// server refresh. Observed deployments use 60-120s.
	StalenessWindow time.Duration `env:"USERSTACK_STALENESS_WINDOW" envDefault:"90s"`
}

// DefaultConfig returns default session cache configuration
func DefaultConfig() Config {
	return Config{
		StorageKey:      "_us_session",
		StalenessWindow: 90 * time.Second,
	}
}
