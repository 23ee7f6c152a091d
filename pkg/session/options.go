package session

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithConfig sets custom configuration
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		if cfg.StorageKey != "" {
			m.cfg.StorageKey = cfg.StorageKey
		}
		if cfg.StalenessWindow > 0 {
			m.cfg.StalenessWindow = cfg.StalenessWindow
		}
	}
}

// WithStalenessWindow sets how long a cached record is trusted without
// a server refresh
func WithStalenessWindow(window time.Duration) Option {
	return func(m *Manager) {
		if window > 0 {
			m.cfg.StalenessWindow = window
		}
	}
}

// WithStorageKey sets the persistence key for the cached record
func WithStorageKey(key string) Option {
	return func(m *Manager) {
		if key != "" {
			m.cfg.StorageKey = key
		}
	}
}

// WithLogger sets the structured logger, ignoring nil for safety
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}
