// Package timeouts provides centralized context deadlines for handler
// operations.
//
// Guidelines:
//   - Ping: health checks
//   - Short: single-document reads
//   - Medium: list queries, simple writes
//   - Long: multi-collection writes (registration, context versioning)
package timeouts

import (
	"sync"
	"time"
)

// Defaults, used unless Configure is called.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
)

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration { mu.RLock(); defer mu.RUnlock(); return ping }

// Short returns the timeout for single-document operations.
func Short() time.Duration { mu.RLock(); defer mu.RUnlock(); return short }

// Medium returns the timeout for list queries and simple writes.
func Medium() time.Duration { mu.RLock(); defer mu.RUnlock(); return medium }

// Long returns the timeout for multi-collection writes.
func Long() time.Duration { mu.RLock(); defer mu.RUnlock(); return long }

// Config holds override values; zero values keep the current setting.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Configure applies overrides. Call during startup, before handlers run.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
}

// Reset restores defaults. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping, short, medium, long = DefaultPing, DefaultShort, DefaultMedium, DefaultLong
}
