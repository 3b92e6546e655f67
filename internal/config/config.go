// Package config loads and validates tmplctl's tunables: every
// numeric bound and timeout the renderer, cache, resolver, and
// transport layers need (max_nesting, cache sizes, bandwidth caps,
// circuit-breaker thresholds, approval deadlines), defaulted and then
// overridden from a project `.tmplctl.kdl` file.
package config

import (
	"path/filepath"
	"time"

	"github.com/standardbeagle/tmplctl/internal/cache"
	"github.com/standardbeagle/tmplctl/internal/transport"
)

// Render bundles the template renderer's tunables.
type Render struct {
	MaxNesting    int
	MaxCacheSize  int
	CacheEnabled  bool
}

// Cache bundles the cache engine's tunables.
type Cache struct {
	Policy        cache.Policy
	MaxEntries    int
	MaxMemoryMB   int64
	MaxDiskMB     int64
	DiskDir       string
	SweepInterval time.Duration
}

// Resolver bundles the resolver/lifecycle tunables.
type Resolver struct {
	MaxSnapshots     int
	SnapshotDir      string
	ApprovalDeadline time.Duration
}

// Transport bundles the bandwidth/circuit-breaker tunables.
type Transport struct {
	Bandwidth      transport.BandwidthCaps
	CircuitBreaker transport.CircuitBreakerConfig
	WakeInterval   time.Duration
}

// Registry bundles template discovery tunables.
type Registry struct {
	Root     string
	MaxDepth int
}

// Config is the root tmplctl configuration, one section per concern.
type Config struct {
	Render    Render
	Cache     Cache
	Resolver  Resolver
	Transport Transport
	Registry  Registry
}

// Default returns the built-in tunable values for a fresh project,
// rooted at projectRoot.
func Default(projectRoot string) *Config {
	bw := make(transport.BandwidthCaps, len(transport.DefaultBandwidthCaps))
	for k, v := range transport.DefaultBandwidthCaps {
		bw[k] = v
	}
	return &Config{
		Render: Render{
			MaxNesting:   10,
			MaxCacheSize: 1000,
			CacheEnabled: true,
		},
		Cache: Cache{
			Policy:        cache.PolicyLRU,
			MaxEntries:    10000,
			MaxMemoryMB:   64,
			MaxDiskMB:     512,
			DiskDir:       filepath.Join(projectRoot, ".tmplctl", "cache"),
			SweepInterval: time.Hour,
		},
		Resolver: Resolver{
			MaxSnapshots:     5,
			SnapshotDir:      filepath.Join(projectRoot, ".tmplctl", "snapshots"),
			ApprovalDeadline: 7 * 24 * time.Hour,
		},
		Transport: Transport{
			Bandwidth:      bw,
			CircuitBreaker: transport.DefaultCircuitBreakerConfig,
			WakeInterval:   transport.DefaultWakeInterval,
		},
		Registry: Registry{
			Root:     projectRoot,
			MaxDepth: 6,
		},
	}
}
