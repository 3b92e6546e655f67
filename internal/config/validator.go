package config

import "fmt"

// Validate checks that every loaded tunable is within a sane range,
// rejecting a config only when a bound is actually unusable rather
// than merely non-default.
func Validate(cfg *Config) error {
	if cfg.Render.MaxNesting <= 0 {
		return fmt.Errorf("render.max_nesting must be positive, got %d", cfg.Render.MaxNesting)
	}
	if cfg.Render.MaxCacheSize <= 0 {
		return fmt.Errorf("render.max_cache_size must be positive, got %d", cfg.Render.MaxCacheSize)
	}
	if cfg.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", cfg.Cache.MaxEntries)
	}
	if cfg.Cache.MaxMemoryMB <= 0 {
		return fmt.Errorf("cache.max_memory_mb must be positive, got %d", cfg.Cache.MaxMemoryMB)
	}
	if cfg.Cache.MaxDiskMB <= 0 {
		return fmt.Errorf("cache.max_disk_mb must be positive, got %d", cfg.Cache.MaxDiskMB)
	}
	switch cfg.Cache.Policy {
	case "lru", "lfu", "fifo", "ttl", "random":
	default:
		return fmt.Errorf("cache.policy %q is not one of lru|lfu|fifo|ttl|random", cfg.Cache.Policy)
	}
	if cfg.Resolver.MaxSnapshots <= 0 {
		return fmt.Errorf("resolver.max_snapshots must be positive, got %d", cfg.Resolver.MaxSnapshots)
	}
	if cfg.Resolver.ApprovalDeadline <= 0 {
		return fmt.Errorf("resolver.approval_deadline_hours must be positive")
	}
	if cfg.Transport.CircuitBreaker.FailureThreshold <= 0 {
		return fmt.Errorf("transport.circuit_failure_threshold must be positive")
	}
	if cfg.Transport.CircuitBreaker.SuccessThreshold <= 0 {
		return fmt.Errorf("transport.circuit_success_threshold must be positive")
	}
	if cfg.Registry.MaxDepth <= 0 {
		return fmt.Errorf("registry.max_depth must be positive, got %d", cfg.Registry.MaxDepth)
	}
	return nil
}
