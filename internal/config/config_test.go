package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default(t.TempDir())
	require.NoError(t, Validate(cfg))
	assert.Equal(t, 10, cfg.Render.MaxNesting)
	assert.Equal(t, 1000, cfg.Render.MaxCacheSize)
	assert.EqualValues(t, "lru", cfg.Cache.Policy)
}

func TestLoad_NoFile_ReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(dir), cfg)
}

func TestLoad_OverridesRenderAndCache(t *testing.T) {
	dir := t.TempDir()
	kdl := `
render {
    max_nesting 5
    max_cache_size 250
    cache_enabled false
}
cache {
    policy "lfu"
    max_entries 500
    max_memory_mb 32
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(kdl), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Render.MaxNesting)
	assert.Equal(t, 250, cfg.Render.MaxCacheSize)
	assert.False(t, cfg.Render.CacheEnabled)
	assert.EqualValues(t, "lfu", cfg.Cache.Policy)
	assert.Equal(t, 500, cfg.Cache.MaxEntries)
	assert.EqualValues(t, 32, cfg.Cache.MaxMemoryMB)
}

func TestLoad_OverridesTransportBandwidth(t *testing.T) {
	dir := t.TempDir()
	kdl := `
transport {
    bandwidth {
        mobile 1
        wifi 12
    }
    circuit_failure_threshold 3
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(kdl), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Transport.Bandwidth["mobile"])
	assert.Equal(t, 12, cfg.Transport.Bandwidth["wifi"])
	assert.Equal(t, 3, cfg.Transport.CircuitBreaker.FailureThreshold)
}

func TestValidate_RejectsBadPolicy(t *testing.T) {
	cfg := Default(t.TempDir())
	cfg.Cache.Policy = "bogus"
	require.Error(t, Validate(cfg))
}

func TestValidate_RejectsNonPositiveBounds(t *testing.T) {
	cfg := Default(t.TempDir())
	cfg.Render.MaxNesting = 0
	require.Error(t, Validate(cfg))
}
