package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tmplctl/internal/cache"
)

func TestObserveCacheStats_ExposedOnHandler(t *testing.T) {
	m := New()
	m.ObserveCacheStats(cache.Stats{
		Memory: cache.TierStats{Hits: 3, Misses: 1, Entries: 2, Size: 128},
	})

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `tmplctl_cache_hits_total{tier="memory"} 3`)
	assert.Contains(t, body, `tmplctl_cache_entries{tier="memory"} 2`)
}

func TestObserveResolutionAndUpdate(t *testing.T) {
	m := New()
	m.ObserveResolution(2)
	m.ObserveUpdate("major")
	m.ObserveUpdate("major")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)
	body := rec.Body.String()

	assert.True(t, strings.Contains(body, "tmplctl_resolver_resolutions_total 1"))
	assert.True(t, strings.Contains(body, "tmplctl_resolver_conflicts_total 2"))
	assert.True(t, strings.Contains(body, `tmplctl_resolver_updates_available_total{update_type="major"} 2`))
}
