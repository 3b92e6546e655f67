// Package metrics exposes the cache engine's tier statistics and the
// resolver's resolution/update counters as Prometheus gauges and
// counters, served over a dedicated promhttp.Handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/standardbeagle/tmplctl/internal/cache"
)

// Registry wraps a dedicated prometheus.Registry so a test process can
// construct many independent Registries without colliding on the
// default global one.
type Registry struct {
	reg *prometheus.Registry

	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheEntries   *prometheus.GaugeVec
	cacheSize      *prometheus.GaugeVec
	cacheEvictions *prometheus.CounterVec

	resolutions      prometheus.Counter
	resolveConflicts prometheus.Counter
	updatesAvailable *prometheus.CounterVec
}

// New builds a Registry with every metric registered.
func New() *Registry {
	reg := prometheus.NewRegistry()
	m := &Registry{
		reg: reg,
		cacheHits: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "tmplctl",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache hits by tier.",
		}, []string{"tier"}),
		cacheMisses: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "tmplctl",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache misses by tier.",
		}, []string{"tier"}),
		cacheEntries: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tmplctl",
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Current entry count by tier.",
		}, []string{"tier"}),
		cacheSize: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tmplctl",
			Subsystem: "cache",
			Name:      "size_bytes",
			Help:      "Current occupied bytes by tier.",
		}, []string{"tier"}),
		cacheEvictions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "tmplctl",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Evictions by tier.",
		}, []string{"tier"}),
		resolutions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "tmplctl",
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Completed dependency resolutions.",
		}),
		resolveConflicts: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "tmplctl",
			Subsystem: "resolver",
			Name:      "conflicts_total",
			Help:      "Unsatisfiable-constraint conflicts surfaced across all resolutions.",
		}),
		updatesAvailable: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "tmplctl",
			Subsystem: "resolver",
			Name:      "updates_available_total",
			Help:      "Available updates found, by update type.",
		}, []string{"update_type"}),
	}
	return m
}

// Handler returns the http.Handler serving this Registry's metrics in
// the Prometheus exposition format.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// ObserveCacheStats snapshots an engine's Stats into the gauges and
// counters, called after every cache operation batch (e.g. once per
// CLI command invocation, since this is not a long-lived server).
func (m *Registry) ObserveCacheStats(stats cache.Stats) {
	m.observeTier("memory", stats.Memory)
	m.observeTier("disk", stats.Disk)
	m.observeTier("cdn", stats.CDN)
}

func (m *Registry) observeTier(tier string, s cache.TierStats) {
	m.cacheHits.WithLabelValues(tier).Add(float64(s.Hits))
	m.cacheMisses.WithLabelValues(tier).Add(float64(s.Misses))
	m.cacheEntries.WithLabelValues(tier).Set(float64(s.Entries))
	m.cacheSize.WithLabelValues(tier).Set(float64(s.Size))
	m.cacheEvictions.WithLabelValues(tier).Add(float64(s.Evictions))
}

// ObserveResolution records one resolve() call's outcome.
func (m *Registry) ObserveResolution(conflictCount int) {
	m.resolutions.Inc()
	m.resolveConflicts.Add(float64(conflictCount))
}

// ObserveUpdate records one available update found by a given type
// (major|minor|patch|prerelease).
func (m *Registry) ObserveUpdate(updateType string) {
	m.updatesAvailable.WithLabelValues(updateType).Inc()
}
