package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/standardbeagle/tmplctl/internal/errors"
)

// DefaultSweepInterval is the periodic TTL cleanup cadence.
const DefaultSweepInterval = time.Hour

// DefaultTTL is applied to entries synthesized from an L3 hit.
const DefaultTTL = 24 * time.Hour

// prewarmConcurrency bounds how many prewarm fetches run at once.
const prewarmConcurrency = 8

// RelatedFunc looks up keys related to a given key, used to prefetch
// likely-next entries after a put.
type RelatedFunc func(key string) []string

// Engine orchestrates the three tiers behind a single get/put/remove
// surface.
type Engine struct {
	mu sync.Mutex

	Memory *MemoryTier
	Disk   *DiskTier
	Remote *RemoteTier

	Related RelatedFunc

	stopSweep chan struct{}
}

// Config bundles the engine's tunables.
type Config struct {
	Policy     Policy
	MaxEntries int
	MaxBytes   int64
	DiskDir    string
	Remote     RemoteSource
}

// NewEngine builds a cache engine; DiskDir empty disables L2.
func NewEngine(cfg Config) (*Engine, error) {
	e := &Engine{
		Memory: NewMemoryTier(cfg.Policy, cfg.MaxEntries, cfg.MaxBytes),
		Remote: NewRemoteTier(cfg.Remote),
	}
	if cfg.DiskDir != "" {
		d, err := NewDiskTier(cfg.DiskDir)
		if err != nil {
			return nil, err
		}
		e.Disk = d
	}
	return e, nil
}

// Get reads key from L1, falling through to L2 then L3 on a miss,
// promoting any hit from a slower tier back into L1.
func (e *Engine) Get(ctx context.Context, key string) ([]byte, bool, error) {
	now := time.Now()

	if entry, ok := e.Memory.Get(key, now); ok {
		return entry.Data, true, nil
	}

	if e.Disk != nil {
		if entry, ok := e.Disk.Get(key); ok {
			e.Memory.Put(entry)
			return entry.Data, true, nil
		}
	}

	if e.Remote != nil {
		select {
		case <-ctx.Done():
			return nil, false, apperrors.NewTransportError(apperrors.KindCancelled, key, ctx.Err())
		default:
		}
		data, contentType, ok, err := e.Remote.Fetch(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			entry := &Entry{
				Key:         key,
				Data:        data,
				CreatedAt:   now,
				TTL:         DefaultTTL,
				ContentType: contentType,
				SizeBytes:   int64(len(data)),
			}
			e.Memory.Put(entry)
			if e.Disk != nil {
				e.Disk.Put(entry)
			}
			return data, true, nil
		}
	}

	return nil, false, nil
}

// Put inserts a value across L1 and L2, storing opts.ETag with the
// entry, and enqueues any related keys for prefetch. Neither Put nor
// Get checks the data against the ETag; DiskTier.VerifyIntegrity does
// that check and the engine does not call it.
func (e *Engine) Put(key string, data []byte, opts PutOptions) error {
	entry := &Entry{
		Key:         key,
		Data:        data,
		CreatedAt:   time.Now(),
		TTL:         opts.TTL,
		ETag:        opts.ETag,
		ContentType: opts.ContentType,
		Compression: opts.Compression,
		SizeBytes:   int64(len(data)),
	}
	if entry.Compression == "" {
		entry.Compression = CompressionNone
	}

	e.Memory.Put(entry)
	if e.Disk != nil {
		if err := e.Disk.Put(entry); err != nil {
			return err
		}
	}

	if e.Related != nil {
		go e.prefetchRelated(key)
	}
	return nil
}

func (e *Engine) prefetchRelated(key string) {
	keys := e.Related(key)
	if len(keys) == 0 {
		return
	}
	ctx := context.Background()
	e.Prewarm(ctx, keys)
}

// Remove drops key from every tier.
func (e *Engine) Remove(key string) {
	e.Memory.Remove(key)
	if e.Disk != nil {
		e.Disk.Remove(key)
	}
}

// Clear empties L1 and L2. L3 is stateless to the engine.
func (e *Engine) Clear() error {
	e.Memory.Clear()
	if e.Disk != nil {
		return e.Disk.Clear()
	}
	return nil
}

// Prewarm fetches each key through Get concurrently, bounded by
// prewarmConcurrency.
func (e *Engine) Prewarm(ctx context.Context, keys []string) error {
	sem := semaphore.NewWeighted(prewarmConcurrency)
	g, gctx := errgroup.WithContext(ctx)
	for _, k := range keys {
		k := k
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			_, _, err := e.Get(gctx, k)
			return err
		})
	}
	return g.Wait()
}

// Keys lists live keys, optionally restricted to one tier ("memory" or
// "disk"). "disk" yields nil because disk file names are hashes, so an
// empty tier lists the memory keys.
func (e *Engine) Keys(tier string) []string {
	switch tier {
	case "memory":
		return e.Memory.Keys()
	case "disk":
		return e.diskKeys()
	default:
		seen := make(map[string]struct{})
		var all []string
		for _, k := range e.Memory.Keys() {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				all = append(all, k)
			}
		}
		return all
	}
}

func (e *Engine) diskKeys() []string {
	// The disk tier names files by sha256(key), which is not
	// reversible; disk-tier enumeration is intentionally unsupported
	// beyond membership checks performed through Get.
	return nil
}

// Stats reports the {memory, disk, cdn, overall} snapshot.
func (e *Engine) Stats() Stats {
	var s Stats
	s.Memory = TierStats{
		Hits: e.Memory.Hits, Misses: e.Memory.Misses,
		HitRate: hitRate(e.Memory.Hits, e.Memory.Misses),
		Entries: e.Memory.Len(), Evictions: e.Memory.Evictions,
	}
	if e.Disk != nil {
		s.Disk = TierStats{Hits: e.Disk.Hits, Misses: e.Disk.Misses, HitRate: hitRate(e.Disk.Hits, e.Disk.Misses)}
	}
	if e.Remote != nil {
		s.CDN = TierStats{Hits: e.Remote.Hits, Misses: e.Remote.Misses, HitRate: hitRate(e.Remote.Hits, e.Remote.Misses)}
	}
	s.Overall.TotalHits = s.Memory.Hits + s.Disk.Hits + s.CDN.Hits
	s.Overall.TotalMisses = s.Memory.Misses + s.Disk.Misses + s.CDN.Misses
	s.Overall.OverallHitRate = hitRate(s.Overall.TotalHits, s.Overall.TotalMisses)
	return s
}

// StartSweep launches the periodic TTL cleanup goroutine. Call
// StopSweep to stop it.
func (e *Engine) StartSweep(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	e.stopSweep = make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				now := time.Now()
				e.Memory.Sweep(now)
				if e.Disk != nil {
					e.Disk.Sweep(now)
				}
			case <-e.stopSweep:
				return
			}
		}
	}()
}

// StopSweep halts a previously started sweep goroutine.
func (e *Engine) StopSweep() {
	if e.stopSweep != nil {
		close(e.stopSweep)
		e.stopSweep = nil
	}
}

