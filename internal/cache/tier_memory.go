package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryTier is the L1 tier: a size- and byte-bounded map with a
// pluggable eviction policy. PolicyLRU delegates directly to
// hashicorp/golang-lru/v2; the other policies are hand-rolled on a
// plain map plus an insertion-order slice.
type MemoryTier struct {
	mu     sync.Mutex
	policy Policy

	maxEntries int
	maxBytes   int64

	// used when policy != PolicyLRU
	entries     map[string]*Entry
	insertOrder []string
	curBytes    int64

	// used when policy == PolicyLRU
	lru *lru.Cache[string, *Entry]

	Hits, Misses, Evictions int64
}

// NewMemoryTier builds an L1 tier bounded by maxEntries and maxBytes,
// evicting per policy when either bound is exceeded.
func NewMemoryTier(policy Policy, maxEntries int, maxBytes int64) *MemoryTier {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	t := &MemoryTier{policy: policy, maxEntries: maxEntries, maxBytes: maxBytes}
	if policy == PolicyLRU {
		c, _ := lru.New[string, *Entry](maxEntries)
		t.lru = c
	} else {
		t.entries = make(map[string]*Entry)
	}
	return t
}

// Get returns the entry for key, promoting it in the access order and
// bumping its access stats, or false if absent or expired (expired
// entries are removed as a side effect).
func (t *MemoryTier) Get(key string, now time.Time) (*Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.lookup(key)
	if !ok {
		t.Misses++
		return nil, false
	}
	if e.IsExpired(now) {
		if t.policy == PolicyLRU {
			t.lru.Remove(key)
		} else {
			t.removeLocked(key)
		}
		t.Misses++
		return nil, false
	}
	e.LastAccess = now
	e.AccessCount++
	if t.policy == PolicyLRU {
		t.lru.Add(key, e) // re-insert promotes to most-recently-used
	}
	t.Hits++
	return e, true
}

func (t *MemoryTier) lookup(key string) (*Entry, bool) {
	if t.policy == PolicyLRU {
		return t.lru.Get(key)
	}
	e, ok := t.entries[key]
	return e, ok
}

// Put inserts or replaces an entry, evicting per policy while either
// bound is exceeded.
func (t *MemoryTier) Put(e *Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.policy == PolicyLRU {
		if t.lru.Add(e.Key, e) {
			t.Evictions++
		}
		for t.maxBytes > 0 {
			var total int64
			for _, k := range t.lru.Keys() {
				if v, ok := t.lru.Peek(k); ok {
					total += v.SizeBytes
				}
			}
			if total <= t.maxBytes {
				break
			}
			if _, _, ok := t.lru.RemoveOldest(); !ok {
				break
			}
			t.Evictions++
		}
		return
	}

	if _, exists := t.entries[e.Key]; !exists {
		t.insertOrder = append(t.insertOrder, e.Key)
	} else {
		t.curBytes -= t.entries[e.Key].SizeBytes
	}
	t.entries[e.Key] = e
	t.curBytes += e.SizeBytes

	for (t.curBytes > t.maxBytes && t.maxBytes > 0) || len(t.entries) > t.maxEntries {
		victim := pickEviction(t.policy, t.entries, t.insertOrder, func(en *Entry) bool { return en.IsExpired(time.Now()) })
		if victim == "" {
			break
		}
		t.removeLocked(victim)
		t.Evictions++
	}
}

// Remove drops key if present.
func (t *MemoryTier) Remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.policy == PolicyLRU {
		t.lru.Remove(key)
		return
	}
	t.removeLocked(key)
}

func (t *MemoryTier) removeLocked(key string) {
	if e, ok := t.entries[key]; ok {
		t.curBytes -= e.SizeBytes
		delete(t.entries, key)
	}
	for i, k := range t.insertOrder {
		if k == key {
			t.insertOrder = append(t.insertOrder[:i], t.insertOrder[i+1:]...)
			break
		}
	}
}

// Clear empties the tier and resets counters.
func (t *MemoryTier) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.policy == PolicyLRU {
		t.lru.Purge()
	} else {
		t.entries = make(map[string]*Entry)
		t.insertOrder = nil
		t.curBytes = 0
	}
	t.Hits, t.Misses, t.Evictions = 0, 0, 0
}

// Keys returns every live key in the tier, in no particular order.
func (t *MemoryTier) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.policy == PolicyLRU {
		return t.lru.Keys()
	}
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	return keys
}

// Len reports the current live entry count.
func (t *MemoryTier) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.policy == PolicyLRU {
		return t.lru.Len()
	}
	return len(t.entries)
}

// Sweep removes every expired entry, returning how many were removed.
func (t *MemoryTier) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	if t.policy == PolicyLRU {
		for _, k := range t.lru.Keys() {
			if e, ok := t.lru.Peek(k); ok && e.IsExpired(now) {
				t.lru.Remove(k)
				removed++
			}
		}
		return removed
	}
	for _, k := range append([]string(nil), t.insertOrder...) {
		if e, ok := t.entries[k]; ok && e.IsExpired(now) {
			t.removeLocked(k)
			removed++
		}
	}
	return removed
}
