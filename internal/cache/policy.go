package cache

import "math/rand"

// Policy names an L1 eviction strategy.
type Policy string

const (
	PolicyLRU    Policy = "lru"
	PolicyLFU    Policy = "lfu"
	PolicyFIFO   Policy = "fifo"
	PolicyTTL    Policy = "ttl"
	PolicyRandom Policy = "random"
)

// pickEviction selects the eviction victim for policy among entries,
// given insertOrder (oldest-inserted first, for FIFO) and a function
// reporting whether an entry is expired (for TTL, with LRU fallback).
func pickEviction(policy Policy, entries map[string]*Entry, insertOrder []string, expired func(*Entry) bool) string {
	switch policy {
	case PolicyFIFO:
		for _, k := range insertOrder {
			if _, ok := entries[k]; ok {
				return k
			}
		}
	case PolicyLFU:
		var best string
		var bestCount int64 = -1
		var bestAccess int64
		for i, k := range insertOrder {
			e, ok := entries[k]
			if !ok {
				continue
			}
			if bestCount == -1 || e.AccessCount < bestCount || (e.AccessCount == bestCount && int64(i) < bestAccess) {
				best, bestCount, bestAccess = k, e.AccessCount, int64(i)
			}
		}
		return best
	case PolicyTTL:
		var best string
		var bestExpiry int64 = -1
		for _, k := range insertOrder {
			e, ok := entries[k]
			if !ok || !expired(e) {
				continue
			}
			expiry := e.CreatedAt.Add(e.TTL).UnixNano()
			if bestExpiry == -1 || expiry < bestExpiry {
				best, bestExpiry = k, expiry
			}
		}
		if best != "" {
			return best
		}
		// no expired entries: fall back to LRU (oldest LastAccess)
		return lruVictim(entries, insertOrder)
	case PolicyRandom:
		live := make([]string, 0, len(entries))
		for _, k := range insertOrder {
			if _, ok := entries[k]; ok {
				live = append(live, k)
			}
		}
		if len(live) == 0 {
			return ""
		}
		return live[rand.Intn(len(live))]
	}
	return lruVictim(entries, insertOrder)
}

func lruVictim(entries map[string]*Entry, insertOrder []string) string {
	var best string
	var bestAccess int64
	first := true
	for _, k := range insertOrder {
		e, ok := entries[k]
		if !ok {
			continue
		}
		t := e.LastAccess.UnixNano()
		if first || t < bestAccess {
			best, bestAccess, first = k, t, false
		}
	}
	return best
}
