package cache

import "context"

// RemoteSource is the injected L3 tier: an opaque byte fetch returning
// the data, its content type and whether the key was found; it reports
// no quality signal. No concrete CDN/object-store client ships here —
// callers supply their own transport.
type RemoteSource interface {
	Fetch(ctx context.Context, key string) (data []byte, contentType string, ok bool, err error)
}

// RemoteTier wraps a RemoteSource with the hit/miss counters the
// stats surface requires.
type RemoteTier struct {
	Source       RemoteSource
	Hits, Misses int64
}

// NewRemoteTier wraps source, or returns nil if source is nil (L3 is
// optional).
func NewRemoteTier(source RemoteSource) *RemoteTier {
	if source == nil {
		return nil
	}
	return &RemoteTier{Source: source}
}

// Fetch consults the remote source, updating hit/miss counters.
func (t *RemoteTier) Fetch(ctx context.Context, key string) ([]byte, string, bool, error) {
	data, contentType, ok, err := t.Source.Fetch(ctx, key)
	if err != nil || !ok {
		t.Misses++
		return nil, "", false, err
	}
	t.Hits++
	return data, contentType, true, nil
}
