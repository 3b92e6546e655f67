package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskTier_PutThenGetRoundTrips(t *testing.T) {
	tier, err := NewDiskTier(t.TempDir())
	require.NoError(t, err)

	entry := &Entry{Key: "k1", Data: []byte("payload"), CreatedAt: time.Now(), Compression: CompressionNone}
	require.NoError(t, tier.Put(entry))

	got, ok := tier.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "payload", string(got.Data))
}

func TestDiskTier_GzipRoundTrips(t *testing.T) {
	tier, err := NewDiskTier(t.TempDir())
	require.NoError(t, err)

	entry := &Entry{Key: "k1", Data: []byte("a payload worth compressing"), CreatedAt: time.Now(), Compression: CompressionGzip}
	require.NoError(t, tier.Put(entry))

	got, ok := tier.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "a payload worth compressing", string(got.Data))
}

func TestDiskTier_ExpiredEntryRemoved(t *testing.T) {
	dir := t.TempDir()
	tier, err := NewDiskTier(dir)
	require.NoError(t, err)

	entry := &Entry{Key: "k1", Data: []byte("x"), CreatedAt: time.Now().Add(-time.Hour), TTL: time.Minute}
	require.NoError(t, tier.Put(entry))

	_, ok := tier.Get("k1")
	assert.False(t, ok)

	matches, _ := filepath.Glob(filepath.Join(dir, "*.cache"))
	assert.Empty(t, matches, "expired file should be deleted on read")
}

func TestDiskTier_CorruptFileRemovedOnRead(t *testing.T) {
	dir := t.TempDir()
	tier, err := NewDiskTier(dir)
	require.NoError(t, err)

	path := tier.pathFor("k1")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, ok := tier.Get("k1")
	assert.False(t, ok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDiskTier_VerifyIntegrityMismatchDeletesEntry(t *testing.T) {
	dir := t.TempDir()
	tier, err := NewDiskTier(dir)
	require.NoError(t, err)

	entry := &Entry{Key: "k1", Data: []byte("x"), CreatedAt: time.Now()}
	require.NoError(t, tier.Put(entry))

	err = tier.VerifyIntegrity("k1", []byte("x"), "not-a-real-hash")
	require.Error(t, err)

	_, ok := tier.Get("k1")
	assert.False(t, ok)
}

func TestDiskTier_Clear(t *testing.T) {
	dir := t.TempDir()
	tier, err := NewDiskTier(dir)
	require.NoError(t, err)
	require.NoError(t, tier.Put(&Entry{Key: "k1", Data: []byte("x"), CreatedAt: time.Now()}))
	require.NoError(t, tier.Clear())

	matches, _ := filepath.Glob(filepath.Join(dir, "*.cache"))
	assert.Empty(t, matches)
}
