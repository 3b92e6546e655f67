package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	apperrors "github.com/standardbeagle/tmplctl/internal/errors"
)

// diskRecord is the on-disk JSON layout for one L2 entry.
type diskRecord struct {
	Metadata diskMetadata `json:"metadata"`
	Data     string       `json:"data"`
}

type diskMetadata struct {
	Key         string `json:"key"`
	CreatedAt   string `json:"createdAt"`
	TTLMillis   int64  `json:"ttl,omitempty"`
	Size        int64  `json:"size"`
	ETag        string `json:"etag,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Compression string `json:"compression"`
	Encrypted   bool   `json:"encrypted"`
}

// DiskTier is the L2 tier: one `<sha256(key)>.cache` JSON file per
// entry under Dir.
type DiskTier struct {
	Dir          string
	Hits, Misses int64
}

// NewDiskTier creates a disk tier rooted at dir, creating it if
// necessary.
func NewDiskTier(dir string) (*DiskTier, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskTier{Dir: dir}, nil
}

func (t *DiskTier) pathFor(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(t.Dir, hex.EncodeToString(sum[:])+".cache")
}

// Get reads and decodes an entry, deleting the file when it cannot be
// decoded or has expired. It does not check the stored ETag;
// VerifyIntegrity does that.
func (t *DiskTier) Get(key string) (entry *Entry, ok bool) {
	defer func() {
		if ok {
			t.Hits++
		} else {
			t.Misses++
		}
	}()

	path := t.pathFor(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var rec diskRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		os.Remove(path)
		return nil, false
	}

	payload, err := base64.StdEncoding.DecodeString(rec.Data)
	if err != nil {
		os.Remove(path)
		return nil, false
	}

	data, err := decompress(Compression(rec.Metadata.Compression), payload)
	if err != nil {
		os.Remove(path)
		return nil, false
	}

	createdAt, err := time.Parse(time.RFC3339, rec.Metadata.CreatedAt)
	if err != nil {
		os.Remove(path)
		return nil, false
	}

	e := &Entry{
		Key:         rec.Metadata.Key,
		Data:        data,
		CreatedAt:   createdAt,
		TTL:         time.Duration(rec.Metadata.TTLMillis) * time.Millisecond,
		ETag:        rec.Metadata.ETag,
		ContentType: rec.Metadata.ContentType,
		Compression: Compression(rec.Metadata.Compression),
		Encrypted:   rec.Metadata.Encrypted,
		SizeBytes:   rec.Metadata.Size,
	}
	if e.IsExpired(time.Now()) {
		os.Remove(path)
		return nil, false
	}
	return e, true
}

// VerifyIntegrity recomputes the sha256 of data and compares it to
// expectedHash (hex-encoded); a mismatch deletes the on-disk entry for
// key.
func (t *DiskTier) VerifyIntegrity(key string, data []byte, expectedHash string) error {
	sum := sha256.Sum256(data)
	if hex.EncodeToString(sum[:]) != expectedHash {
		t.Remove(key)
		return apperrors.NewCacheError(apperrors.KindIntegrityMismatch, "disk", key, nil)
	}
	return nil
}

// Put writes an entry to disk, compressing its payload per opts when
// requested.
func (t *DiskTier) Put(e *Entry) error {
	payload, err := compress(e.Compression, e.Data)
	if err != nil {
		return apperrors.NewCacheError(apperrors.KindSerializationErr, "disk", e.Key, err)
	}

	ttlMillis := e.TTL.Milliseconds()
	if e.TTL > 0 && ttlMillis == 0 {
		ttlMillis = 1
	}

	rec := diskRecord{
		Metadata: diskMetadata{
			Key:         e.Key,
			CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
			TTLMillis:   ttlMillis,
			Size:        int64(len(e.Data)),
			ETag:        e.ETag,
			ContentType: e.ContentType,
			Compression: string(e.Compression),
			Encrypted:   e.Encrypted,
		},
		Data: base64.StdEncoding.EncodeToString(payload),
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return apperrors.NewCacheError(apperrors.KindSerializationErr, "disk", e.Key, err)
	}

	path := t.pathFor(e.Key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Remove deletes the on-disk file for key, if any.
func (t *DiskTier) Remove(key string) {
	os.Remove(t.pathFor(key))
}

// Clear deletes every `.cache` file under the tier's directory.
func (t *DiskTier) Clear() error {
	matches, err := filepath.Glob(filepath.Join(t.Dir, "*.cache"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		os.Remove(m)
	}
	return nil
}

// Sweep removes every expired on-disk entry, returning how many were
// removed.
func (t *DiskTier) Sweep(now time.Time) int {
	matches, _ := filepath.Glob(filepath.Join(t.Dir, "*.cache"))
	removed := 0
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var rec diskRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			os.Remove(path)
			removed++
			continue
		}
		if rec.Metadata.TTLMillis <= 0 {
			continue
		}
		createdAt, err := time.Parse(time.RFC3339, rec.Metadata.CreatedAt)
		if err != nil {
			continue
		}
		if now.After(createdAt.Add(time.Duration(rec.Metadata.TTLMillis) * time.Millisecond)) {
			os.Remove(path)
			removed++
		}
	}
	return removed
}

func compress(codec Compression, data []byte) ([]byte, error) {
	switch codec {
	case "", CompressionNone:
		return data, nil
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported compression codec %q", codec)
	}
}

func decompress(codec Compression, data []byte) ([]byte, error) {
	switch codec {
	case "", CompressionNone:
		return data, nil
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return nil, fmt.Errorf("unsupported compression codec %q", codec)
	}
}
