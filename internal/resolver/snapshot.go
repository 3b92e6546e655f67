package resolver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	apperrors "github.com/standardbeagle/tmplctl/internal/errors"
)

// Snapshot records the resolved version of every template at a point
// in time, serialized to a single JSON file per snapshot.
type Snapshot struct {
	ID               string
	Name             string
	CreatedAt        time.Time
	TemplateVersions map[string]Version
	Size             int64
	Description      string
}

type snapshotFile struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	CreatedAt        string            `json:"createdAt"`
	TemplateVersions map[string]string `json:"templateVersions"`
	Size             int64             `json:"size"`
	Description      string            `json:"description"`
}

func (s Snapshot) toFile() snapshotFile {
	tv := make(map[string]string, len(s.TemplateVersions))
	for name, v := range s.TemplateVersions {
		tv[name] = v.String()
	}
	return snapshotFile{
		ID:               s.ID,
		Name:             s.Name,
		CreatedAt:        s.CreatedAt.UTC().Format(time.RFC3339),
		TemplateVersions: tv,
		Size:             s.Size,
		Description:      s.Description,
	}
}

func (f snapshotFile) toSnapshot() (Snapshot, error) {
	createdAt, err := time.Parse(time.RFC3339, f.CreatedAt)
	if err != nil {
		return Snapshot{}, err
	}
	tv := make(map[string]Version, len(f.TemplateVersions))
	for name, vs := range f.TemplateVersions {
		v, err := ParseVersion(vs)
		if err != nil {
			return Snapshot{}, err
		}
		tv[name] = v
	}
	return Snapshot{
		ID:               f.ID,
		Name:             f.Name,
		CreatedAt:        createdAt,
		TemplateVersions: tv,
		Size:             f.Size,
		Description:      f.Description,
	}, nil
}

// DefaultMaxSnapshots is the retention bound applied when a
// SnapshotStore is constructed with maxSnapshots <= 0.
const DefaultMaxSnapshots = 5

// SnapshotStore persists snapshots as JSON files under Dir, keeping an
// in-memory index sorted by CreatedAt descending and evicting the
// oldest past MaxSnapshots.
type SnapshotStore struct {
	mu           sync.Mutex
	Dir          string
	MaxSnapshots int
	index        []Snapshot
	clock        func() time.Time
}

// NewSnapshotStore builds a SnapshotStore rooted at dir, loading any
// existing snapshot files into its in-memory index.
func NewSnapshotStore(dir string, maxSnapshots int, clock func() time.Time) (*SnapshotStore, error) {
	if maxSnapshots <= 0 {
		maxSnapshots = DefaultMaxSnapshots
	}
	if clock == nil {
		clock = time.Now
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &SnapshotStore{Dir: dir, MaxSnapshots: maxSnapshots, clock: clock}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		var ff snapshotFile
		if err := json.Unmarshal(raw, &ff); err != nil {
			continue
		}
		snap, err := ff.toSnapshot()
		if err != nil {
			continue
		}
		s.index = append(s.index, snap)
	}
	s.sortIndex()
	return s, nil
}

func (s *SnapshotStore) sortIndex() {
	sort.Slice(s.index, func(i, j int) bool {
		return s.index[i].CreatedAt.After(s.index[j].CreatedAt)
	})
}

func (s *SnapshotStore) path(id string) string {
	return filepath.Join(s.Dir, id+".json")
}

// Create writes a new snapshot of the given resolved versions to
// disk, evicting the oldest snapshot if MaxSnapshots is exceeded.
func (s *SnapshotStore) Create(description string, versions map[string]Version) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	snap := Snapshot{
		ID:               fmt.Sprintf("snap-%d", now.UnixNano()),
		Name:             description,
		CreatedAt:        now,
		TemplateVersions: versions,
		Description:      description,
	}
	raw, err := json.Marshal(snap.toFile())
	if err != nil {
		return Snapshot{}, apperrors.NewCacheError(apperrors.KindSerializationErr, "snapshot", snap.ID, err)
	}
	snap.Size = int64(len(raw))
	raw, err = json.Marshal(snap.toFile())
	if err != nil {
		return Snapshot{}, apperrors.NewCacheError(apperrors.KindSerializationErr, "snapshot", snap.ID, err)
	}
	if err := os.WriteFile(s.path(snap.ID), raw, 0o644); err != nil {
		return Snapshot{}, err
	}

	s.index = append(s.index, snap)
	s.sortIndex()
	s.evictOverflowLocked()
	return snap, nil
}

func (s *SnapshotStore) evictOverflowLocked() {
	for len(s.index) > s.MaxSnapshots {
		oldest := s.index[len(s.index)-1]
		s.index = s.index[:len(s.index)-1]
		os.Remove(s.path(oldest.ID))
	}
}

// Get returns the snapshot with the given ID.
func (s *SnapshotStore) Get(id string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range s.index {
		if snap.ID == id {
			return snap, true
		}
	}
	return Snapshot{}, false
}

// List returns every tracked snapshot, sorted by CreatedAt descending.
func (s *SnapshotStore) List() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, len(s.index))
	copy(out, s.index)
	return out
}

// Rollback reads the snapshot with the given ID and drives each
// recorded template back to its snapshotted version through the
// normal lifecycle state machine, subject to valid transitions.
// templates maps a name to its live TemplateVersion; targetState is
// the state a rolled-back version is placed into (callers typically
// pass StateReleased, since only released versions are snapshotted).
func Rollback(lifecycle *Lifecycle, store *SnapshotStore, id string, templates map[string]*TemplateVersion, targetState LifecycleState) (Snapshot, []error) {
	snap, ok := store.Get(id)
	if !ok {
		return Snapshot{}, []error{apperrors.NewResolverError(apperrors.KindMetadataUnavailable, id, "snapshot not found", nil)}
	}

	var errs []error
	for name, version := range snap.TemplateVersions {
		tv, ok := templates[name]
		if !ok {
			tv = &TemplateVersion{Name: name, State: StateDevelopment}
			templates[name] = tv
		}
		tv.Version = version
		if tv.State == targetState {
			continue
		}
		if _, err := lifecycle.RequestStateChange(tv, targetState, nil, 0); err != nil {
			errs = append(errs, err)
		}
	}
	return snap, errs
}
