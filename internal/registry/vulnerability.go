package registry

import (
	"encoding/json"
	"os"

	"github.com/standardbeagle/tmplctl/internal/resolver"
)

// advisory is one entry of the on-disk advisory file: every known
// vulnerability for a given template name and affected version range.
type advisory struct {
	Name             string   `json:"name"`
	AffectedVersions []string `json:"affectedVersions"`
	Advisory         string   `json:"advisory"`
}

// VulnerabilityDB is a local JSON-backed advisory lookup table,
// implementing resolver.VulnerabilityDB.
type VulnerabilityDB struct {
	byName map[string][]advisory
}

// LoadVulnerabilityDB reads a JSON array of advisory entries from
// path. A missing file is treated as an empty database.
func LoadVulnerabilityDB(path string) (*VulnerabilityDB, error) {
	db := &VulnerabilityDB{byName: make(map[string][]advisory)}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return db, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []advisory
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		db.byName[e.Name] = append(db.byName[e.Name], e)
	}
	return db, nil
}

// Lookup implements resolver.VulnerabilityDB.
func (db *VulnerabilityDB) Lookup(name string, version resolver.Version) []string {
	var hits []string
	for _, a := range db.byName[name] {
		for _, vs := range a.AffectedVersions {
			c, err := resolver.ParseConstraint(vs)
			if err == nil && c.Satisfies(version) {
				hits = append(hits, a.Advisory)
				break
			}
		}
	}
	return hits
}
