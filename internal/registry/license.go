package registry

import (
	"encoding/json"
	"os"
)

// LicenseTable is a local JSON-backed license-compatibility lookup,
// implementing resolver.LicenseTable. The on-disk document is
// {"allowed": ["MIT", "Apache-2.0", ...]}; any license not in the list
// is reported incompatible for names not otherwise exempted.
type LicenseTable struct {
	allowed map[string]bool
	exempt  map[string]bool
}

type licenseDoc struct {
	Allowed []string `json:"allowed"`
	Exempt  []string `json:"exempt"`
}

// LoadLicenseTable reads the allowed/exempt lists from path. A
// missing file is treated as "everything allowed".
func LoadLicenseTable(path string) (*LicenseTable, error) {
	t := &LicenseTable{allowed: make(map[string]bool), exempt: make(map[string]bool)}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, err
	}
	var doc licenseDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for _, l := range doc.Allowed {
		t.allowed[l] = true
	}
	for _, n := range doc.Exempt {
		t.exempt[n] = true
	}
	return t, nil
}

// Incompatible implements resolver.LicenseTable. An empty allowed set
// means no restriction has been configured, so nothing is flagged.
func (t *LicenseTable) Incompatible(name, license string) bool {
	if t.exempt[name] {
		return false
	}
	if len(t.allowed) == 0 {
		return false
	}
	if license == "" {
		return false
	}
	return !t.allowed[license]
}
