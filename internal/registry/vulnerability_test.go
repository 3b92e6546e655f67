package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tmplctl/internal/resolver"
)

func TestLoadVulnerabilityDB_MissingFileIsEmpty(t *testing.T) {
	db, err := LoadVulnerabilityDB(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, db.Lookup("widget", resolver.MustParseVersion("1.0.0")))
}

func TestLoadVulnerabilityDB_MatchesAffectedRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisories.json")
	body := `[{"name":"widget","affectedVersions":["<1.5.0"],"advisory":"CVE-2024-1234"}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	db, err := LoadVulnerabilityDB(path)
	require.NoError(t, err)

	hits := db.Lookup("widget", resolver.MustParseVersion("1.0.0"))
	assert.Equal(t, []string{"CVE-2024-1234"}, hits)

	assert.Empty(t, db.Lookup("widget", resolver.MustParseVersion("2.0.0")))
}

func TestLoadLicenseTable_EmptyAllowsEverything(t *testing.T) {
	table, err := LoadLicenseTable(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.False(t, table.Incompatible("widget", "GPL-3.0"))
}

func TestLoadLicenseTable_FlagsDisallowedLicense(t *testing.T) {
	path := filepath.Join(t.TempDir(), "licenses.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"allowed":["MIT","Apache-2.0"]}`), 0o644))

	table, err := LoadLicenseTable(path)
	require.NoError(t, err)
	assert.True(t, table.Incompatible("widget", "GPL-3.0"))
	assert.False(t, table.Incompatible("widget", "MIT"))
}

func TestLoadLicenseTable_ExemptNameBypassesCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "licenses.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"allowed":["MIT"],"exempt":["internal-tool"]}`), 0o644))

	table, err := LoadLicenseTable(path)
	require.NoError(t, err)
	assert.False(t, table.Incompatible("internal-tool", "GPL-3.0"))
}
