package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateManifestFile_AcceptsWellFormedManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.yaml")
	body := "name: widget\nversion: 1.0.0\ntags: [ui]\ndependencies:\n  - name: base\n    version: \"^1.0.0\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	assert.NoError(t, ValidateManifestFile(path))
}

func TestValidateManifestFile_RejectsMissingRequiredFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.yaml")
	require.NoError(t, os.WriteFile(path, []byte("description: no name or version\n"), 0o644))

	assert.Error(t, ValidateManifestFile(path))
}

func TestValidateManifestFile_RejectsWrongFieldType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: widget\nversion: 1.0.0\ntags: \"not-a-list\"\n"), 0o644))

	assert.Error(t, ValidateManifestFile(path))
}
