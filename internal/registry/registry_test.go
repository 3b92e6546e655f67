package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tmplctl/internal/resolver"
)

func TestRegistry_VersionsAndDependencies(t *testing.T) {
	locs := []TemplateLocation{
		{Root: "/t/widget-1", Manifest: Manifest{Name: "widget", Version: "1.0.0"}},
		{Root: "/t/widget-2", Manifest: Manifest{
			Name: "widget", Version: "2.0.0",
			Dependencies: []ManifestDependency{{Name: "base", Version: "^1.0.0"}},
		}},
	}
	reg := NewRegistry(locs)

	versions, err := reg.Versions("widget")
	require.NoError(t, err)
	assert.Len(t, versions, 2)

	deps, err := reg.Dependencies("widget", resolver.MustParseVersion("2.0.0"))
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "base", deps[0].Name)
	assert.Equal(t, "^1.0.0", deps[0].Constraint)
}

func TestRegistry_UnknownNameErrors(t *testing.T) {
	reg := NewRegistry(nil)
	_, err := reg.Versions("missing")
	assert.Error(t, err)
}

func TestInstalledVersions_ParsesAndLooksUp(t *testing.T) {
	iv, err := NewInstalledVersions(map[string]string{"widget": "1.2.3"})
	require.NoError(t, err)

	v, ok := iv.Current("widget")
	require.True(t, ok)
	assert.Equal(t, resolver.MustParseVersion("1.2.3"), v)

	_, ok = iv.Current("missing")
	assert.False(t, ok)
}
