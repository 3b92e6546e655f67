package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCurrentVersions struct{ m map[string]Version }

func (f fakeCurrentVersions) Current(name string) (Version, bool) {
	v, ok := f.m[name]
	return v, ok
}

func TestCheckForUpdates_FindsGreatestQualifyingVersion(t *testing.T) {
	meta := &fakeMetadata{
		versions: map[string][]Version{
			"tmpl": {MustParseVersion("1.0.0"), MustParseVersion("1.1.0"), MustParseVersion("2.0.0")},
		},
	}
	current := fakeCurrentVersions{m: map[string]Version{"tmpl": MustParseVersion("1.0.0")}}

	updates, err := CheckForUpdates(meta, current, []string{"tmpl"}, UpdateQuery{})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, MustParseVersion("2.0.0"), updates[0].Available)
	assert.Equal(t, UpdateMajor, updates[0].UpdateType)
}

func TestCheckForUpdates_SkipsPrereleaseUnlessRequested(t *testing.T) {
	meta := &fakeMetadata{
		versions: map[string][]Version{
			"tmpl": {MustParseVersion("1.0.0"), MustParseVersion("1.1.0-beta.1")},
		},
	}
	current := fakeCurrentVersions{m: map[string]Version{"tmpl": MustParseVersion("1.0.0")}}

	updates, err := CheckForUpdates(meta, current, []string{"tmpl"}, UpdateQuery{})
	require.NoError(t, err)
	assert.Empty(t, updates)

	updates, err = CheckForUpdates(meta, current, []string{"tmpl"}, UpdateQuery{IncludePrerelease: true})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, UpdatePrerelease, updates[0].UpdateType)
}

func TestCheckForUpdates_NoUpdateWhenAlreadyLatest(t *testing.T) {
	meta := &fakeMetadata{
		versions: map[string][]Version{"tmpl": {MustParseVersion("1.0.0")}},
	}
	current := fakeCurrentVersions{m: map[string]Version{"tmpl": MustParseVersion("1.0.0")}}

	updates, err := CheckForUpdates(meta, current, []string{"tmpl"}, UpdateQuery{})
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestCheckForUpdates_QueryTemplatesOverridesNames(t *testing.T) {
	meta := &fakeMetadata{
		versions: map[string][]Version{
			"a": {MustParseVersion("1.0.0"), MustParseVersion("1.0.1")},
			"b": {MustParseVersion("1.0.0"), MustParseVersion("1.0.1")},
		},
	}
	current := fakeCurrentVersions{m: map[string]Version{
		"a": MustParseVersion("1.0.0"),
		"b": MustParseVersion("1.0.0"),
	}}

	updates, err := CheckForUpdates(meta, current, []string{"a", "b"}, UpdateQuery{Templates: []string{"b"}})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "b", updates[0].Name)
}
