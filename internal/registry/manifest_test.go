package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeManifest_FullShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.yaml")
	body := `
name: widget
version: 1.2.3
author: jane
description: a reusable widget
type: component
platform: flutter
framework: material
complexity: low
maturity: stable
tags: [ui, widget]
license: MIT
dependencies:
  - name: base
    version: "^1.0.0"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	m, err := DecodeManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "widget", m.Name)
	assert.Equal(t, "1.2.3", m.Version)
	assert.Equal(t, []string{"ui", "widget"}, m.Tags)
	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, "base", m.Dependencies[0].Name)
	assert.Equal(t, "^1.0.0", m.Dependencies[0].Version)
}

func TestDecodeManifest_MissingFileErrors(t *testing.T) {
	_, err := DecodeManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
