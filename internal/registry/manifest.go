// Package registry discovers template directories on disk, decodes
// and validates their manifests, and exposes the result as the
// metadata source the resolver walks.
package registry

import (
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/standardbeagle/tmplctl/internal/errors"
)

// ManifestDependency is one entry of a manifest's dependencies list.
type ManifestDependency struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Manifest is the decoded shape of template.yaml / brick.yaml, and
// the subset of pubspec.yaml this tool cares about.
type Manifest struct {
	Name         string               `yaml:"name"`
	Version      string               `yaml:"version"`
	Author       string               `yaml:"author"`
	Description  string               `yaml:"description"`
	Type         string               `yaml:"type"`
	Platform     string               `yaml:"platform"`
	Framework    string               `yaml:"framework"`
	Complexity   string               `yaml:"complexity"`
	Maturity     string               `yaml:"maturity"`
	Tags         []string             `yaml:"tags"`
	Dependencies []ManifestDependency `yaml:"dependencies"`
	License      string               `yaml:"license"`
}

// DecodeManifest reads and YAML-decodes the manifest file at path.
func DecodeManifest(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, apperrors.NewResolverError(apperrors.KindMetadataUnavailable, path, "manifest decode failed: "+err.Error(), err)
	}
	return m, nil
}
