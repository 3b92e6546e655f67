package registry

import (
	"fmt"

	"github.com/standardbeagle/tmplctl/internal/resolver"
)

// Registry indexes discovered template locations by name, serving as
// the resolver's injected MetadataSource.
type Registry struct {
	byName map[string][]TemplateLocation
}

// NewRegistry builds a Registry from a set of discovered locations,
// grouping same-named templates (multiple published versions can live
// side by side on disk during development).
func NewRegistry(locations []TemplateLocation) *Registry {
	r := &Registry{byName: make(map[string][]TemplateLocation)}
	for _, loc := range locations {
		r.byName[loc.Manifest.Name] = append(r.byName[loc.Manifest.Name], loc)
	}
	return r
}

// ScanDirectory discovers templates under root and builds a Registry
// from the result.
func ScanDirectory(root string, maxDepth int) (*Registry, error) {
	locations, err := Discover(root, maxDepth)
	if err != nil {
		return nil, err
	}
	return NewRegistry(locations), nil
}

// Versions implements resolver.MetadataSource.
func (r *Registry) Versions(name string) ([]resolver.Version, error) {
	locs, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("no template named %q in registry", name)
	}
	versions := make([]resolver.Version, 0, len(locs))
	for _, loc := range locs {
		v, err := resolver.ParseVersion(loc.Manifest.Version)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	return versions, nil
}

// Dependencies implements resolver.MetadataSource.
func (r *Registry) Dependencies(name string, version resolver.Version) ([]resolver.Dependency, error) {
	loc, ok := r.find(name, version)
	if !ok {
		return nil, fmt.Errorf("no template %q@%s in registry", name, version)
	}
	deps := make([]resolver.Dependency, 0, len(loc.Manifest.Dependencies))
	for _, d := range loc.Manifest.Dependencies {
		deps = append(deps, resolver.Dependency{
			Name:       d.Name,
			Constraint: d.Version,
			Kind:       resolver.KindRuntime,
		})
	}
	return deps, nil
}

func (r *Registry) find(name string, version resolver.Version) (TemplateLocation, bool) {
	for _, loc := range r.byName[name] {
		if v, err := resolver.ParseVersion(loc.Manifest.Version); err == nil && v.Equal(version) {
			return loc, true
		}
	}
	return TemplateLocation{}, false
}

// License implements resolver.LicenseSource, reporting the declared
// license of a resolved template's newest known manifest.
func (r *Registry) License(name string) string {
	locs := r.byName[name]
	if len(locs) == 0 {
		return ""
	}
	best := locs[0]
	bestV, _ := resolver.ParseVersion(best.Manifest.Version)
	for _, loc := range locs[1:] {
		if v, err := resolver.ParseVersion(loc.Manifest.Version); err == nil && v.Compare(bestV) > 0 {
			best, bestV = loc, v
		}
	}
	return best.Manifest.License
}

// Names returns every distinct template name known to the registry.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

// Locations returns every discovered location for name.
func (r *Registry) Locations(name string) []TemplateLocation {
	return r.byName[name]
}

// InstalledVersions is a flat {name: version} lockfile used as the
// resolver's CurrentVersions source.
type InstalledVersions struct {
	versions map[string]resolver.Version
}

// NewInstalledVersions builds an InstalledVersions from a decoded
// {name: version} map.
func NewInstalledVersions(raw map[string]string) (*InstalledVersions, error) {
	versions := make(map[string]resolver.Version, len(raw))
	for name, vs := range raw {
		v, err := resolver.ParseVersion(vs)
		if err != nil {
			return nil, fmt.Errorf("installed version for %q: %w", name, err)
		}
		versions[name] = v
	}
	return &InstalledVersions{versions: versions}, nil
}

// Current implements resolver.CurrentVersions.
func (iv *InstalledVersions) Current(name string) (resolver.Version, bool) {
	v, ok := iv.versions[name]
	return v, ok
}
