package resolver

import (
	apperrors "github.com/standardbeagle/tmplctl/internal/errors"
)

// Conflict records every contributing source when no version
// satisfies the union of constraints gathered for a name.
type Conflict struct {
	Name    string
	Sources []Dependency
}

// Resolution is the BFS walk's output.
type Resolution struct {
	Resolved        map[string]Version
	Conflicts       []Conflict
	Vulnerabilities []string
	LicenseIssues   []string
}

// Resolver runs a breadth-first dependency walk over an injected
// metadata source, plus the optional vulnerability and license
// checks.
type Resolver struct {
	Metadata MetadataSource
	Vulns    VulnerabilityDB
	Licenses LicenseTable
}

// NewResolver builds a Resolver over the given metadata source.
func NewResolver(metadata MetadataSource) *Resolver {
	return &Resolver{Metadata: metadata}
}

type queueItem struct {
	dep    Dependency
	source string
	path   []string
}

// Resolve runs the BFS resolution algorithm: pop from a FIFO queue,
// skip names already resolved, gather every constraint seen for a
// name, pick the greatest version satisfying their intersection, and
// enqueue its sub-dependencies.
func (r *Resolver) Resolve(roots []Dependency) (Resolution, error) {
	res := Resolution{Resolved: make(map[string]Version)}

	queue := make([]queueItem, 0, len(roots))
	for _, d := range roots {
		queue = append(queue, queueItem{dep: d, source: "<root>", path: []string{d.Name}})
	}

	constraintsByName := make(map[string][]queueItem)
	visited := make(map[string]struct{})

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		name := item.dep.Name

		constraintsByName[name] = append(constraintsByName[name], item)
		if _, done := visited[name]; done {
			for i := range res.Conflicts {
				if res.Conflicts[i].Name == name {
					res.Conflicts[i].Sources = append(res.Conflicts[i].Sources, item.dep)
				}
			}
			continue
		}

		versions, err := r.Metadata.Versions(name)
		if err != nil {
			return res, apperrors.NewResolverError(apperrors.KindMetadataUnavailable, name, err.Error(), err)
		}

		chosen, conflict := resolveGreatest(name, constraintsByName[name], versions)
		if conflict != nil {
			res.Conflicts = append(res.Conflicts, *conflict)
			visited[name] = struct{}{}
			continue
		}

		res.Resolved[name] = *chosen
		visited[name] = struct{}{}

		subs, err := r.Metadata.Dependencies(name, *chosen)
		if err != nil {
			return res, apperrors.NewResolverError(apperrors.KindMetadataUnavailable, name, err.Error(), err)
		}
		for _, sub := range subs {
			if inPath(item.path, sub.Name) {
				return res, apperrors.NewResolverError(apperrors.KindCircularDependency, sub.Name, pathString(append(item.path, sub.Name)), nil)
			}
			if _, done := visited[sub.Name]; done {
				continue
			}
			queue = append(queue, queueItem{dep: sub, source: name, path: append(append([]string{}, item.path...), sub.Name)})
		}
	}

	r.checkVulnerabilitiesAndLicenses(&res)
	return res, nil
}

// resolveGreatest picks the greatest version in versions satisfying
// every constraint gathered for name, or returns a Conflict listing
// every contributing source.
func resolveGreatest(name string, items []queueItem, versions []Version) (*Version, *Conflict) {
	var deps []Dependency
	for _, it := range items {
		deps = append(deps, it.dep)
	}

	var best *Version
	for i := range versions {
		v := versions[i]
		if satisfiesAll(v, deps) {
			if best == nil || v.Compare(*best) > 0 {
				vv := v
				best = &vv
			}
		}
	}
	if best == nil {
		return nil, &Conflict{Name: name, Sources: deps}
	}
	return best, nil
}

func inPath(path []string, name string) bool {
	for _, p := range path {
		if p == name {
			return true
		}
	}
	return false
}

func pathString(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += " -> "
		}
		s += p
	}
	return s
}

func satisfiesAll(v Version, deps []Dependency) bool {
	for _, d := range deps {
		c, err := ParseConstraint(d.Constraint)
		if err != nil || !c.Satisfies(v) {
			return false
		}
	}
	return true
}

func (r *Resolver) checkVulnerabilitiesAndLicenses(res *Resolution) {
	if r.Vulns != nil {
		for name, v := range res.Resolved {
			res.Vulnerabilities = append(res.Vulnerabilities, r.Vulns.Lookup(name, v)...)
		}
	}
	if r.Licenses != nil {
		licenses, _ := r.Metadata.(LicenseSource)
		for name := range res.Resolved {
			license := ""
			if licenses != nil {
				license = licenses.License(name)
			}
			if r.Licenses.Incompatible(name, license) {
				res.LicenseIssues = append(res.LicenseIssues, name)
			}
		}
	}
}
