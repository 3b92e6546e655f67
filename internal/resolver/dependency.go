package resolver

// DependencyKind tags what role a dependency plays.
type DependencyKind string

const (
	KindRuntime     DependencyKind = "runtime"
	KindDev         DependencyKind = "dev"
	KindOptional    DependencyKind = "optional"
	KindPeer        DependencyKind = "peer"
	KindConditional DependencyKind = "conditional"
)

// Dependency is a named requirement on some other template, with a
// version constraint and metadata used by the vulnerability/license
// checks.
type Dependency struct {
	Name            string
	Constraint      string
	Kind            DependencyKind
	Optional        bool
	Condition       string
	License         string
	SecurityRating  string
}

// MetadataSource is the injected lookup the resolver walks the graph
// through: given a template name, it returns every known version and
// that version's own dependency list.
type MetadataSource interface {
	Versions(name string) ([]Version, error)
	Dependencies(name string, version Version) ([]Dependency, error)
}

// VulnerabilityDB is the injected vulnerability lookup a resolve pass
// consults for each candidate version.
type VulnerabilityDB interface {
	Lookup(name string, version Version) []string
}

// LicenseTable is the injected license-compatibility lookup a resolve
// pass consults for each candidate version.
type LicenseTable interface {
	Incompatible(name, license string) bool
}

// LicenseSource is an optional capability a MetadataSource may
// implement to report a resolved template's declared license, so the
// license check can look up the actual value instead of an empty
// string.
type LicenseSource interface {
	License(name string) string
}
