// Package resolver implements semantic-version parsing, constraint
// satisfaction, the transitive dependency graph walk, update
// classification, and the approval-gated lifecycle state machine.
package resolver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed semantic version: major.minor.patch with an
// optional prerelease and build-metadata tag. Build metadata never
// participates in ordering.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
	Pre   string
	Build string
}

// String renders the version in standard SemVer textual form.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// HasPrerelease reports whether the version carries a prerelease tag.
func (v Version) HasPrerelease() bool { return v.Pre != "" }

// ParseVersion parses a dotted "major.minor.patch[-pre][+build]" string.
// Missing minor/patch components default to zero.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("empty version string")
	}

	var build string
	if i := strings.IndexByte(s, '+'); i >= 0 {
		build = s[i+1:]
		s = s[:i]
	}

	var pre string
	if i := strings.IndexByte(s, '-'); i >= 0 {
		pre = s[i+1:]
		s = s[:i]
	}

	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	nums := [3]uint64{}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version segment %q in %q", p, s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Pre: pre, Build: build}, nil
}

// MustParseVersion parses s, panicking on error. Intended for
// constants/tests, never for untrusted input.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare orders versions lexicographically over (major,minor,patch),
// then by a prerelease comparison where an absent
// prerelease outranks any present prerelease, and otherwise
// prerelease strings compare lexicographically. Build metadata never
// participates.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return cmpUint(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmpUint(v.Minor, other.Minor)
	}
	if v.Patch != other.Patch {
		return cmpUint(v.Patch, other.Patch)
	}
	if v.Pre == "" && other.Pre == "" {
		return 0
	}
	if v.Pre == "" {
		return 1
	}
	if other.Pre == "" {
		return -1
	}
	return strings.Compare(v.Pre, other.Pre)
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// GreaterOrEqual reports whether v >= other.
func (v Version) GreaterOrEqual(other Version) bool { return v.Compare(other) >= 0 }

// LessThan reports whether v < other.
func (v Version) LessThan(other Version) bool { return v.Compare(other) < 0 }

// Equal reports whether v == other, ignoring build metadata.
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// BumpMajor returns the next major version: (major+1).0.0.
func (v Version) BumpMajor() Version { return Version{Major: v.Major + 1} }

// BumpMinor returns the next minor version: major.(minor+1).0.
func (v Version) BumpMinor() Version { return Version{Major: v.Major, Minor: v.Minor + 1} }

// UpdateType classifies the distance between a current and an
// available version.
type UpdateType string

const (
	UpdateMajor      UpdateType = "major"
	UpdateMinor      UpdateType = "minor"
	UpdatePatch      UpdateType = "patch"
	UpdatePrerelease UpdateType = "prerelease"
)

// DetermineUpdateType classifies available relative to current.
func DetermineUpdateType(current, available Version) UpdateType {
	switch {
	case available.HasPrerelease():
		return UpdatePrerelease
	case available.Major > current.Major:
		return UpdateMajor
	case available.Minor > current.Minor:
		return UpdateMinor
	default:
		return UpdatePatch
	}
}
