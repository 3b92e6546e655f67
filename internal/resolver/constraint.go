package resolver

import (
	"strings"

	apperrors "github.com/standardbeagle/tmplctl/internal/errors"
)

// ConstraintKind tags a VersionConstraint's variant.
type ConstraintKind int

const (
	ConstraintAny ConstraintKind = iota
	ConstraintExact
	ConstraintCaret
	ConstraintTilde
	ConstraintRange
)

// Constraint is a tagged sum over the ways a dependency can pin a
// version: Any, Exact(v), Caret(v), Tilde(v), or a Range with
// optional bounds and inclusivity flags.
type Constraint struct {
	Kind       ConstraintKind
	Exact      Version
	Min        *Version
	Max        *Version
	IncludeMin bool
	IncludeMax bool
}

// ParseConstraint parses a version constraint string: "*", an exact
// version, a "^"/"~" prefixed version, or a ">=min <max"-style range.
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return Constraint{Kind: ConstraintAny}, nil
	}
	if strings.HasPrefix(s, "^") {
		v, err := ParseVersion(s[1:])
		if err != nil {
			return Constraint{}, apperrors.NewResolverError(apperrors.KindUnsatisfiableConstraints, s, err.Error(), err)
		}
		return Constraint{Kind: ConstraintCaret, Exact: v}, nil
	}
	if strings.HasPrefix(s, "~") {
		v, err := ParseVersion(s[1:])
		if err != nil {
			return Constraint{}, apperrors.NewResolverError(apperrors.KindUnsatisfiableConstraints, s, err.Error(), err)
		}
		return Constraint{Kind: ConstraintTilde, Exact: v}, nil
	}
	if strings.HasPrefix(s, "=") {
		v, err := ParseVersion(s[1:])
		if err != nil {
			return Constraint{}, apperrors.NewResolverError(apperrors.KindUnsatisfiableConstraints, s, err.Error(), err)
		}
		return Constraint{Kind: ConstraintExact, Exact: v}, nil
	}
	if !strings.ContainsAny(s, "<>= \t") {
		v, err := ParseVersion(s)
		if err != nil {
			return Constraint{}, apperrors.NewResolverError(apperrors.KindUnsatisfiableConstraints, s, err.Error(), err)
		}
		return Constraint{Kind: ConstraintExact, Exact: v}, nil
	}
	return parseRange(s)
}

var rangeOps = []string{">=", "<=", ">", "<", "="}

func parseRange(s string) (Constraint, error) {
	c := Constraint{Kind: ConstraintRange, IncludeMin: true, IncludeMax: false}
	haveMin, haveMax := false, false
	for _, tok := range strings.Fields(s) {
		op, rest, ok := splitOp(tok)
		if !ok {
			return Constraint{}, apperrors.NewResolverError(apperrors.KindUnsatisfiableConstraints, s, "unrecognized constraint token "+tok, nil)
		}
		v, err := ParseVersion(rest)
		if err != nil {
			return Constraint{}, apperrors.NewResolverError(apperrors.KindUnsatisfiableConstraints, s, err.Error(), err)
		}
		switch op {
		case ">=":
			c.Min, c.IncludeMin, haveMin = &v, true, true
		case ">":
			c.Min, c.IncludeMin, haveMin = &v, false, true
		case "<=":
			c.Max, c.IncludeMax, haveMax = &v, true, true
		case "<":
			c.Max, c.IncludeMax, haveMax = &v, false, true
		case "=":
			c.Min, c.Max, c.IncludeMin, c.IncludeMax = &v, &v, true, true
			haveMin, haveMax = true, true
		}
	}
	if !haveMin && !haveMax {
		return Constraint{}, apperrors.NewResolverError(apperrors.KindUnsatisfiableConstraints, s, "no bounds parsed from constraint", nil)
	}
	return c, nil
}

func splitOp(tok string) (op, rest string, ok bool) {
	for _, o := range rangeOps {
		if strings.HasPrefix(tok, o) {
			return o, strings.TrimSpace(tok[len(o):]), true
		}
	}
	return "", "", false
}

// Bounds returns the effective [min,max) or [min,max] bounds a
// constraint implies, for satisfaction checks and upper-bound
// comparisons in the greatest-satisfying-version search.
func (c Constraint) Bounds() (min, max *Version, includeMin, includeMax bool) {
	switch c.Kind {
	case ConstraintAny:
		return nil, nil, true, true
	case ConstraintExact:
		v := c.Exact
		return &v, &v, true, true
	case ConstraintCaret:
		min := c.Exact
		max := c.Exact.BumpMajor()
		return &min, &max, true, false
	case ConstraintTilde:
		min := c.Exact
		max := c.Exact.BumpMinor()
		return &min, &max, true, false
	default:
		return c.Min, c.Max, c.IncludeMin, c.IncludeMax
	}
}

// Satisfies reports whether v falls within the constraint.
func (c Constraint) Satisfies(v Version) bool {
	min, max, includeMin, includeMax := c.Bounds()
	if min != nil {
		cmp := v.Compare(*min)
		if cmp < 0 || (cmp == 0 && !includeMin) {
			return false
		}
	}
	if max != nil {
		cmp := v.Compare(*max)
		if cmp > 0 || (cmp == 0 && !includeMax) {
			return false
		}
	}
	return true
}
