package eval

import (
	"strings"

	"github.com/standardbeagle/tmplctl/internal/resolver"
)

// tier orderings for the team_size_gte/complexity_gte builtins.
var teamSizeOrder = []string{"solo", "small", "medium", "large", "enterprise"}
var complexityOrder = []string{"simple", "medium", "complex", "enterprise"}

func tierIndex(order []string, name string) int {
	for i, v := range order {
		if v == name {
			return i
		}
	}
	return -1
}

func registerBuiltins(e *Evaluator) {
	e.functions["version_gte"] = biVersionGte
	e.functions["version_lt"] = biVersionLt
	e.functions["length"] = biLength
	e.functions["empty"] = biEmpty
	e.functions["max"] = biMax
	e.functions["min"] = biMin
	e.functions["platform_is"] = biPlatformIs
	e.functions["framework_is"] = biFrameworkIs
	e.functions["environment_is"] = biEnvironmentIs
	e.functions["has_feature"] = biHasFeature
	e.functions["has_integration"] = biHasIntegration
	e.functions["team_size_gte"] = biTeamSizeGte
	e.functions["complexity_gte"] = biComplexityGte
	e.functions["and"] = biAnd
	e.functions["or"] = biOr
	e.functions["not"] = biNot
	e.functions["includes"] = biIncludes
	e.functions["any"] = biAny
	e.functions["all"] = biAll
	e.functions["contains"] = biContains
	e.functions["startsWith"] = biStartsWith
	e.functions["endsWith"] = biEndsWith
	e.functions["matches"] = biMatches
}

func parseArgVersions(expr, name string, args []Value) (resolver.Version, resolver.Version, error) {
	if len(args) != 2 {
		return resolver.Version{}, resolver.Version{}, errArity(expr, name, 2, len(args))
	}
	a, err := resolver.ParseVersion(args[0].ToText())
	if err != nil {
		return resolver.Version{}, resolver.Version{}, errTypeMismatch(expr, name, args[0].Kind(), KindText)
	}
	b, err := resolver.ParseVersion(args[1].ToText())
	if err != nil {
		return resolver.Version{}, resolver.Version{}, errTypeMismatch(expr, name, args[1].Kind(), KindText)
	}
	return a, b, nil
}

func biVersionGte(e *Evaluator, expr string, args []Value) (Value, error) {
	a, b, err := parseArgVersions(expr, "version_gte", args)
	if err != nil {
		return Null, err
	}
	return Bool(a.GreaterOrEqual(b)), nil
}

func biVersionLt(e *Evaluator, expr string, args []Value) (Value, error) {
	a, b, err := parseArgVersions(expr, "version_lt", args)
	if err != nil {
		return Null, err
	}
	return Bool(a.LessThan(b)), nil
}

func biLength(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 1 {
		return Null, errArity(expr, "length", 1, len(args))
	}
	return Number(float64(args[0].Length())), nil
}

func biEmpty(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 1 {
		return Null, errArity(expr, "empty", 1, len(args))
	}
	return Bool(!args[0].Truthy()), nil
}

func biMax(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) == 0 {
		return Null, errArity(expr, "max", 1, 0)
	}
	best := args[0].Number()
	for _, a := range args[1:] {
		if n := a.Number(); n > best {
			best = n
		}
	}
	return Number(best), nil
}

func biMin(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) == 0 {
		return Null, errArity(expr, "min", 1, 0)
	}
	best := args[0].Number()
	for _, a := range args[1:] {
		if n := a.Number(); n < best {
			best = n
		}
	}
	return Number(best), nil
}

// fieldOrSelf extracts a named field from a map argument, or returns
// the text form of the argument itself when it is not a map,
// supporting the spec's "accept either a map carrying typed fields or
// a plain text" predicate-helper contract.
func fieldOrSelf(data Value, field string) string {
	if data.Kind() == KindMap {
		if v, ok := data.AsMap()[field]; ok {
			return v.ToText()
		}
		return ""
	}
	return data.ToText()
}

func biPlatformIs(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "platform_is", 2, len(args))
	}
	return Bool(strings.EqualFold(fieldOrSelf(args[0], "platform"), args[1].ToText())), nil
}

func biFrameworkIs(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "framework_is", 2, len(args))
	}
	return Bool(strings.EqualFold(fieldOrSelf(args[0], "framework"), args[1].ToText())), nil
}

func biEnvironmentIs(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "environment_is", 2, len(args))
	}
	return Bool(strings.EqualFold(fieldOrSelf(args[0], "environment"), args[1].ToText())), nil
}

func hasListField(data Value, field, want string) bool {
	if data.Kind() != KindMap {
		return strings.EqualFold(data.ToText(), want)
	}
	fv, ok := data.AsMap()[field]
	if !ok {
		return false
	}
	if fv.Kind() == KindList {
		for _, item := range fv.AsList() {
			if strings.EqualFold(item.ToText(), want) {
				return true
			}
		}
		return false
	}
	return strings.EqualFold(fv.ToText(), want)
}

func biHasFeature(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "has_feature", 2, len(args))
	}
	return Bool(hasListField(args[0], "features", args[1].ToText())), nil
}

func biHasIntegration(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "has_integration", 2, len(args))
	}
	return Bool(hasListField(args[0], "integrations", args[1].ToText())), nil
}

func biTeamSizeGte(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "team_size_gte", 2, len(args))
	}
	cur := tierIndex(teamSizeOrder, fieldOrSelf(args[0], "team_size"))
	min := tierIndex(teamSizeOrder, args[1].ToText())
	if cur < 0 || min < 0 {
		return Bool(false), nil
	}
	return Bool(cur >= min), nil
}

func biComplexityGte(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "complexity_gte", 2, len(args))
	}
	cur := tierIndex(complexityOrder, fieldOrSelf(args[0], "complexity"))
	min := tierIndex(complexityOrder, args[1].ToText())
	if cur < 0 || min < 0 {
		return Bool(false), nil
	}
	return Bool(cur >= min), nil
}

func biAnd(e *Evaluator, expr string, args []Value) (Value, error) {
	for _, a := range args {
		if !a.Truthy() {
			return Bool(false), nil
		}
	}
	return Bool(true), nil
}

func biOr(e *Evaluator, expr string, args []Value) (Value, error) {
	for _, a := range args {
		if a.Truthy() {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

func biNot(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 1 {
		return Null, errArity(expr, "not", 1, len(args))
	}
	return Bool(!args[0].Truthy()), nil
}

func biIncludes(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "includes", 2, len(args))
	}
	return Bool(args[0].Contains(args[1])), nil
}

// condMatches implements the shared matching rule for any()/all():
// item == cond, or for Text items, item.to_text().contains(cond).
func condMatches(item, cond Value) bool {
	if item.Equal(cond) {
		return true
	}
	if item.Kind() == KindText {
		return strings.Contains(item.ToText(), cond.ToText())
	}
	return false
}

func biAny(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "any", 2, len(args))
	}
	if args[0].Kind() != KindList {
		return Null, errTypeMismatch(expr, "any", args[0].Kind(), KindList)
	}
	for _, item := range args[0].AsList() {
		if condMatches(item, args[1]) {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

func biAll(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "all", 2, len(args))
	}
	if args[0].Kind() != KindList {
		return Null, errTypeMismatch(expr, "all", args[0].Kind(), KindList)
	}
	for _, item := range args[0].AsList() {
		if !condMatches(item, args[1]) {
			return Bool(false), nil
		}
	}
	return Bool(true), nil
}

func biContains(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "contains", 2, len(args))
	}
	return Bool(args[0].Contains(args[1])), nil
}

func biStartsWith(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "startsWith", 2, len(args))
	}
	return Bool(strings.HasPrefix(args[0].ToText(), args[1].ToText())), nil
}

func biEndsWith(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "endsWith", 2, len(args))
	}
	return Bool(strings.HasSuffix(args[0].ToText(), args[1].ToText())), nil
}

func biMatches(e *Evaluator, expr string, args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArity(expr, "matches", 2, len(args))
	}
	ok, err := args[0].Matches(args[1].ToText())
	if err != nil {
		return Null, errRegex(expr, err)
	}
	return Bool(ok), nil
}
