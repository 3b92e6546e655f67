// Package eval implements the scalar expression language used by the
// template renderer: a small tokenizer/parser/evaluator over a tagged
// Value sum, with a safety sandbox, built-in functions, and parse
// caching.
package eval

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind tags the variant a Value currently holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is the tagged sum every expression evaluates to.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	l    []Value
	m    map[string]Value
}

// Null is the singleton null value.
var Null = Value{kind: KindNull}

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a float64.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Text wraps a string.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// List wraps a slice of values.
func List(items []Value) Value { return Value{kind: KindList, l: items} }

// Map wraps a string-keyed map of values.
func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the raw bool; only meaningful when Kind()==KindBool.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the raw float64; only meaningful when Kind()==KindNumber.
func (v Value) AsNumber() float64 { return v.n }

// AsText returns the raw string; only meaningful when Kind()==KindText.
func (v Value) AsText() string { return v.s }

// AsList returns the raw slice; only meaningful when Kind()==KindList.
func (v Value) AsList() []Value { return v.l }

// AsMap returns the raw map; only meaningful when Kind()==KindMap.
func (v Value) AsMap() map[string]Value { return v.m }

// Truthy coerces any value kind to a boolean for use in if/unless
// conditions and the &&/||/! operators.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0
	case KindText:
		return len(v.s) > 0
	case KindList:
		return len(v.l) > 0
	case KindMap:
		return len(v.m) > 0
	default:
		return false
	}
}

// Number coerces the value to a float64: numbers pass through,
// parseable text is parsed, everything else is zero.
func (v Value) Number() float64 {
	switch v.kind {
	case KindNumber:
		return v.n
	case KindText:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64); err == nil {
			return f
		}
		return 0
	default:
		return 0
	}
}

// ToText renders the value's text form, used for variable substitution.
// Null becomes the empty string.
func (v Value) ToText() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.n)
	case KindText:
		return v.s
	case KindList:
		parts := make([]string, len(v.l))
		for i, item := range v.l {
			parts[i] = item.ToText()
		}
		return strings.Join(parts, ",")
	case KindMap:
		return fmt.Sprintf("%v", v.m)
	default:
		return ""
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// Length mirrors the length() builtin's direct semantics.
func (v Value) Length() int {
	switch v.kind {
	case KindList:
		return len(v.l)
	case KindText:
		return len(v.s)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// Equal implements structural, type-sensitive equality.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindText:
		return v.s == other.s
	case KindList:
		if len(v.l) != len(other.l) {
			return false
		}
		for i := range v.l {
			if !v.l[i].Equal(other.l[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(other.m) {
			return false
		}
		for k, mv := range v.m {
			ov, ok := other.m[k]
			if !ok || !mv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Contains implements the `contains` string/list operator.
func (v Value) Contains(needle Value) bool {
	switch v.kind {
	case KindText:
		return strings.Contains(v.s, needle.ToText())
	case KindList:
		for _, item := range v.l {
			if item.Equal(needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Matches compiles pattern as a regular expression and reports whether
// the text matches it.
func (v Value) Matches(pattern string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(v.ToText()), nil
}
