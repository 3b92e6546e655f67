package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/standardbeagle/tmplctl/internal/eval"
)

// fingerprint computes fp(template) XOR fp(canonical(variables)), used
// as the render-result cache key.
func fingerprint(template string, vars map[string]eval.Value) uint64 {
	return xxhash.Sum64String(template) ^ xxhash.Sum64String(canonicalize(vars))
}

func fpKey(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}

// canonicalize produces a deterministic string form of a variable map
// (sorted keys, recursive) so that equal variable maps always hash the
// same regardless of map-iteration order.
func canonicalize(vars map[string]eval.Value) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		canonicalizeValue(&b, vars[k])
		b.WriteByte(';')
	}
	return b.String()
}

func canonicalizeValue(b *strings.Builder, v eval.Value) {
	switch v.Kind() {
	case eval.KindNull:
		b.WriteString("null")
	case eval.KindBool:
		if v.AsBool() {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case eval.KindNumber:
		b.WriteString(strconv.FormatFloat(v.AsNumber(), 'g', -1, 64))
	case eval.KindText:
		b.WriteByte('"')
		b.WriteString(v.AsText())
		b.WriteByte('"')
	case eval.KindList:
		b.WriteByte('[')
		for _, item := range v.AsList() {
			canonicalizeValue(b, item)
			b.WriteByte(',')
		}
		b.WriteByte(']')
	case eval.KindMap:
		m := v.AsMap()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for _, k := range keys {
			b.WriteString(k)
			b.WriteByte(':')
			canonicalizeValue(b, m[k])
			b.WriteByte(',')
		}
		b.WriteByte('}')
	}
}
