package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/standardbeagle/tmplctl/internal/eval"
)

// parseVarFlag parses one "--var name=value" flag into a name and an
// eval.Value, guessing bool/null/number/text from the literal text;
// anything strconv.ParseFloat accepts (including exponents, signs,
// NaN and Inf) becomes a number.
func parseVarFlag(flag string) (string, eval.Value, error) {
	name, raw, ok := strings.Cut(flag, "=")
	if !ok {
		return "", eval.Value{}, fmt.Errorf("--var %q must be name=value", flag)
	}
	return name, guessValue(raw), nil
}

func guessValue(raw string) eval.Value {
	switch raw {
	case "true":
		return eval.Bool(true)
	case "false":
		return eval.Bool(false)
	case "null":
		return eval.Null
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return eval.Number(n)
	}
	return eval.Text(raw)
}

// valuesFromJSONFile decodes a JSON document into a map[string]eval.Value,
// the render context's variable shape.
func valuesFromJSONFile(raw []byte) (map[string]eval.Value, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	out := make(map[string]eval.Value, len(doc))
	for k, v := range doc {
		out[k] = fromJSON(v)
	}
	return out, nil
}

func fromJSON(v any) eval.Value {
	switch t := v.(type) {
	case nil:
		return eval.Null
	case bool:
		return eval.Bool(t)
	case float64:
		return eval.Number(t)
	case string:
		return eval.Text(t)
	case []any:
		items := make([]eval.Value, len(t))
		for i, item := range t {
			items[i] = fromJSON(item)
		}
		return eval.List(items)
	case map[string]any:
		m := make(map[string]eval.Value, len(t))
		for k, val := range t {
			m[k] = fromJSON(val)
		}
		return eval.Map(m)
	default:
		return eval.Null
	}
}
