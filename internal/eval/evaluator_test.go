package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Literals(t *testing.T) {
	e := NewEvaluator()
	tests := []struct {
		expr string
		want Value
	}{
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"42", Number(42)},
		{"3.5", Number(3.5)},
		{`"hello"`, Text("hello")},
		{"null", Null},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := e.Evaluate(tc.expr, nil)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got))
		})
	}
}

func TestEvaluate_Precedence(t *testing.T) {
	e := NewEvaluator()
	tests := []struct {
		expr string
		want float64
	}{
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 - 2 - 3", 5},
		{"2 * 3 % 4", 2},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := e.Evaluate(tc.expr, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.AsNumber())
		})
	}
}

func TestEvaluate_LogicalShortCircuit(t *testing.T) {
	e := NewEvaluator()
	got, err := e.Evaluate(`true or (1 / 0 == 0)`, nil)
	require.NoError(t, err)
	assert.True(t, got.AsBool())

	got, err = e.Evaluate(`false and (1 / 0 == 0)`, nil)
	require.NoError(t, err)
	assert.False(t, got.AsBool())
}

func TestEvaluate_VariableLookup(t *testing.T) {
	e := NewEvaluator()
	vars := map[string]Value{
		"user": Map(map[string]Value{
			"name": Text("ada"),
			"age":  Number(30),
		}),
	}
	got, err := e.Evaluate("user.name", vars)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.AsText())

	got, err = e.Evaluate("user.age >= 18", vars)
	require.NoError(t, err)
	assert.True(t, got.AsBool())
}

func TestEvaluate_UndefinedVariable(t *testing.T) {
	e := NewEvaluator()
	_, err := e.Evaluate("missing", nil)
	require.Error(t, err)
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	e := NewEvaluator()
	_, err := e.Evaluate("1 / 0", nil)
	require.Error(t, err)
}

func TestEvaluate_UnknownFunction(t *testing.T) {
	e := NewEvaluator()
	_, err := e.Evaluate("nope(1,2)", nil)
	require.Error(t, err)
}

func TestEvaluate_SandboxRejectsTooLong(t *testing.T) {
	e := NewEvaluator()
	long := ""
	for i := 0; i < 1001; i++ {
		long += "a"
	}
	_, err := e.Evaluate(long, nil)
	require.Error(t, err)
}

func TestEvaluate_SandboxRejectsReservedWord(t *testing.T) {
	e := NewEvaluator()
	_, err := e.Evaluate("import foo", nil)
	require.Error(t, err)
}

func TestEvaluate_MethodCallSugar(t *testing.T) {
	e := NewEvaluator()
	vars := map[string]Value{"name": Text("hello world")}
	got, err := e.Evaluate(`name.contains("world")`, vars)
	require.NoError(t, err)
	assert.True(t, got.AsBool())
}

func TestEvaluate_ParseCache(t *testing.T) {
	e := NewEvaluator()
	_, err := e.Evaluate("1 + 1", nil)
	require.NoError(t, err)
	_, err = e.Evaluate("1 + 1", nil)
	require.NoError(t, err)

	stats := e.Stats()
	assert.Equal(t, int64(1), stats.Compilations)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestEvaluate_ClearCache(t *testing.T) {
	e := NewEvaluator()
	_, err := e.Evaluate("1 + 1", nil)
	require.NoError(t, err)
	e.ClearCache()
	assert.Equal(t, 0, e.Stats().Size)
}

func TestEvaluate_Builtins(t *testing.T) {
	e := NewEvaluator()
	vars := map[string]Value{
		"items": List([]Value{Number(1), Number(2), Number(3)}),
	}
	got, err := e.Evaluate("length(items)", vars)
	require.NoError(t, err)
	assert.Equal(t, float64(3), got.AsNumber())

	got, err = e.Evaluate(`version_gte("2.1.0", "2.0.0")`, nil)
	require.NoError(t, err)
	assert.True(t, got.AsBool())
}

func TestEvaluate_RegisterFunction(t *testing.T) {
	e := NewEvaluator()
	e.RegisterFunction("double", func(e *Evaluator, expr string, args []Value) (Value, error) {
		return Number(args[0].Number() * 2), nil
	})
	got, err := e.Evaluate("double(21)", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(42), got.AsNumber())
}
