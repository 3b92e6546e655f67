package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tmplctl/internal/eval"
)

func newTestEngine() *Engine {
	return NewEngine(eval.NewEvaluator())
}

func TestRender_VariableSubstitution(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{"name": eval.Text("world")})
	res := e.Render("hello {{ name }}", ctx)
	require.True(t, res.OK)
	assert.Equal(t, "hello world", res.Text)
}

func TestRender_IfTrueTakesBody(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{"flag": eval.Bool(true)})
	res := e.Render("{{#if flag}}yes{{else}}no{{/if}}", ctx)
	require.True(t, res.OK)
	assert.Equal(t, "yes", res.Text)
}

func TestRender_IfFalseTakesElse(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{"flag": eval.Bool(false)})
	res := e.Render("{{#if flag}}yes{{else}}no{{/if}}", ctx)
	require.True(t, res.OK)
	assert.Equal(t, "no", res.Text)
}

func TestRender_UnlessInvertsCondition(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{"flag": eval.Bool(false)})
	res := e.Render("{{#unless flag}}shown{{/unless}}", ctx)
	require.True(t, res.OK)
	assert.Equal(t, "shown", res.Text)
}

func TestRender_IfFailedConditionIsFalsyWithWarning(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(nil)
	res := e.Render("{{#if missing}}yes{{else}}no{{/if}}", ctx)
	require.True(t, res.OK)
	assert.Equal(t, "no", res.Text)
	assert.NotEmpty(t, res.Warnings)
}

func TestRender_UnlessFailedConditionIsTruthyWithWarning(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(nil)
	res := e.Render("{{#unless missing}}shown{{/unless}}", ctx)
	require.True(t, res.OK)
	assert.Equal(t, "", res.Text)
	assert.NotEmpty(t, res.Warnings)
}

func TestRender_EachIteratesWithEphemeralVars(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{
		"items": eval.List([]eval.Value{eval.Text("a"), eval.Text("b"), eval.Text("c")}),
	})
	res := e.Render("{{#each items}}[{{@index}}:{{this}}]{{/each}}", ctx)
	require.True(t, res.OK)
	assert.Equal(t, "[0:a][1:b][2:c]", res.Text)
}

func TestRender_EachFirstLast(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{
		"items": eval.List([]eval.Value{eval.Text("a"), eval.Text("b")}),
	})
	res := e.Render("{{#each items}}{{#if @first}}FIRST{{/if}}{{this}}{{#if @last}}LAST{{/if}}{{/each}}", ctx)
	require.True(t, res.OK)
	assert.Equal(t, "FIRSTabLAST", res.Text)
}

func TestRender_EachOnNonListDegradesToWarning(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{"items": eval.Text("not a list")})
	res := e.Render("{{#each items}}x{{/each}}", ctx)
	require.True(t, res.OK)
	assert.Equal(t, "", res.Text)
	assert.NotEmpty(t, res.Warnings)
}

func TestRender_WithScopesMap(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{
		"user": eval.Map(map[string]eval.Value{"name": eval.Text("ada")}),
	})
	res := e.Render("{{#with user}}{{name}}{{/with}}", ctx)
	require.True(t, res.OK)
	assert.Equal(t, "ada", res.Text)
}

func TestRender_NestingTooDeepIsFatalThroughIf(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{"flag": eval.Bool(true)})
	ctx.MaxNesting = 1
	template := "{{#if flag}}{{#unless flag}}deep{{/unless}}{{/if}}"
	res := e.Render(template, ctx)
	assert.False(t, res.OK)
	require.NotEmpty(t, res.Errors)
}

func TestRender_NestingTooDeepInsideEachDegradesToWarning(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{
		"flag":  eval.Bool(true),
		"items": eval.List([]eval.Value{eval.Text("a")}),
	})
	ctx.MaxNesting = 1
	template := "{{#each items}}{{#if flag}}{{#unless flag}}deep{{/unless}}{{/if}}{{/each}}"
	res := e.Render(template, ctx)
	require.True(t, res.OK)
	assert.Equal(t, "", res.Text)
	assert.NotEmpty(t, res.Warnings)
}

func TestRender_NewlineCollapsing(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(nil)
	res := e.Render("a\n\n\n\nb", ctx)
	require.True(t, res.OK)
	assert.Equal(t, "a\n\nb", res.Text)
}

func TestRender_ResultCacheHit(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{"name": eval.Text("ada")})
	_ = e.Render("hi {{ name }}", ctx)
	res := e.Render("hi {{ name }}", ctx)
	require.True(t, res.OK)
	stats := e.ResultStats()
	assert.Equal(t, int64(1), stats.Hits)
}

func TestRender_EphemeralContextNotCached(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{
		"items": eval.List([]eval.Value{eval.Text("a")}),
	})
	res := e.Render("{{#each items}}{{this}}{{/each}}", ctx)
	require.True(t, res.OK)
	assert.Equal(t, "a", res.Text)
}

func TestRender_CompileCacheReused(t *testing.T) {
	e := newTestEngine()
	c1 := e.Compile("same text")
	c2 := e.Compile("same text")
	assert.Same(t, c1, c2)
}

func TestRender_BlocksRewrittenHighToLowPreservesSpans(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{"a": eval.Bool(true), "b": eval.Bool(true)})
	template := "{{#if a}}A{{/if}}-{{#if b}}B{{/if}}"
	res := e.Render(template, ctx)
	require.True(t, res.OK)
	assert.Equal(t, "A-B", res.Text)
}

func TestRender_MultilineTemplate(t *testing.T) {
	e := newTestEngine()
	ctx := NewContext(map[string]eval.Value{
		"title": eval.Text("Report"),
		"rows":  eval.List([]eval.Value{eval.Text("x"), eval.Text("y")}),
	})
	template := strings.Join([]string{
		"# {{ title }}",
		"{{#each rows}}- {{this}}",
		"{{/each}}",
	}, "\n")
	res := e.Render(template, ctx)
	require.True(t, res.OK)
	assert.Contains(t, res.Text, "# Report")
	assert.Contains(t, res.Text, "- x")
	assert.Contains(t, res.Text, "- y")
}
