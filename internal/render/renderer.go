package render

import (
	"fmt"
	"regexp"

	apperrors "github.com/standardbeagle/tmplctl/internal/errors"
	"github.com/standardbeagle/tmplctl/internal/eval"
)

// Compiled is an immutable, parsed template, cached by exact source
// text.
type Compiled struct {
	Source string
}

// Result is the outcome of a render call.
type Result struct {
	OK       bool
	Text     string
	Errors   []error
	Warnings []string
	Debug    map[string]any
}

// Engine parses block markers, walks blocks, calls the expression
// evaluator per condition, expands variables, and produces rendered
// text. It owns a compiled-template cache and a rendered-result cache,
// both size-bounded.
type Engine struct {
	Evaluator    *eval.Evaluator
	compileCache *boundedCache
	resultCache  *boundedCache
}

// NewEngine builds a renderer backed by its own evaluator.
func NewEngine(evaluator *eval.Evaluator) *Engine {
	if evaluator == nil {
		evaluator = eval.NewEvaluator()
	}
	return &Engine{
		Evaluator:    evaluator,
		compileCache: newBoundedCache(DefaultMaxCacheSize),
		resultCache:  newBoundedCache(DefaultMaxCacheSize),
	}
}

// CompileStats reports the compiled-template cache counters.
func (e *Engine) CompileStats() Counters { return e.compileCache.Stats() }

// ResultStats reports the rendered-result cache counters.
func (e *Engine) ResultStats() Counters { return e.resultCache.Stats() }

// ClearCaches discards both caches.
func (e *Engine) ClearCaches() {
	e.compileCache.Clear()
	e.resultCache.Clear()
}

// Compile parses template and caches the result keyed by its exact
// text.
func (e *Engine) Compile(template string) *Compiled {
	if v, ok := e.compileCache.Get(template); ok {
		return v.(*Compiled)
	}
	c := &Compiled{Source: template}
	e.compileCache.Put(template, c)
	return c
}

// Render compiles (via the cache) and renders template against ctx.
func (e *Engine) Render(template string, ctx *Context) Result {
	return e.RenderCompiled(e.Compile(template), ctx)
}

// RenderCompiled renders a previously compiled template against ctx,
// consulting and populating the rendered-result cache.
func (e *Engine) RenderCompiled(compiled *Compiled, ctx *Context) Result {
	if ctx == nil {
		ctx = NewContext(nil)
	}

	cacheable := ctx.CacheEnabled && !ctx.ephemeral
	var key string
	if cacheable {
		key = fpKey(fingerprint(compiled.Source, ctx.Variables))
		if v, ok := e.resultCache.Get(key); ok {
			return v.(Result)
		}
	}

	text, fatal, warnings := e.renderBlocks(compiled.Source, ctx)
	if fatal != nil {
		return Result{OK: false, Errors: []error{fatal}, Warnings: warnings}
	}

	substituted, subWarnings := e.substituteVariables(text, ctx)
	warnings = append(warnings, subWarnings...)
	final := collapseNewlines(substituted)

	result := Result{OK: true, Text: final, Warnings: warnings}
	if ctx.Debug {
		result.Debug = map[string]any{"fingerprint_key": key}
	}
	if cacheable {
		e.resultCache.Put(key, result)
	}
	return result
}

// renderBlocks extracts all block markers, rewrites them in reverse
// start-position order so each rewrite's byte offsets stay valid for
// the ones still pending, then returns the rewritten text. A nil
// error result means success;
// a non-nil error is fatal (bubbles to the caller without becoming a
// mere warning) except where each/with explicitly catch it.
func (e *Engine) renderBlocks(text string, ctx *Context) (string, error, []string) {
	if ctx.depth > int(ctx.MaxNesting) {
		return "", apperrors.NewRenderError(apperrors.KindNestingTooDeep, "", fmt.Sprintf("exceeded max nesting %d", ctx.MaxNesting), nil), nil
	}

	blocks := ExtractBlocks(text)
	var warnings []string
	result := text
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		replacement, fatal, blockWarnings := e.renderBlock(b, ctx)
		warnings = append(warnings, blockWarnings...)
		if fatal != nil {
			return "", fatal, warnings
		}
		result = result[:b.Start] + replacement + result[b.End:]
	}
	return result, nil, warnings
}

func (e *Engine) renderBlock(b Block, ctx *Context) (string, error, []string) {
	switch b.Kind {
	case KindIf:
		return e.renderIfUnless(b, ctx, false)
	case KindUnless:
		return e.renderIfUnless(b, ctx, true)
	case KindEach:
		return e.renderEach(b, ctx)
	case KindWith:
		return e.renderWith(b, ctx)
	default:
		return "", nil, []string{fmt.Sprintf("unknown block kind %q", b.Kind)}
	}
}

func (e *Engine) renderIfUnless(b Block, ctx *Context, invert bool) (string, error, []string) {
	var warnings []string
	val, err := e.Evaluator.Evaluate(b.Condition, ctx.Variables)
	cond := val.Truthy()
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("condition %q failed: %v", b.Condition, err))
		// failed condition evaluation is falsy for if, truthy for unless
		cond = invert
	}
	if invert {
		cond = !cond
	}

	body := b.Else
	if cond {
		body = b.Body
	}

	rendered, fatal, bw := e.renderBlocks(body, ctx.child(nil, false))
	warnings = append(warnings, bw...)
	if fatal != nil {
		return "", fatal, warnings
	}
	return rendered, nil, warnings
}

func (e *Engine) renderEach(b Block, ctx *Context) (string, error, []string) {
	var warnings []string
	val, err := e.Evaluator.Evaluate(b.Condition, ctx.Variables)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("each condition %q failed: %v", b.Condition, err))
		return "", nil, warnings
	}
	if val.Kind() != eval.KindList {
		warnings = append(warnings, fmt.Sprintf("each condition %q did not evaluate to a list", b.Condition))
		return "", nil, warnings
	}

	items := val.AsList()
	var out string
	for i, item := range items {
		extra := map[string]eval.Value{
			"this":    item,
			"@index":  eval.Number(float64(i)),
			"@first":  eval.Bool(i == 0),
			"@last":   eval.Bool(i == len(items)-1),
		}
		child := ctx.child(extra, true)
		rendered, fatal, bw := e.renderBlocks(b.Body, child)
		warnings = append(warnings, bw...)
		if fatal != nil {
			// failed child render within each inserts nothing for that
			// iteration and appends a warning.
			warnings = append(warnings, fmt.Sprintf("each iteration %d failed: %v", i, fatal))
			continue
		}
		rendered, sw := e.substituteVariables(rendered, child)
		warnings = append(warnings, sw...)
		out += rendered
	}
	return out, nil, warnings
}

func (e *Engine) renderWith(b Block, ctx *Context) (string, error, []string) {
	var warnings []string
	val, err := e.Evaluator.Evaluate(b.Condition, ctx.Variables)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("with condition %q failed: %v", b.Condition, err))
		return "", nil, warnings
	}
	if val.Kind() != eval.KindMap {
		warnings = append(warnings, fmt.Sprintf("with condition %q did not evaluate to a map", b.Condition))
		return "", nil, warnings
	}

	child := ctx.child(val.AsMap(), false)
	rendered, fatal, bw := e.renderBlocks(b.Body, child)
	warnings = append(warnings, bw...)
	if fatal != nil {
		warnings = append(warnings, fmt.Sprintf("with block failed: %v", fatal))
		return "", nil, warnings
	}
	rendered, sw := e.substituteVariables(rendered, child)
	warnings = append(warnings, sw...)
	return rendered, nil, warnings
}

func (e *Engine) substituteVariables(text string, ctx *Context) (string, []string) {
	var warnings []string
	result := variablePattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := variablePattern.FindStringSubmatch(match)
		path := sub[1]
		val, err := e.Evaluator.Evaluate(path, ctx.Variables)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("variable %q failed: %v", path, err))
			return ""
		}
		return val.ToText()
	})
	return result, warnings
}

var tripleNewline = regexp.MustCompile(`\n{3,}`)

func collapseNewlines(text string) string {
	return tripleNewline.ReplaceAllString(text, "\n\n")
}
