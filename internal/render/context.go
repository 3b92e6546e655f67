package render

import "github.com/standardbeagle/tmplctl/internal/eval"

// Context is the render-time variable/function environment.
type Context struct {
	Variables   map[string]eval.Value
	Functions   map[string]eval.UserFn
	Debug       bool
	CacheEnabled bool
	MaxNesting  uint32

	depth int
	// ephemeral marks a context built for an each/with iteration; such
	// contexts are excluded from the result-cache fingerprint since
	// their variables are derived, not caller-supplied.
	ephemeral bool
}

// DefaultMaxNesting is the renderer's default recursion ceiling.
const DefaultMaxNesting = 10

// NewContext builds a root render context with the given variables.
func NewContext(variables map[string]eval.Value) *Context {
	return &Context{
		Variables:    variables,
		Functions:    make(map[string]eval.UserFn),
		CacheEnabled: true,
		MaxNesting:   DefaultMaxNesting,
	}
}

// child builds a nested context whose variables are the parent's plus
// extra, with extra winning on key collision.
func (c *Context) child(extra map[string]eval.Value, ephemeral bool) *Context {
	merged := make(map[string]eval.Value, len(c.Variables)+len(extra))
	for k, v := range c.Variables {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return &Context{
		Variables:    merged,
		Functions:    c.Functions,
		Debug:        c.Debug,
		CacheEnabled: c.CacheEnabled,
		MaxNesting:   c.MaxNesting,
		depth:        c.depth + 1,
		ephemeral:    c.ephemeral || ephemeral,
	}
}
