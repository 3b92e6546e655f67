package eval

import (
	"sync"
)

// UserFn is a built-in or user-registered function implementation.
type UserFn func(e *Evaluator, expr string, args []Value) (Value, error)

// Evaluator parses and evaluates expressions over a variable map. It
// owns a parse cache keyed by exact input text and a registry of
// built-in plus user-registered functions.
type Evaluator struct {
	mu        sync.Mutex
	parsed    map[string]Node
	order     []string // insertion order, for bounded eviction
	functions map[string]UserFn
	maxCache  int

	compilations int64
	hits         int64
	misses       int64
	evictions    int64
}

// DefaultMaxParseCache bounds the compiled-expression cache.
const DefaultMaxParseCache = 1000

// NewEvaluator creates an Evaluator with all built-in functions
// registered.
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		parsed:    make(map[string]Node),
		functions: make(map[string]UserFn),
		maxCache:  DefaultMaxParseCache,
	}
	registerBuiltins(e)
	return e
}

// RegisterFunction adds or replaces a callable function by name.
func (e *Evaluator) RegisterFunction(name string, fn UserFn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.functions[name] = fn
}

// ClearCache discards all cached parse trees and resets counters.
func (e *Evaluator) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.parsed = make(map[string]Node)
	e.order = nil
	e.compilations, e.hits, e.misses, e.evictions = 0, 0, 0, 0
}

// CacheStats reports parse-cache counters.
type CacheStats struct {
	Hits, Misses, Compilations, Evictions int64
	Size                                  int
}

// Stats returns the current parse-cache counters.
func (e *Evaluator) Stats() CacheStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return CacheStats{Hits: e.hits, Misses: e.misses, Compilations: e.compilations, Evictions: e.evictions, Size: len(e.parsed)}
}

// Evaluate parses (using the cache) and evaluates expr against
// variables, returning a tagged Value or a typed error.
func (e *Evaluator) Evaluate(expr string, variables map[string]Value) (Value, error) {
	node, err := e.compile(expr)
	if err != nil {
		return Null, err
	}
	return e.eval(expr, node, variables)
}

func (e *Evaluator) compile(expr string) (Node, error) {
	e.mu.Lock()
	if node, ok := e.parsed[expr]; ok {
		e.hits++
		e.mu.Unlock()
		return node, nil
	}
	e.misses++
	e.mu.Unlock()

	if err := checkSandbox(expr); err != nil {
		return nil, err
	}
	node, err := parseExpr(expr)
	if err != nil {
		pf, _ := err.(*parseFailure)
		pos := 0
		msg := err.Error()
		if pf != nil {
			pos = pf.pos
		}
		return nil, errParseAt(expr, pos, msg)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.parsed[expr]; !ok {
		if len(e.order) >= e.maxCache {
			oldest := e.order[0]
			e.order = e.order[1:]
			delete(e.parsed, oldest)
			e.evictions++
		}
		e.parsed[expr] = node
		e.order = append(e.order, expr)
		e.compilations++
	}
	return node, nil
}

func (e *Evaluator) eval(expr string, node Node, vars map[string]Value) (Value, error) {
	switch n := node.(type) {
	case Literal:
		return n.Value, nil
	case VarRef:
		return e.evalVarRef(expr, n, vars)
	case Member:
		target, err := e.eval(expr, n.Target, vars)
		if err != nil {
			return Null, err
		}
		if target.Kind() == KindMap {
			if v, ok := target.AsMap()[n.Name]; ok {
				return v, nil
			}
			return Null, nil
		}
		return Null, nil
	case Unary:
		return e.evalUnary(expr, n, vars)
	case Binary:
		return e.evalBinary(expr, n, vars)
	case Call:
		return e.evalCall(expr, n, vars)
	default:
		return Null, errParseAt(expr, 0, "unrecognized expression node")
	}
}

func (e *Evaluator) evalVarRef(expr string, ref VarRef, vars map[string]Value) (Value, error) {
	root, ok := vars[ref.Path[0]]
	if !ok {
		return Null, errVarUndefined(expr, ref.Path[0])
	}
	cur := root
	for _, seg := range ref.Path[1:] {
		if cur.Kind() != KindMap {
			return Null, nil
		}
		next, ok := cur.AsMap()[seg]
		if !ok {
			return Null, nil
		}
		cur = next
	}
	return cur, nil
}

func (e *Evaluator) evalUnary(expr string, u Unary, vars map[string]Value) (Value, error) {
	v, err := e.eval(expr, u.Child, vars)
	if err != nil {
		return Null, err
	}
	switch u.Op {
	case "not":
		return Bool(!v.Truthy()), nil
	case "-":
		if v.Kind() != KindNumber && v.Kind() != KindText {
			return Null, errTypeMismatch(expr, "-", v.Kind(), v.Kind())
		}
		return Number(-v.Number()), nil
	default:
		return Null, errParseAt(expr, 0, "unknown unary operator "+u.Op)
	}
}

func (e *Evaluator) evalBinary(expr string, b Binary, vars map[string]Value) (Value, error) {
	left, err := e.eval(expr, b.Left, vars)
	if err != nil {
		return Null, err
	}

	switch b.Op {
	case "or":
		if left.Truthy() {
			return Bool(true), nil
		}
		right, err := e.eval(expr, b.Right, vars)
		if err != nil {
			return Null, err
		}
		return Bool(right.Truthy()), nil
	case "and":
		if !left.Truthy() {
			return Bool(false), nil
		}
		right, err := e.eval(expr, b.Right, vars)
		if err != nil {
			return Null, err
		}
		return Bool(right.Truthy()), nil
	}

	right, err := e.eval(expr, b.Right, vars)
	if err != nil {
		return Null, err
	}

	switch b.Op {
	case "xor":
		return Bool(left.Truthy() != right.Truthy()), nil
	case "==":
		return Bool(left.Equal(right)), nil
	case "!=":
		return Bool(!left.Equal(right)), nil
	case "<", "<=", ">", ">=":
		ln, rn := left.Number(), right.Number()
		switch b.Op {
		case "<":
			return Bool(ln < rn), nil
		case "<=":
			return Bool(ln <= rn), nil
		case ">":
			return Bool(ln > rn), nil
		default:
			return Bool(ln >= rn), nil
		}
	case "+":
		if left.Kind() == KindText || right.Kind() == KindText {
			return Text(left.ToText() + right.ToText()), nil
		}
		return Number(left.Number() + right.Number()), nil
	case "-":
		return Number(left.Number() - right.Number()), nil
	case "*":
		return Number(left.Number() * right.Number()), nil
	case "/":
		if right.Number() == 0 {
			return Null, errDivByZero(expr)
		}
		return Number(left.Number() / right.Number()), nil
	case "%":
		rn := right.Number()
		if rn == 0 {
			return Null, errDivByZero(expr)
		}
		ln := left.Number()
		mod := ln - rn*float64(int64(ln/rn))
		return Number(mod), nil
	default:
		return Null, errParseAt(expr, 0, "unknown binary operator "+b.Op)
	}
}

func (e *Evaluator) evalCall(expr string, c Call, vars map[string]Value) (Value, error) {
	e.mu.Lock()
	fn, ok := e.functions[c.Name]
	e.mu.Unlock()
	if !ok {
		return Null, errUnknownFunc(expr, c.Name)
	}
	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		v, err := e.eval(expr, a, vars)
		if err != nil {
			return Null, err
		}
		args[i] = v
	}
	return fn(e, expr, args)
}
