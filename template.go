package jinja2go

import (
	"sync"

	"github.com/wangzhaode/jinja2go/parser"
	"github.com/wangzhaode/jinja2go/value"
)

// Template is a compiled, immutable template: its AST and frozen
// default context never change after Compile returns. Per-render
// state (scope stack, output buffer, loop state, call depth) is
// allocated fresh for every Render call, so concurrent renders on the
// same Template are safe and produce independent output.
type Template struct {
	env            *Environment
	ast            []parser.Stmt
	source         string
	defaultContext *value.OrderedMap

	fnMu      sync.RWMutex
	functions *value.OrderedMap
}

// NewTemplate parses source and compiles it against a fresh
// Environment (built-ins only), matching the Host API's
// `new Template(source_text, default_context_json)` constructor.
func NewTemplate(source string, defaultContext value.Value) (*Template, error) {
	return Compile(source, defaultContext)
}

// AddFunction registers a host callable under name into this
// Template's own function registry. Per the concurrency model, this
// must not be called concurrently with Render; once a Render call has
// begun, the registry it reads is treated as immutable.
func (t *Template) AddFunction(name string, fn value.Callable) {
	t.fnMu.Lock()
	defer t.fnMu.Unlock()
	t.functions = t.functions.Clone()
	t.functions.Set(name, value.FromCallable(fn))
}

func (t *Template) functionsSnapshot() *value.OrderedMap {
	t.fnMu.RLock()
	defer t.fnMu.RUnlock()
	return t.functions
}

// Render merges context on top of this Template's default context
// (shallow per-key override at the root scope) and evaluates the AST,
// returning the rendered string or a RuntimeError.
func (t *Template) Render(context value.Value) (string, error) {
	root := value.NewOrderedMap()
	for name, v := range t.env.globalsSnapshot() {
		root.Set(name, v)
	}
	for _, k := range t.functionsSnapshot().Keys() {
		v, _ := t.functionsSnapshot().Get(k)
		root.Set(k, v)
	}
	root = root.Merge(t.defaultContext)
	if ctxMap, ok := context.AsMap(); ok {
		root = root.Merge(ctxMap)
	}

	interp := newInterpreter(t.env)
	scope := newScope(root, nil)
	if err := interp.execStmts(t.ast, scope); err != nil {
		return "", err
	}
	return interp.buf.String(), nil
}
