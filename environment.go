package jinja2go

import (
	"sync"

	"github.com/wangzhaode/jinja2go/parser"
	"github.com/wangzhaode/jinja2go/value"
)

// FilterFunc is the signature every filter implements: the left-hand
// operand of `|`, followed by positional and keyword arguments.
type FilterFunc func(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error)

// TestFunc is the signature every `is` test implements.
type TestFunc func(input value.Value, args []value.Value) (bool, error)

// Environment owns the registries of filters, tests, and globals
// (built-ins plus host-registered functions) that every Template
// compiled from it shares. It follows the teacher's functional-setter
// configuration style rather than a config struct: construct with
// NewEnvironment and configure with the AddXxx methods.
type Environment struct {
	mu      sync.RWMutex
	filters map[string]FilterFunc
	tests   map[string]TestFunc
	globals map[string]value.Value
}

// NewEnvironment returns an Environment seeded with every built-in
// filter, test, and global this engine specifies.
func NewEnvironment() *Environment {
	env := &Environment{
		filters: make(map[string]FilterFunc),
		tests:   make(map[string]TestFunc),
		globals: make(map[string]value.Value),
	}
	registerBuiltinFilters(env)
	registerBuiltinTests(env)
	registerBuiltinGlobals(env)
	return env
}

// AddFilter registers a filter under name, usable as `expr | name(...)`.
func (e *Environment) AddFilter(name string, fn FilterFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters[name] = fn
}

// AddTest registers a test under name, usable as `expr is name(...)`.
func (e *Environment) AddTest(name string, fn TestFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tests[name] = fn
}

// AddGlobal registers a value visible by name at the root scope of
// every template compiled from this Environment.
func (e *Environment) AddGlobal(name string, v value.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.globals[name] = v
}

// AddFunction registers a host callable under name, visible at the
// root scope the same way AddGlobal's value is. This is the
// Environment-level counterpart of Template.AddFunction.
func (e *Environment) AddFunction(name string, fn value.Callable) {
	e.AddGlobal(name, value.FromCallable(fn))
}

func (e *Environment) filter(name string) (FilterFunc, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn, ok := e.filters[name]
	return fn, ok
}

func (e *Environment) test(name string) (TestFunc, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn, ok := e.tests[name]
	return fn, ok
}

func (e *Environment) globalsSnapshot() map[string]value.Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]value.Value, len(e.globals))
	for k, v := range e.globals {
		out[k] = v
	}
	return out
}

// Compile parses source once and returns an immutable Template bound
// to this Environment's filter/test/global registries, with
// defaultContext frozen as the template's compile-time context.
// SyntaxError is returned on parse failure.
func (e *Environment) Compile(source string, defaultContext value.Value) (*Template, error) {
	stmts, err := parser.Parse(source)
	if err != nil {
		if se, ok := err.(*parser.SyntaxError); ok {
			return nil, NewSyntaxError(se.Pos, se.Msg)
		}
		return nil, err
	}
	ctxMap, _ := defaultContext.AsMap()
	if ctxMap == nil {
		ctxMap = value.NewOrderedMap()
	}
	return &Template{
		env:            e,
		ast:            stmts,
		source:         source,
		defaultContext: ctxMap,
		functions:      value.NewOrderedMap(),
	}, nil
}

// Compile is a package-level convenience equivalent to
// NewEnvironment().Compile(source, defaultContext), matching the
// Host API's `compile(source, default_context) -> Template` entry
// point directly.
func Compile(source string, defaultContext value.Value) (*Template, error) {
	return NewEnvironment().Compile(source, defaultContext)
}
