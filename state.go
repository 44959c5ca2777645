package jinja2go

import (
	"fmt"
	"strings"

	"github.com/wangzhaode/jinja2go/lexer"
	"github.com/wangzhaode/jinja2go/parser"
	"github.com/wangzhaode/jinja2go/value"
)

// maxCallDepth caps macro call nesting, converting runaway recursion
// into a RuntimeError instead of a Go stack overflow.
const maxCallDepth = 500

// scope is a lexically-chained, ordered name->Value mapping.
type scope struct {
	vars   *value.OrderedMap
	parent *scope
}

func newScope(vars *value.OrderedMap, parent *scope) *scope {
	if vars == nil {
		vars = value.NewOrderedMap()
	}
	return &scope{vars: vars, parent: parent}
}

func (s *scope) child() *scope {
	return newScope(value.NewOrderedMap(), s)
}

func (s *scope) lookup(name string) (value.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars.Get(name); ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// set binds name in the innermost scope, per Set's default behavior.
func (s *scope) set(name string, v value.Value) {
	s.vars.Set(name, v)
}

// macro is the runtime representation of a `{% macro %}` definition:
// it closes over the scope in which it was defined.
type macro struct {
	name    string
	params  []parser.MacroParam
	body    []parser.Stmt
	defScope *scope
	interp  *interpreter
	caller  value.Value // bound when invoked via {% call %}
}

type interpreter struct {
	env       *Environment
	buf       strings.Builder
	callDepth int
}

func newInterpreter(env *Environment) *interpreter {
	return &interpreter{env: env}
}

func (it *interpreter) rtErr(pos lexer.Position, format string, args ...interface{}) error {
	return NewRuntimeError(pos, fmt.Sprintf(format, args...))
}

// execStmts runs stmts in order, appending output to it.buf.
func (it *interpreter) execStmts(stmts []parser.Stmt, sc *scope) error {
	for _, s := range stmts {
		if err := it.execStmt(s, sc); err != nil {
			return err
		}
	}
	return nil
}

// execStmtsInto runs stmts into a fresh buffer and returns its text,
// used by block-form {% set %}, macro bodies, and {% call %} bodies.
func (it *interpreter) execStmtsInto(stmts []parser.Stmt, sc *scope) (string, error) {
	saved := it.buf
	it.buf = strings.Builder{}
	err := it.execStmts(stmts, sc)
	out := it.buf.String()
	it.buf = saved
	return out, err
}

func (it *interpreter) execStmt(s parser.Stmt, sc *scope) error {
	switch n := s.(type) {
	case *parser.Text:
		it.buf.WriteString(n.Value)
		return nil
	case *parser.Raw:
		it.buf.WriteString(n.Value)
		return nil
	case *parser.Output:
		v, err := it.eval(n.Expr, sc)
		if err != nil {
			return err
		}
		it.buf.WriteString(v.String())
		return nil
	case *parser.If:
		return it.execIf(n, sc)
	case *parser.For:
		return it.execFor(n, sc)
	case *parser.Set:
		return it.execSet(n, sc)
	case *parser.MacroDef:
		return it.execMacroDef(n, sc)
	case *parser.MacroCall:
		return it.execMacroCall(n, sc)
	default:
		return it.rtErr(s.Pos(), "unsupported statement node %T", n)
	}
}

func (it *interpreter) execIf(n *parser.If, sc *scope) error {
	for _, branch := range n.Branches {
		cond, err := it.eval(branch.Cond, sc)
		if err != nil {
			return err
		}
		if cond.IsTruthy() {
			return it.execStmts(branch.Body, sc.child())
		}
	}
	return it.execStmts(n.Else, sc.child())
}

func (it *interpreter) execFor(n *parser.For, sc *scope) error {
	iterVal, err := it.eval(n.Iter, sc)
	if err != nil {
		return err
	}
	elems, ok := iterVal.Iterate()
	if !ok {
		return it.rtErr(n.Pos(), "value of type %s is not iterable", iterVal.Kind())
	}

	if n.Filter != nil {
		var filtered []value.Value
		for _, el := range elems {
			trial := sc.child()
			if err := it.bindTargets(n.Targets, el, trial, n.Pos()); err != nil {
				return err
			}
			keep, err := it.eval(n.Filter, trial)
			if err != nil {
				return err
			}
			if keep.IsTruthy() {
				filtered = append(filtered, el)
			}
		}
		elems = filtered
	}

	if len(elems) == 0 {
		return it.execStmts(n.Else, sc.child())
	}

	for i, el := range elems {
		loopScope := sc.child()
		if err := it.bindTargets(n.Targets, el, loopScope, n.Pos()); err != nil {
			return err
		}
		loopScope.set("loop", it.buildLoopVar(elems, i))
		if err := it.execStmts(n.Body, loopScope); err != nil {
			return err
		}
	}
	return nil
}

func (it *interpreter) bindTargets(targets []string, el value.Value, sc *scope, pos lexer.Position) error {
	if len(targets) == 1 {
		sc.set(targets[0], el)
		return nil
	}
	parts, ok := el.AsSeq()
	if !ok || len(parts) != len(targets) {
		return it.rtErr(pos, "cannot unpack %d target(s) from this element", len(targets))
	}
	for i, name := range targets {
		sc.set(name, parts[i])
	}
	return nil
}

func (it *interpreter) buildLoopVar(elems []value.Value, i int) value.Value {
	m := value.NewOrderedMap()
	n := len(elems)
	m.Set("index", value.Int(int64(i+1)))
	m.Set("index0", value.Int(int64(i)))
	m.Set("revindex", value.Int(int64(n-i)))
	m.Set("revindex0", value.Int(int64(n-i-1)))
	m.Set("first", value.Bool(i == 0))
	m.Set("last", value.Bool(i == n-1))
	m.Set("length", value.Int(int64(n)))
	if i > 0 {
		m.Set("previtem", elems[i-1])
	} else {
		m.Set("previtem", value.None())
	}
	if i < n-1 {
		m.Set("nextitem", elems[i+1])
	} else {
		m.Set("nextitem", value.None())
	}
	m.Set("cycle", value.FromCallable(func(args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
		if len(args) == 0 {
			return value.None(), nil
		}
		return args[i%len(args)], nil
	}))
	return value.Map(m)
}

func (it *interpreter) execSet(n *parser.Set, sc *scope) error {
	if n.Attr != "" {
		target, ok := sc.lookup(n.Targets[0])
		if !ok {
			return it.rtErr(n.Pos(), "%q is not defined", n.Targets[0])
		}
		m, ok := target.AsMap()
		if !ok {
			return it.rtErr(n.Pos(), "cannot set attribute on a value of type %s", target.Kind())
		}
		v, err := it.eval(n.Expr, sc)
		if err != nil {
			return err
		}
		m.Set(n.Attr, v)
		return nil
	}
	var result value.Value
	var err error
	if n.Body != nil {
		text, e := it.execStmtsInto(n.Body, sc.child())
		if e != nil {
			return e
		}
		result = value.Str(text)
	} else {
		result, err = it.eval(n.Expr, sc)
		if err != nil {
			return err
		}
	}
	if len(n.Targets) == 1 {
		sc.set(n.Targets[0], result)
		return nil
	}
	parts, ok := result.AsSeq()
	if !ok || len(parts) != len(n.Targets) {
		return it.rtErr(n.Pos(), "cannot unpack %d target(s) from set expression", len(n.Targets))
	}
	for i, name := range n.Targets {
		sc.set(name, parts[i])
	}
	return nil
}

func (it *interpreter) execMacroDef(n *parser.MacroDef, sc *scope) error {
	m := &macro{name: n.Name, params: n.Params, body: n.Body, defScope: sc, interp: it}
	sc.set(n.Name, value.FromCallable(m.invoke))
	return nil
}

func (it *interpreter) execMacroCall(n *parser.MacroCall, sc *scope) error {
	callee, err := it.eval(n.Callee, sc)
	if err != nil {
		return err
	}
	fn, ok := callee.AsCallable()
	if !ok {
		return it.rtErr(n.Pos(), "%s is not callable", callee.Kind())
	}
	args, kwargs, err := it.evalArgs(n.Args, n.Kwargs, sc)
	if err != nil {
		return err
	}
	if n.CallerBody != nil {
		callerFn := func(_ []value.Value, _ *value.OrderedMap) (value.Value, error) {
			text, err := it.execStmtsInto(n.CallerBody, sc.child())
			if err != nil {
				return value.Value{}, err
			}
			return value.Str(text), nil
		}
		if kwargs == nil {
			kwargs = value.NewOrderedMap()
		} else {
			kwargs = kwargs.Clone()
		}
		kwargs.Set("caller", value.FromCallable(callerFn))
	}
	result, err := it.callWithDepth(n.Pos(), fn, args, kwargs)
	if err != nil {
		return err
	}
	it.buf.WriteString(result.String())
	return nil
}

func (it *interpreter) callWithDepth(pos lexer.Position, fn value.Callable, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	it.callDepth++
	defer func() { it.callDepth-- }()
	if it.callDepth > maxCallDepth {
		return value.Value{}, it.rtErr(pos, "maximum macro call depth (%d) exceeded", maxCallDepth)
	}
	v, err := fn(args, kwargs)
	if err != nil {
		if _, ok := err.(*Error); ok {
			return value.Value{}, err
		}
		return value.Value{}, it.rtErr(pos, "%s", err.Error())
	}
	return v, nil
}

// invoke is the value.Callable a macro definition binds into scope.
// It opens a scope that chains to the macro's definition scope (so
// free names resolve against the environment the macro was defined
// in, even if that scope has since been popped off the current call
// stack), binds parameters positionally then by keyword with
// defaults, executes the body into a fresh buffer, and returns it.
func (m *macro) invoke(args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	callScope := m.defScope.child()
	if kwargs != nil {
		if caller, ok := kwargs.Get("caller"); ok {
			callScope.set("caller", caller)
		}
	}
	for i, p := range m.params {
		if i < len(args) {
			callScope.set(p.Name, args[i])
			continue
		}
		if kwargs != nil {
			if v, ok := kwargs.Get(p.Name); ok {
				callScope.set(p.Name, v)
				continue
			}
		}
		if p.Default != nil {
			v, err := m.interp.eval(p.Default, callScope)
			if err != nil {
				return value.Value{}, err
			}
			callScope.set(p.Name, v)
			continue
		}
		callScope.set(p.Name, value.None())
	}
	text, err := m.interp.execStmtsInto(m.body, callScope)
	if err != nil {
		return value.Value{}, err
	}
	return value.Str(text), nil
}

func (it *interpreter) evalArgs(argExprs []parser.Expr, kwargExprs []parser.Arg, sc *scope) ([]value.Value, *value.OrderedMap, error) {
	args := make([]value.Value, 0, len(argExprs))
	for _, a := range argExprs {
		v, err := it.eval(a, sc)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, v)
	}
	var kwargs *value.OrderedMap
	if len(kwargExprs) > 0 {
		kwargs = value.NewOrderedMap()
		for _, kw := range kwargExprs {
			v, err := it.eval(kw.Value, sc)
			if err != nil {
				return nil, nil, err
			}
			kwargs.Set(kw.Name, v)
		}
	}
	return args, kwargs, nil
}
