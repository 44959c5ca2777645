package jinja2go

import (
	"github.com/wangzhaode/jinja2go/lexer"
	"github.com/wangzhaode/jinja2go/parser"
	"github.com/wangzhaode/jinja2go/value"
)

// eval evaluates an expression node. Name lookups and attribute/index
// access are permissive: an unbound name or a missing key/attribute
// yields None rather than erroring, matching the behavior real chat
// templates rely on (see isDefinedExpr for the counterpart `is
// defined` needs to distinguish the two cases).
func (it *interpreter) eval(e parser.Expr, sc *scope) (value.Value, error) {
	switch n := e.(type) {
	case *parser.NullLit:
		return value.None(), nil
	case *parser.BoolLit:
		return value.Bool(n.Value), nil
	case *parser.IntLit:
		return value.Int(n.Value), nil
	case *parser.FloatLit:
		return value.Float(n.Value), nil
	case *parser.StrLit:
		return value.Str(n.Value), nil
	case *parser.Name:
		v, _ := sc.lookup(n.Ident)
		return v, nil
	case *parser.GetAttr:
		return it.evalGetAttr(n, sc)
	case *parser.GetItem:
		return it.evalGetItem(n, sc)
	case *parser.Slice:
		return it.evalSlice(n, sc)
	case *parser.Unary:
		return it.evalUnary(n, sc)
	case *parser.Binary:
		return it.evalBinary(n, sc)
	case *parser.Ternary:
		return it.evalTernary(n, sc)
	case *parser.Call:
		return it.evalCall(n, sc)
	case *parser.Filter:
		return it.evalFilter(n, sc)
	case *parser.Test:
		return it.evalTest(n, sc)
	case *parser.ListLit:
		return it.evalListLit(n, sc)
	case *parser.TupleLit:
		return it.evalTupleLit(n, sc)
	case *parser.DictLit:
		return it.evalDictLit(n, sc)
	default:
		return value.Value{}, it.rtErr(e.Pos(), "unsupported expression node %T", n)
	}
}

func (it *interpreter) evalGetAttr(n *parser.GetAttr, sc *scope) (value.Value, error) {
	obj, err := it.eval(n.Obj, sc)
	if err != nil {
		return value.Value{}, err
	}
	return obj.GetAttr(n.Field), nil
}

func (it *interpreter) evalGetItem(n *parser.GetItem, sc *scope) (value.Value, error) {
	obj, err := it.eval(n.Obj, sc)
	if err != nil {
		return value.Value{}, err
	}
	key, err := it.eval(n.Key, sc)
	if err != nil {
		return value.Value{}, err
	}
	return obj.GetItem(key), nil
}

func (it *interpreter) evalSlice(n *parser.Slice, sc *scope) (value.Value, error) {
	obj, err := it.eval(n.Obj, sc)
	if err != nil {
		return value.Value{}, err
	}
	start, err := it.evalOptionalInt(n.Start, sc)
	if err != nil {
		return value.Value{}, err
	}
	stop, err := it.evalOptionalInt(n.Stop, sc)
	if err != nil {
		return value.Value{}, err
	}
	step, err := it.evalOptionalInt(n.Step, sc)
	if err != nil {
		return value.Value{}, err
	}
	return obj.Slice(start, stop, step), nil
}

func (it *interpreter) evalOptionalInt(e parser.Expr, sc *scope) (*int64, error) {
	if e == nil {
		return nil, nil
	}
	v, err := it.eval(e, sc)
	if err != nil {
		return nil, err
	}
	i, ok := v.AsInt()
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (it *interpreter) evalUnary(n *parser.Unary, sc *scope) (value.Value, error) {
	x, err := it.eval(n.X, sc)
	if err != nil {
		return value.Value{}, err
	}
	switch n.Op {
	case "not":
		return value.Bool(!x.IsTruthy()), nil
	case "-":
		v, err := value.Neg(x)
		if err != nil {
			return value.Value{}, it.rtErr(n.Pos(), "%s", err.Error())
		}
		return v, nil
	case "+":
		return x, nil
	default:
		return value.Value{}, it.rtErr(n.Pos(), "unknown unary operator %q", n.Op)
	}
}

func (it *interpreter) evalBinary(n *parser.Binary, sc *scope) (value.Value, error) {
	if n.Op == "and" {
		l, err := it.eval(n.Left, sc)
		if err != nil {
			return value.Value{}, err
		}
		if !l.IsTruthy() {
			return l, nil
		}
		return it.eval(n.Right, sc)
	}
	if n.Op == "or" {
		l, err := it.eval(n.Left, sc)
		if err != nil {
			return value.Value{}, err
		}
		if l.IsTruthy() {
			return l, nil
		}
		return it.eval(n.Right, sc)
	}

	l, err := it.eval(n.Left, sc)
	if err != nil {
		return value.Value{}, err
	}
	r, err := it.eval(n.Right, sc)
	if err != nil {
		return value.Value{}, err
	}

	switch n.Op {
	case "+":
		v, err := value.Add(l, r)
		return v, it.arithErr(n.Pos(), err)
	case "-":
		v, err := value.Sub(l, r)
		return v, it.arithErr(n.Pos(), err)
	case "*":
		v, err := value.Mul(l, r)
		return v, it.arithErr(n.Pos(), err)
	case "/":
		v, err := value.Div(l, r)
		return v, it.arithErr(n.Pos(), err)
	case "//":
		v, err := value.FloorDiv(l, r)
		return v, it.arithErr(n.Pos(), err)
	case "%":
		v, err := value.Rem(l, r)
		return v, it.arithErr(n.Pos(), err)
	case "**":
		v, err := value.Pow(l, r)
		return v, it.arithErr(n.Pos(), err)
	case "~":
		return value.Concat(l, r), nil
	case "==":
		return value.Bool(value.Equal(l, r)), nil
	case "!=":
		return value.Bool(!value.Equal(l, r)), nil
	case "<", "<=", ">", ">=":
		cmp, ok := value.Compare(l, r)
		if !ok {
			return value.Value{}, it.rtErr(n.Pos(), "cannot compare %s and %s", l.Kind(), r.Kind())
		}
		switch n.Op {
		case "<":
			return value.Bool(cmp < 0), nil
		case "<=":
			return value.Bool(cmp <= 0), nil
		case ">":
			return value.Bool(cmp > 0), nil
		default:
			return value.Bool(cmp >= 0), nil
		}
	case "in":
		ok, err := value.Contains(l, r)
		if err != nil {
			return value.Value{}, it.rtErr(n.Pos(), "%s", err.Error())
		}
		return value.Bool(ok), nil
	default:
		return value.Value{}, it.rtErr(n.Pos(), "unknown binary operator %q", n.Op)
	}
}

func (it *interpreter) arithErr(pos lexer.Position, err error) error {
	if err == nil {
		return nil
	}
	return it.rtErr(pos, "%s", err.Error())
}

func (it *interpreter) evalTernary(n *parser.Ternary, sc *scope) (value.Value, error) {
	cond, err := it.eval(n.Cond, sc)
	if err != nil {
		return value.Value{}, err
	}
	if cond.IsTruthy() {
		return it.eval(n.Then, sc)
	}
	if n.Else == nil {
		return value.None(), nil
	}
	return it.eval(n.Else, sc)
}

func (it *interpreter) evalCall(n *parser.Call, sc *scope) (value.Value, error) {
	callee, err := it.eval(n.Callee, sc)
	if err != nil {
		return value.Value{}, err
	}
	fn, ok := callee.AsCallable()
	if !ok {
		return value.Value{}, it.rtErr(n.Pos(), "%s is not callable", callee.Kind())
	}
	args, kwargs, err := it.evalArgs(n.Args, n.Kwargs, sc)
	if err != nil {
		return value.Value{}, err
	}
	return it.callWithDepth(n.Pos(), fn, args, kwargs)
}

func (it *interpreter) evalFilter(n *parser.Filter, sc *scope) (value.Value, error) {
	input, err := it.eval(n.Input, sc)
	if err != nil {
		return value.Value{}, err
	}
	fn, ok := it.env.filter(n.Name)
	if !ok {
		return value.Value{}, it.rtErr(n.Pos(), "unknown filter %q", n.Name)
	}
	args, kwargs, err := it.evalArgs(n.Args, n.Kwargs, sc)
	if err != nil {
		return value.Value{}, err
	}
	v, err := fn(input, args, kwargs)
	if err != nil {
		if e, ok := err.(*Error); ok {
			return value.Value{}, e
		}
		return value.Value{}, it.rtErr(n.Pos(), "%s", err.Error())
	}
	return v, nil
}

func (it *interpreter) evalTest(n *parser.Test, sc *scope) (value.Value, error) {
	if n.Name == "defined" {
		ok := it.isDefinedExpr(n.Input, sc)
		if n.Negated {
			ok = !ok
		}
		return value.Bool(ok), nil
	}
	if n.Name == "undefined" {
		ok := !it.isDefinedExpr(n.Input, sc)
		if n.Negated {
			ok = !ok
		}
		return value.Bool(ok), nil
	}
	input, err := it.eval(n.Input, sc)
	if err != nil {
		return value.Value{}, err
	}
	fn, ok := it.env.test(n.Name)
	if !ok {
		return value.Value{}, it.rtErr(n.Pos(), "unknown test %q", n.Name)
	}
	args := make([]value.Value, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := it.eval(a, sc)
		if err != nil {
			return value.Value{}, err
		}
		args = append(args, v)
	}
	result, err := fn(input, args)
	if err != nil {
		return value.Value{}, it.rtErr(n.Pos(), "%s", err.Error())
	}
	if n.Negated {
		result = !result
	}
	return value.Bool(result), nil
}

// isDefinedExpr reports whether evaluating e would resolve to a real
// binding rather than falling back to None through a permissive
// lookup. It only understands the shapes real templates actually use
// this test on: a bare name, and attribute access on a Map.
func (it *interpreter) isDefinedExpr(e parser.Expr, sc *scope) bool {
	switch n := e.(type) {
	case *parser.Name:
		_, ok := sc.lookup(n.Ident)
		return ok
	case *parser.GetAttr:
		obj, err := it.eval(n.Obj, sc)
		if err != nil || obj.IsNone() {
			return false
		}
		return obj.IsDefinedAttr(n.Field)
	default:
		return true
	}
}

func (it *interpreter) evalListLit(n *parser.ListLit, sc *scope) (value.Value, error) {
	items := make([]value.Value, 0, len(n.Items))
	for _, e := range n.Items {
		v, err := it.eval(e, sc)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
	}
	return value.Seq(items), nil
}

func (it *interpreter) evalTupleLit(n *parser.TupleLit, sc *scope) (value.Value, error) {
	items := make([]value.Value, 0, len(n.Items))
	for _, e := range n.Items {
		v, err := it.eval(e, sc)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
	}
	return value.Seq(items), nil
}

func (it *interpreter) evalDictLit(n *parser.DictLit, sc *scope) (value.Value, error) {
	m := value.NewOrderedMap()
	for i, k := range n.Keys {
		kv, err := it.eval(k, sc)
		if err != nil {
			return value.Value{}, err
		}
		vv, err := it.eval(n.Values[i], sc)
		if err != nil {
			return value.Value{}, err
		}
		key, _ := kv.AsStr()
		m.Set(key, vv)
	}
	return value.Map(m), nil
}
