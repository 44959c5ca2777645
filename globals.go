package jinja2go

import (
	"fmt"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/wangzhaode/jinja2go/value"
)

func registerBuiltinGlobals(env *Environment) {
	env.AddGlobal("none", value.None())
	env.AddGlobal("true", value.Bool(true))
	env.AddGlobal("false", value.Bool(false))
	env.AddGlobal("range", value.FromCallable(globalRange))
	env.AddGlobal("dict", value.FromCallable(globalDict))
	env.AddGlobal("namespace", value.FromCallable(globalNamespace))
	env.AddGlobal("strftime_now", value.FromCallable(globalStrftimeNow))
	env.AddGlobal("raise_exception", value.FromCallable(globalRaiseException))
}

// globalRange implements range(start?, stop, step?), returning an
// eagerly-built Seq (the value model has no lazy-sequence kind, so
// "lazy" per the spec's prose is realized as an ordinary Seq built up
// front — acceptable since chat templates only ever range over small
// bounds like message counts).
func globalRange(args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		stop, _ = args[0].AsInt()
	case 2:
		start, _ = args[0].AsInt()
		stop, _ = args[1].AsInt()
	case 3:
		start, _ = args[0].AsInt()
		stop, _ = args[1].AsInt()
		step, _ = args[2].AsInt()
	default:
		return value.Value{}, fmt.Errorf("range() requires 1 to 3 arguments")
	}
	if step == 0 {
		return value.Value{}, fmt.Errorf("range() step argument must not be zero")
	}
	var out []value.Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, value.Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, value.Int(i))
		}
	}
	return value.Seq(out), nil
}

func globalDict(args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	m := value.NewOrderedMap()
	if kwargs != nil {
		for _, k := range kwargs.Keys() {
			v, _ := kwargs.Get(k)
			m.Set(k, v)
		}
	}
	return value.Map(m), nil
}

// globalNamespace returns a mutable Map object: since value.Map wraps
// a pointer to an OrderedMap, every reference to the returned Value
// shares the same backing map, so `{% set ns.field = x %}` inside a
// loop body is visible to the scope that holds the original
// reference — the standard workaround for writing to an outer scope
// from inside a for-loop body.
func globalNamespace(args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	m := value.NewOrderedMap()
	if kwargs != nil {
		for _, k := range kwargs.Keys() {
			v, _ := kwargs.Get(k)
			m.Set(k, v)
		}
	}
	return value.Map(m), nil
}

// globalStrftimeNow implements strftime_now(fmt): the current local
// time formatted with Python strftime directives, via go-strftime
// (time.Format's reference-layout constants can't express "%Y-%m-%d"
// style directives at all, so this is the one place a third-party
// formatter genuinely earns its keep over the standard library).
func globalStrftimeNow(args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	if len(args) == 0 {
		return value.Value{}, fmt.Errorf("strftime_now() requires a format argument")
	}
	fmtStr, _ := args[0].AsStr()
	return value.Str(strftime.Format(fmtStr, time.Now())), nil
}

// globalRaiseException implements raise_exception(msg): aborts
// rendering with a user-authored RuntimeError. Its position is
// unknown here (it is just another callable, invoked through the
// same Call path as any host function); the interpreter's call site
// attaches the position of the call expression when it wraps this
// error.
func globalRaiseException(args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	msg := "raise_exception() called"
	if len(args) > 0 {
		msg = args[0].String()
	}
	return value.Value{}, fmt.Errorf("%s", msg)
}
