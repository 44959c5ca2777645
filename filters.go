package jinja2go

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/wangzhaode/jinja2go/value"
)

func registerBuiltinFilters(env *Environment) {
	env.AddFilter("length", filterLength)
	env.AddFilter("upper", filterUpper)
	env.AddFilter("lower", filterLower)
	env.AddFilter("capitalize", filterCapitalize)
	env.AddFilter("trim", filterTrim)
	env.AddFilter("replace", filterReplace)
	env.AddFilter("default", filterDefault)
	env.AddFilter("join", filterJoin)
	env.AddFilter("list", filterList)
	env.AddFilter("string", filterString)
	env.AddFilter("int", filterInt)
	env.AddFilter("float", filterFloat)
	env.AddFilter("round", filterRound)
	env.AddFilter("abs", filterAbs)
	env.AddFilter("first", filterFirst)
	env.AddFilter("last", filterLast)
	env.AddFilter("reverse", filterReverse)
	env.AddFilter("sort", filterSort)
	env.AddFilter("unique", filterUnique)
	env.AddFilter("map", filterMap)
	env.AddFilter("select", filterSelect)
	env.AddFilter("reject", filterReject)
	env.AddFilter("selectattr", filterSelectAttr)
	env.AddFilter("rejectattr", filterRejectAttr)
	env.AddFilter("tojson", filterToJSON)
	env.AddFilter("items", filterItems)
	env.AddFilter("keys", filterKeys)
	env.AddFilter("values", filterValues)
	env.AddFilter("safe", filterSafe)
}

func arg(args []value.Value, i int, def value.Value) value.Value {
	if i < len(args) {
		return args[i]
	}
	return def
}

func kwarg(kwargs *value.OrderedMap, name string, def value.Value) value.Value {
	if kwargs == nil {
		return def
	}
	if v, ok := kwargs.Get(name); ok {
		return v
	}
	return def
}

func filterLength(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	n, ok := input.Len()
	if !ok {
		return value.Value{}, fmt.Errorf("'%s' has no length", input.Kind())
	}
	return value.Int(int64(n)), nil
}

func filterUpper(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	return value.Str(strings.ToUpper(input.String())), nil
}

func filterLower(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	return value.Str(strings.ToLower(input.String())), nil
}

func filterCapitalize(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	s := input.String()
	if s == "" {
		return value.Str(s), nil
	}
	return value.Str(strings.ToUpper(s[:1]) + strings.ToLower(s[1:])), nil
}

func filterTrim(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	return value.Str(strings.TrimSpace(input.String())), nil
}

func filterReplace(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	if len(args) < 2 {
		return value.Value{}, fmt.Errorf("replace() requires 2 arguments")
	}
	old, _ := args[0].AsStr()
	newS, _ := args[1].AsStr()
	return value.Str(strings.ReplaceAll(input.String(), old, newS)), nil
}

func filterDefault(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	def := arg(args, 0, value.Str(""))
	boolean := arg(args, 1, kwarg(kwargs, "boolean", value.Bool(false))).IsTruthy()
	if input.IsNone() {
		return def, nil
	}
	if boolean && !input.IsTruthy() {
		return def, nil
	}
	return input, nil
}

func filterJoin(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	sep, _ := arg(args, 0, value.Str("")).AsStr()
	elems, ok := input.AsSeq()
	if !ok {
		return value.Value{}, fmt.Errorf("join() requires a sequence")
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.String()
	}
	return value.Str(strings.Join(parts, sep)), nil
}

func filterList(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	elems, ok := input.Iterate()
	if !ok {
		return value.Value{}, fmt.Errorf("'%s' is not iterable", input.Kind())
	}
	return value.Seq(elems), nil
}

func filterString(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	return value.Str(input.String()), nil
}

func filterInt(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	def := arg(args, 0, value.Int(0))
	switch input.Kind() {
	case value.KindInt:
		return input, nil
	case value.KindFloat:
		f, _ := input.AsFloat()
		return value.Int(int64(f)), nil
	case value.KindStr:
		s, _ := input.AsStr()
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			if f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64); ferr == nil {
				return value.Int(int64(f)), nil
			}
			return def, nil
		}
		return value.Int(i), nil
	case value.KindBool:
		b, _ := input.AsBool()
		if b {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	default:
		return def, nil
	}
}

func filterFloat(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	def := arg(args, 0, value.Float(0))
	switch input.Kind() {
	case value.KindFloat:
		return input, nil
	case value.KindInt:
		i, _ := input.AsInt()
		return value.Float(float64(i)), nil
	case value.KindStr:
		s, _ := input.AsStr()
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return def, nil
		}
		return value.Float(f), nil
	default:
		return def, nil
	}
}

func filterRound(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	n := int64(0)
	if v, ok := arg(args, 0, value.Int(0)).AsInt(); ok {
		n = v
	}
	f, ok := input.AsNumber()
	if !ok {
		return value.Value{}, fmt.Errorf("round() requires a number")
	}
	mul := math.Pow(10, float64(n))
	return value.Float(math.Round(f*mul) / mul), nil
}

func filterAbs(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	switch input.Kind() {
	case value.KindInt:
		i, _ := input.AsInt()
		if i < 0 {
			i = -i
		}
		return value.Int(i), nil
	case value.KindFloat:
		f, _ := input.AsFloat()
		return value.Float(math.Abs(f)), nil
	default:
		return value.Value{}, fmt.Errorf("abs() requires a number")
	}
}

func filterFirst(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	elems, ok := input.Iterate()
	if !ok || len(elems) == 0 {
		return value.None(), nil
	}
	return elems[0], nil
}

func filterLast(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	elems, ok := input.Iterate()
	if !ok || len(elems) == 0 {
		return value.None(), nil
	}
	return elems[len(elems)-1], nil
}

func filterReverse(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	elems, ok := input.Iterate()
	if !ok {
		return value.Value{}, fmt.Errorf("'%s' is not iterable", input.Kind())
	}
	out := make([]value.Value, len(elems))
	for i, e := range elems {
		out[len(elems)-1-i] = e
	}
	return value.Seq(out), nil
}

func filterSort(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	elems, ok := input.AsSeq()
	if !ok {
		return value.Value{}, fmt.Errorf("sort() requires a sequence")
	}
	out := append([]value.Value(nil), elems...)
	reverse := kwarg(kwargs, "reverse", value.Bool(false)).IsTruthy()
	attr, hasAttr := kwarg(kwargs, "attribute", value.None()).AsStr()
	key := func(v value.Value) value.Value {
		if hasAttr && attr != "" {
			return v.GetAttr(attr)
		}
		return v
	}
	sort.SliceStable(out, func(i, j int) bool {
		cmp, ok := value.Compare(key(out[i]), key(out[j]))
		if !ok {
			return false
		}
		if reverse {
			return cmp > 0
		}
		return cmp < 0
	})
	return value.Seq(out), nil
}

func filterUnique(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	elems, ok := input.Iterate()
	if !ok {
		return value.Value{}, fmt.Errorf("'%s' is not iterable", input.Kind())
	}
	var out []value.Value
	for _, e := range elems {
		dup := false
		for _, seen := range out {
			if value.Equal(seen, e) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, e)
		}
	}
	return value.Seq(out), nil
}

func filterMap(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	elems, ok := input.Iterate()
	if !ok {
		return value.Value{}, fmt.Errorf("'%s' is not iterable", input.Kind())
	}
	if attr, ok := kwarg(kwargs, "attribute", value.None()).AsStr(); ok && attr != "" {
		out := make([]value.Value, len(elems))
		for i, e := range elems {
			out[i] = e.GetAttr(attr)
		}
		return value.Seq(out), nil
	}
	return value.Seq(elems), nil
}

func filterSelect(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	return filterSelectReject(input, args, true)
}

func filterReject(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	return filterSelectReject(input, args, false)
}

func filterSelectReject(input value.Value, args []value.Value, want bool) (value.Value, error) {
	elems, ok := input.Iterate()
	if !ok {
		return value.Value{}, fmt.Errorf("'%s' is not iterable", input.Kind())
	}
	if len(args) == 0 {
		var out []value.Value
		for _, e := range elems {
			if e.IsTruthy() == want {
				out = append(out, e)
			}
		}
		return value.Seq(out), nil
	}
	return value.Value{}, fmt.Errorf("select/reject with a named test is not supported")
}

func filterSelectAttr(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	return filterSelectRejectAttr(input, args, true)
}

func filterRejectAttr(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	return filterSelectRejectAttr(input, args, false)
}

func filterSelectRejectAttr(input value.Value, args []value.Value, want bool) (value.Value, error) {
	elems, ok := input.Iterate()
	if !ok {
		return value.Value{}, fmt.Errorf("'%s' is not iterable", input.Kind())
	}
	if len(args) == 0 {
		return value.Value{}, fmt.Errorf("selectattr/rejectattr requires an attribute name")
	}
	attr, _ := args[0].AsStr()
	var out []value.Value
	for _, e := range elems {
		v := e.GetAttr(attr)
		if v.IsTruthy() == want {
			out = append(out, e)
		}
	}
	return value.Seq(out), nil
}

func filterToJSON(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	indent := ""
	if n, ok := arg(args, 0, kwarg(kwargs, "indent", value.None())).AsInt(); ok {
		indent = strings.Repeat(" ", int(n))
	}
	return value.Str(input.ToJSON(indent)), nil
}

func filterItems(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	m, ok := input.AsMap()
	if !ok {
		return value.Value{}, fmt.Errorf("items() requires a mapping")
	}
	out := make([]value.Value, 0, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		out = append(out, value.Seq([]value.Value{value.Str(k), v}))
	}
	return value.Seq(out), nil
}

func filterKeys(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	m, ok := input.AsMap()
	if !ok {
		return value.Value{}, fmt.Errorf("keys() requires a mapping")
	}
	out := make([]value.Value, 0, m.Len())
	for _, k := range m.Keys() {
		out = append(out, value.Str(k))
	}
	return value.Seq(out), nil
}

func filterValues(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	m, ok := input.AsMap()
	if !ok {
		return value.Value{}, fmt.Errorf("values() requires a mapping")
	}
	out := make([]value.Value, 0, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		out = append(out, v)
	}
	return value.Seq(out), nil
}

// filterSafe is a no-op: auto-escaping is not implemented, so there
// is nothing for "safe" to mark a string exempt from.
func filterSafe(input value.Value, args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
	return input, nil
}
