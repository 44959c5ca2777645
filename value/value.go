// Package value implements the dynamically-typed value model that the
// template interpreter evaluates expressions into and walks contexts
// through: a tagged sum of None, Bool, Int, Float, Str, Seq, Map, and
// Callable.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind discriminates the variant a Value holds.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindSeq
	KindMap
	KindCallable
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "string"
	case KindSeq:
		return "sequence"
	case KindMap:
		return "mapping"
	case KindCallable:
		return "callable"
	default:
		return "unknown"
	}
}

// Callable is the signature every built-in and host-registered
// function, and every macro, shares. Filters and tests are not
// Callables; they have signatures of their own.
type Callable func(args []Value, kwargs *OrderedMap) (Value, error)

// Value is an immutable dynamic value. The zero Value is None.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	seq  []Value
	m    *OrderedMap
	call Callable
}

// None returns the null value.
func None() Value { return Value{kind: KindNone} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: KindStr, s: s} }

// Seq returns a sequence value wrapping elems. The slice is taken by
// reference; callers should not mutate it afterward.
func Seq(elems []Value) Value { return Value{kind: KindSeq, seq: elems} }

// Map returns a mapping value wrapping m.
func Map(m *OrderedMap) Value { return Value{kind: KindMap, m: m} }

// FromCallable returns a callable value wrapping fn.
func FromCallable(fn Callable) Value { return Value{kind: KindCallable, call: fn} }

// Kind returns the discriminant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v is the null value.
func (v Value) IsNone() bool { return v.kind == KindNone }

// AsBool returns v's boolean content and whether v is a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns v's integer content and whether v is an Int.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns v's float content and whether v is a Float.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsNumber returns v widened to float64 and whether v is Int or Float.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// AsStr returns v's string content and whether v is a Str.
func (v Value) AsStr() (string, bool) { return v.s, v.kind == KindStr }

// AsSeq returns v's sequence content and whether v is a Seq.
func (v Value) AsSeq() ([]Value, bool) { return v.seq, v.kind == KindSeq }

// AsMap returns v's mapping content and whether v is a Map.
func (v Value) AsMap() (*OrderedMap, bool) { return v.m, v.kind == KindMap }

// AsCallable returns v's callable content and whether v is a Callable.
func (v Value) AsCallable() (Callable, bool) { return v.call, v.kind == KindCallable }

// IsTruthy implements the truthiness rules from the value model:
// None and Bool(false) are falsy; numeric/string/sequence/mapping
// zero values are falsy; everything else (including any Callable)
// is truthy.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindNone:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindStr:
		return v.s != ""
	case KindSeq:
		return len(v.seq) != 0
	case KindMap:
		return v.m != nil && v.m.Len() != 0
	default:
		return true
	}
}

// Len reports the length of a Str, Seq, or Map; ok is false for any
// other kind.
func (v Value) Len() (int, bool) {
	switch v.kind {
	case KindStr:
		return len([]rune(v.s)), true
	case KindSeq:
		return len(v.seq), true
	case KindMap:
		if v.m == nil {
			return 0, true
		}
		return v.m.Len(), true
	default:
		return 0, false
	}
}

// String renders v's string form, per the engine's string-form rules:
// None is the empty string, Bool is "True"/"False", numbers use a
// shortest round-trip decimal, Str is itself, and Seq/Map use a
// Python-repr-like textual form.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return ""
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindStr:
		return v.s
	case KindSeq:
		return v.reprSeq()
	case KindMap:
		return v.reprMap()
	case KindCallable:
		return "<callable>"
	default:
		return ""
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Repr renders v the way it would appear nested inside a container's
// repr-like string form (strings are quoted).
func (v Value) Repr() string {
	if v.kind == KindStr {
		return reprString(v.s)
	}
	return v.String()
}

func reprString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString("\\'")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func (v Value) reprSeq() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range v.seq {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Repr())
	}
	b.WriteByte(']')
	return b.String()
}

func (v Value) reprMap() string {
	var b strings.Builder
	b.WriteByte('{')
	if v.m != nil {
		for i, k := range v.m.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			val, _ := v.m.Get(k)
			b.WriteString(reprString(k))
			b.WriteString(": ")
			b.WriteString(val.Repr())
		}
	}
	b.WriteByte('}')
	return b.String()
}

// ToJSON renders v as standard JSON text (double-quoted strings,
// ": " and ", " separators, no trailing whitespace). indent, when
// non-empty, is used as the per-level indentation string; an empty
// indent produces compact output with the same ": "/", " spacing
// convention the bare (non-indented) form uses.
func (v Value) ToJSON(indent string) string {
	var b strings.Builder
	v.writeJSON(&b, indent, 0)
	return b.String()
}

func (v Value) writeJSON(b *strings.Builder, indent string, depth int) {
	switch v.kind {
	case KindNone:
		b.WriteString("null")
	case KindBool:
		if v.b {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindInt:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindStr:
		b.WriteString(jsonQuote(v.s))
	case KindSeq:
		writeJSONSeq(b, v.seq, indent, depth)
	case KindMap:
		writeJSONMap(b, v.m, indent, depth)
	default:
		b.WriteString(jsonQuote(v.String()))
	}
}

func writeJSONSeq(b *strings.Builder, seq []Value, indent string, depth int) {
	if len(seq) == 0 {
		b.WriteString("[]")
		return
	}
	b.WriteByte('[')
	for i, e := range seq {
		if i > 0 {
			b.WriteByte(',')
			if indent == "" {
				b.WriteByte(' ')
			}
		}
		writeJSONNewlineIndent(b, indent, depth+1)
		e.writeJSON(b, indent, depth+1)
	}
	writeJSONNewlineIndent(b, indent, depth)
	b.WriteByte(']')
}

func writeJSONMap(b *strings.Builder, m *OrderedMap, indent string, depth int) {
	if m == nil || m.Len() == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			b.WriteByte(',')
			if indent == "" {
				b.WriteByte(' ')
			}
		}
		writeJSONNewlineIndent(b, indent, depth+1)
		val, _ := m.Get(k)
		b.WriteString(jsonQuote(k))
		b.WriteString(": ")
		val.writeJSON(b, indent, depth+1)
	}
	writeJSONNewlineIndent(b, indent, depth)
	b.WriteByte('}')
}

func writeJSONNewlineIndent(b *strings.Builder, indent string, depth int) {
	if indent == "" {
		return
	}
	b.WriteByte('\n')
	for i := 0; i < depth; i++ {
		b.WriteString(indent)
	}
}

func jsonQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, "\\u%04x", r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
