package value

import (
	"fmt"
	"math"
	"strings"
)

// OpError reports that an operator was applied to incompatible kinds.
// It is wrapped into a RuntimeError by the interpreter, which attaches
// the source position.
type OpError struct {
	Op string
	A  Kind
	B  Kind
}

func (e *OpError) Error() string {
	if e.B == KindNone && e.Op == "unary" {
		return fmt.Sprintf("unsupported operand type for unary: %s", e.A)
	}
	return fmt.Sprintf("unsupported operand types for %s: %s and %s", e.Op, e.A, e.B)
}

// Add implements + for numerics (widening Int+Float to Float) and
// list concatenation for two Seq values.
func Add(a, b Value) (Value, error) {
	if a.kind == KindSeq && b.kind == KindSeq {
		out := make([]Value, 0, len(a.seq)+len(b.seq))
		out = append(out, a.seq...)
		out = append(out, b.seq...)
		return Seq(out), nil
	}
	if a.kind == KindInt && b.kind == KindInt {
		return Int(a.i + b.i), nil
	}
	if af, aok := a.AsNumber(); aok {
		if bf, bok := b.AsNumber(); bok {
			return Float(af + bf), nil
		}
	}
	return Value{}, &OpError{"+", a.kind, b.kind}
}

// Sub implements -.
func Sub(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt {
		return Int(a.i - b.i), nil
	}
	if af, aok := a.AsNumber(); aok {
		if bf, bok := b.AsNumber(); bok {
			return Float(af - bf), nil
		}
	}
	return Value{}, &OpError{"-", a.kind, b.kind}
}

// Mul implements *, including string/sequence repetition by an int.
func Mul(a, b Value) (Value, error) {
	if a.kind == KindStr && b.kind == KindInt {
		return Str(strings.Repeat(a.s, int(b.i))), nil
	}
	if a.kind == KindInt && b.kind == KindStr {
		return Str(strings.Repeat(b.s, int(a.i))), nil
	}
	if (a.kind == KindSeq && b.kind == KindInt) || (a.kind == KindInt && b.kind == KindSeq) {
		elems, n := a.seq, b.i
		if a.kind == KindInt {
			elems, n = b.seq, a.i
		}
		out := []Value{}
		for j := int64(0); j < n; j++ {
			out = append(out, elems...)
		}
		return Seq(out), nil
	}
	if a.kind == KindInt && b.kind == KindInt {
		return Int(a.i * b.i), nil
	}
	if af, aok := a.AsNumber(); aok {
		if bf, bok := b.AsNumber(); bok {
			return Float(af * bf), nil
		}
	}
	return Value{}, &OpError{"*", a.kind, b.kind}
}

// Div implements /, which always produces a Float result. Division
// by zero is always a runtime error, regardless of operand kinds.
func Div(a, b Value) (Value, error) {
	af, aok := a.AsNumber()
	bf, bok := b.AsNumber()
	if !aok || !bok {
		return Value{}, &OpError{"/", a.kind, b.kind}
	}
	if bf == 0 {
		return Value{}, fmt.Errorf("division by zero")
	}
	return Float(af / bf), nil
}

// FloorDiv implements //, floor division. Division by zero is always
// a runtime error.
func FloorDiv(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt {
		if b.i == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		q := a.i / b.i
		if (a.i%b.i != 0) && ((a.i < 0) != (b.i < 0)) {
			q--
		}
		return Int(q), nil
	}
	af, aok := a.AsNumber()
	bf, bok := b.AsNumber()
	if !aok || !bok {
		return Value{}, &OpError{"//", a.kind, b.kind}
	}
	if bf == 0 {
		return Value{}, fmt.Errorf("division by zero")
	}
	return Float(math.Floor(af / bf)), nil
}

// Rem implements %, modulo with the sign of the divisor. Division by
// zero is always a runtime error.
func Rem(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt {
		if b.i == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		r := a.i % b.i
		if r != 0 && (r < 0) != (b.i < 0) {
			r += b.i
		}
		return Int(r), nil
	}
	af, aok := a.AsNumber()
	bf, bok := b.AsNumber()
	if !aok || !bok {
		return Value{}, &OpError{"%", a.kind, b.kind}
	}
	if bf == 0 {
		return Value{}, fmt.Errorf("division by zero")
	}
	r := math.Mod(af, bf)
	if r != 0 && (r < 0) != (bf < 0) {
		r += bf
	}
	return Float(r), nil
}

// Pow implements **, right-associative exponentiation. The result is
// Float when the exponent is negative or non-integer, or when either
// operand is already a Float; otherwise it stays Int.
func Pow(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt && b.i >= 0 {
		result := int64(1)
		base := a.i
		exp := b.i
		for exp > 0 {
			if exp&1 == 1 {
				result *= base
			}
			base *= base
			exp >>= 1
		}
		return Int(result), nil
	}
	af, aok := a.AsNumber()
	bf, bok := b.AsNumber()
	if !aok || !bok {
		return Value{}, &OpError{"**", a.kind, b.kind}
	}
	return Float(math.Pow(af, bf)), nil
}

// Neg implements unary -.
func Neg(a Value) (Value, error) {
	switch a.kind {
	case KindInt:
		return Int(-a.i), nil
	case KindFloat:
		return Float(-a.f), nil
	default:
		return Value{}, &OpError{"unary", a.kind, KindNone}
	}
}

// Concat implements ~, string concatenation of the string forms of
// both operands.
func Concat(a, b Value) Value {
	return Str(a.String() + b.String())
}

// Equal implements structural equality.
func Equal(a, b Value) bool {
	if an, aok := a.AsNumber(); aok {
		if bn, bok := b.AsNumber(); bok {
			return an == bn
		}
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNone:
		return true
	case KindBool:
		return a.b == b.b
	case KindStr:
		return a.s == b.s
	case KindSeq:
		if len(a.seq) != len(b.seq) {
			return false
		}
		for i := range a.seq {
			if !Equal(a.seq[i], b.seq[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if a.m == nil || b.m == nil {
			return (a.m == nil || a.m.Len() == 0) && (b.m == nil || b.m.Len() == 0)
		}
		if a.m.Len() != b.m.Len() {
			return false
		}
		for _, k := range a.m.Keys() {
			av, _ := a.m.Get(k)
			bv, ok := b.m.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare implements ordering between two numerics or two strings,
// returning -1, 0, or 1. ok is false for any other pairing.
func Compare(a, b Value) (int, bool) {
	if an, aok := a.AsNumber(); aok {
		if bn, bok := b.AsNumber(); bok {
			switch {
			case an < bn:
				return -1, true
			case an > bn:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	if a.kind == KindStr && b.kind == KindStr {
		switch {
		case a.s < b.s:
			return -1, true
		case a.s > b.s:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

// Contains implements the `in` operator: substring for Str, element
// equality for Seq, key presence for Map.
func Contains(needle, haystack Value) (bool, error) {
	switch haystack.kind {
	case KindStr:
		s, ok := needle.AsStr()
		if !ok {
			return false, &OpError{"in", needle.kind, haystack.kind}
		}
		return strings.Contains(haystack.s, s), nil
	case KindSeq:
		for _, e := range haystack.seq {
			if Equal(e, needle) {
				return true, nil
			}
		}
		return false, nil
	case KindMap:
		key, ok := needle.AsStr()
		if !ok || haystack.m == nil {
			return false, nil
		}
		_, present := haystack.m.Get(key)
		return present, nil
	default:
		return false, &OpError{"in", needle.kind, haystack.kind}
	}
}
