package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FromJSON decodes JSON-encoded bytes into a Value tree. Object key
// order is preserved (Go's encoding/json decodes objects into
// map[string]interface{} and loses order, so this walks the token
// stream directly via json.Decoder to keep insertion order, per the
// value model's ordered-Map requirement).
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("decoding JSON context: %w", err)
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return tokenToValue(dec, tok)
}

func tokenToValue(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewOrderedMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, _ := keyTok.(string)
				val, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Value{}, err
			}
			return Map(m), nil
		case '[':
			var seq []Value
			for dec.More() {
				val, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				seq = append(seq, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Value{}, err
			}
			return Seq(seq), nil
		}
	case nil:
		return None(), nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return Float(f), nil
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}

// ToInterface converts v to a plain Go value tree (map[string]any,
// []any, string, bool, int64, float64, nil) suitable for
// encoding/json.Marshal or host interop that doesn't care about
// insertion order.
func (v Value) ToInterface() interface{} {
	switch v.kind {
	case KindNone:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindStr:
		return v.s
	case KindSeq:
		out := make([]interface{}, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.ToInterface()
		}
		return out
	case KindMap:
		out := make(map[string]interface{})
		if v.m != nil {
			for _, k := range v.m.Keys() {
				val, _ := v.m.Get(k)
				out[k] = val.ToInterface()
			}
		}
		return out
	default:
		return nil
	}
}

// FromInterface converts a plain Go value (as produced by
// encoding/json.Unmarshal into interface{}, or built by hand) into a
// Value. Object key order is whatever Go's map iteration gives, since
// map[string]interface{} itself carries no order; callers that need
// to preserve JSON source order should use FromJSON instead.
func FromInterface(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return None()
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	case string:
		return Str(t)
	case []interface{}:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = FromInterface(e)
		}
		return Seq(out)
	case map[string]interface{}:
		m := NewOrderedMap()
		for k, v := range t {
			m.Set(k, FromInterface(v))
		}
		return Map(m)
	case Value:
		return t
	default:
		return None()
	}
}
