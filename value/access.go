package value

import "unicode/utf8"

// GetAttr implements attribute access (`obj.field`). On a Map,
// attribute and item access are equivalent string-key lookups. On any
// other kind, or when the key is missing, it returns None — lookups
// are permissive by design; see IsDefinedAttr for the strict variant
// `is defined` needs.
func (v Value) GetAttr(name string) Value {
	if v.kind == KindMap && v.m != nil {
		if val, ok := v.m.Get(name); ok {
			return val
		}
	}
	return None()
}

// IsDefinedAttr reports whether GetAttr(name) would find a real entry
// rather than falling back to None.
func (v Value) IsDefinedAttr(name string) bool {
	if v.kind != KindMap || v.m == nil {
		return false
	}
	_, ok := v.m.Get(name)
	return ok
}

// GetItem implements index access (`obj[key]`). On a Map it behaves
// like GetAttr with a string key. On a Seq it accepts an Int index
// (negative indices count from the end) and returns None when out of
// range. On a Str, an Int index yields a one-rune Str. Any other
// combination returns None.
func (v Value) GetItem(key Value) Value {
	switch v.kind {
	case KindMap:
		if v.m == nil {
			return None()
		}
		k, ok := key.AsStr()
		if !ok {
			return None()
		}
		val, ok := v.m.Get(k)
		if !ok {
			return None()
		}
		return val
	case KindSeq:
		idx, ok := key.AsInt()
		if !ok {
			return None()
		}
		i := normalizeIndex(idx, len(v.seq))
		if i < 0 || i >= len(v.seq) {
			return None()
		}
		return v.seq[i]
	case KindStr:
		idx, ok := key.AsInt()
		if !ok {
			return None()
		}
		runes := []rune(v.s)
		i := normalizeIndex(idx, len(runes))
		if i < 0 || i >= len(runes) {
			return None()
		}
		return Str(string(runes[i]))
	default:
		return None()
	}
}

func normalizeIndex(idx int64, length int) int {
	if idx < 0 {
		idx += int64(length)
	}
	return int(idx)
}

// Slice implements `obj[start:stop:step]` for Str and Seq. Any index
// may be absent (represented by a nil *int64); step defaults to 1 and
// must not be zero.
func (v Value) Slice(start, stop, step *int64) Value {
	s := int64(1)
	if step != nil {
		s = *step
	}
	if s == 0 {
		return None()
	}
	switch v.kind {
	case KindSeq:
		idxs := sliceIndices(len(v.seq), start, stop, s)
		out := make([]Value, 0, len(idxs))
		for _, i := range idxs {
			out = append(out, v.seq[i])
		}
		return Seq(out)
	case KindStr:
		runes := []rune(v.s)
		idxs := sliceIndices(len(runes), start, stop, s)
		out := make([]rune, 0, len(idxs))
		for _, i := range idxs {
			out = append(out, runes[i])
		}
		return Str(string(out))
	default:
		return None()
	}
}

func sliceIndices(length int, start, stop *int64, step int64) []int {
	var lo, hi int64
	if step > 0 {
		lo, hi = 0, int64(length)
	} else {
		lo, hi = -1, int64(length-1)
	}
	from, to := lo, hi
	if start != nil {
		from = clampSliceIndex(*start, length, step > 0)
	}
	if stop != nil {
		to = clampSliceIndex(*stop, length, step > 0)
	}
	var out []int
	if step > 0 {
		for i := from; i < to; i += step {
			if i >= 0 && i < int64(length) {
				out = append(out, int(i))
			}
		}
	} else {
		for i := from; i > to; i += step {
			if i >= 0 && i < int64(length) {
				out = append(out, int(i))
			}
		}
	}
	return out
}

func clampSliceIndex(idx int64, length int, forward bool) int64 {
	if idx < 0 {
		idx += int64(length)
	}
	if forward {
		if idx < 0 {
			return 0
		}
		if idx > int64(length) {
			return int64(length)
		}
	} else {
		if idx < -1 {
			return -1
		}
		if idx >= int64(length) {
			return int64(length - 1)
		}
	}
	return idx
}

// Iterate returns the elements For should loop over: Seq elements in
// order, Map keys (as Str) in insertion order, or Str code points (as
// single-rune Str values). ok is false for any other kind.
func (v Value) Iterate() ([]Value, bool) {
	switch v.kind {
	case KindSeq:
		return v.seq, true
	case KindMap:
		if v.m == nil {
			return nil, true
		}
		keys := v.m.Keys()
		out := make([]Value, len(keys))
		for i, k := range keys {
			out[i] = Str(k)
		}
		return out, true
	case KindStr:
		runes := []rune(v.s)
		out := make([]Value, len(runes))
		for i, r := range runes {
			out[i] = Str(string(r))
		}
		return out, true
	default:
		return nil, false
	}
}

// StrLen returns the rune length of a Str, mirroring how Iterate and
// GetItem index strings by code point rather than byte.
func StrLen(s string) int { return utf8.RuneCountInString(s) }
