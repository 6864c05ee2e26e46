package payload

import (
	"encoding/json"
	"math"
	"strconv"
)

// Normalize rewrites a decoded tree into the canonical scalar set used by the
// decoder: int64 (uint64 above math.MaxInt64), float64, string, bool, nil,
// []any and map[string]any.
func Normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(string(x), 10, 64); err == nil {
			return u
		}
		f, err := x.Float64()
		if err != nil {
			return string(x)
		}
		return f
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return fromUint(x)
	case float32:
		return float64(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			ks, ok := k.(string)
			if !ok {
				// Non-string keys never appear in a response; keep the map
				// opaque so member lookups fail as missing.
				return x
			}
			out[ks] = Normalize(e)
		}
		return out
	default:
		return v
	}
}

func fromUint(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}

// IsKey reports whether v can key a result map.
func IsKey(v any) bool {
	switch v.(type) {
	case nil, string, int64, uint64, float64, bool:
		return true
	}
	return false
}

// Key returns the canonical form of key v. Integral floats become integers so
// that 1 and 1.0 name the same factor or group.
func Key(v any) (key any, ok bool) {
	if !IsKey(v) {
		return nil, false
	}

	f, isFloat := v.(float64)
	if !isFloat || f != math.Trunc(f) {
		return v, true
	}

	switch {
	case f >= math.MinInt64 && f < math.MaxInt64:
		return int64(f), true
	case f >= 0 && f < math.MaxUint64:
		return fromUint(uint64(f)), true
	}

	return v, true
}

// Uint converts a normalized number to a non-negative integer.
func Uint(v any) (u uint64, ok bool) {
	switch x := v.(type) {
	case int64:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	case uint64:
		return x, true
	case float64:
		if x < 0 || x != math.Trunc(x) || x >= math.MaxUint64 {
			return 0, false
		}
		return uint64(x), true
	}
	return 0, false
}

// count interprets the optional third tuple element. Absent, null, false and
// zero counts are not recorded.
func count(v any) (n uint64, record bool, valid bool) {
	switch x := v.(type) {
	case nil:
		return 0, false, true
	case bool:
		if x {
			return 1, true, true
		}
		return 0, false, true
	}

	n, valid = Uint(v)
	if !valid {
		return 0, false, false
	}

	return n, n != 0, true
}

// unwrapKey returns the key held by v, looking through a single-element list.
func unwrapKey(v any) (key any, ok bool) {
	if l, isList := v.([]any); isList {
		if len(l) != 1 {
			return nil, false
		}
		v = l[0]
	}

	return Key(v)
}
