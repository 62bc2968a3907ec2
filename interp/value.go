package interp

import (
	"fmt"
)

// Value is any runtime value: float64 scalars, bool, []float64 vectors
// (also matrices and quaternions, by length), []Value arrays,
// map[string]Value structs, and *Resource / FuncRef handles.
type Value = any

// FuncRef is the runtime handle produced by referencing a function id.
type FuncRef struct {
	ID string
}

func toFloat(v Value) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func toInt(v Value) (int, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	return int(int32(f)), nil
}

func toBool(v Value) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case float64:
		return val != 0, nil
	case int:
		return val != 0, nil
	default:
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
}

// asVec returns v as a float vector, converting []any element-wise.
func asVec(v Value) ([]float64, bool) {
	switch val := v.(type) {
	case []float64:
		return val, true
	case []any:
		out := make([]float64, len(val))
		for i, e := range val {
			f, err := toFloat(e)
			if err != nil {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}

// fromLiteral converts a decoded JSON literal into its runtime value:
// numeric arrays become []float64, other arrays []Value, objects
// map[string]Value.
func fromLiteral(v any) Value {
	switch val := v.(type) {
	case []any:
		if vec, ok := asVec(val); ok {
			return vec
		}
		out := make([]Value, len(val))
		for i, e := range val {
			out[i] = fromLiteral(e)
		}
		return out
	case map[string]any:
		out := make(map[string]Value, len(val))
		for k, e := range val {
			out[k] = fromLiteral(e)
		}
		return out
	default:
		return v
	}
}

// numericBinary applies f element-wise over scalars and vectors. Two
// vectors must have equal length; a scalar broadcasts against a vector.
func numericBinary(a, b Value, f func(x, y float64) float64) (Value, error) {
	av, aIsVec := asVec(a)
	bv, bIsVec := asVec(b)
	switch {
	case aIsVec && bIsVec:
		if len(av) != len(bv) {
			return nil, fmt.Errorf("vector length mismatch: %d vs %d", len(av), len(bv))
		}
		out := make([]float64, len(av))
		for i := range av {
			out[i] = f(av[i], bv[i])
		}
		return out, nil
	case aIsVec:
		s, err := toFloat(b)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(av))
		for i := range av {
			out[i] = f(av[i], s)
		}
		return out, nil
	case bIsVec:
		s, err := toFloat(a)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(bv))
		for i := range bv {
			out[i] = f(s, bv[i])
		}
		return out, nil
	default:
		x, err := toFloat(a)
		if err != nil {
			return nil, err
		}
		y, err := toFloat(b)
		if err != nil {
			return nil, err
		}
		return f(x, y), nil
	}
}

// numericUnary applies f over a scalar or element-wise over a vector.
func numericUnary(v Value, f func(x float64) float64) (Value, error) {
	if vec, ok := asVec(v); ok {
		out := make([]float64, len(vec))
		for i := range vec {
			out[i] = f(vec[i])
		}
		return out, nil
	}
	x, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return f(x), nil
}

// compareValues applies a scalar predicate. Scalar operands yield a bool;
// vector operands yield a 0.0/1.0 vector, not a boolean vector. Backends
// must match this convention bit for bit.
func compareValues(a, b Value, pred func(x, y float64) bool) (Value, error) {
	av, aIsVec := asVec(a)
	bv, bIsVec := asVec(b)
	if aIsVec || bIsVec {
		if !aIsVec || !bIsVec {
			return nil, fmt.Errorf("cannot compare vector with scalar")
		}
		if len(av) != len(bv) {
			return nil, fmt.Errorf("vector length mismatch: %d vs %d", len(av), len(bv))
		}
		out := make([]float64, len(av))
		for i := range av {
			if pred(av[i], bv[i]) {
				out[i] = 1
			}
		}
		return out, nil
	}
	x, err := toFloat(a)
	if err != nil {
		return nil, err
	}
	y, err := toFloat(b)
	if err != nil {
		return nil, err
	}
	return pred(x, y), nil
}

// vec4 pads or truncates v to exactly four components, defaulting the
// missing alpha channel to 1.
func vec4(v []float64) []float64 {
	out := []float64{0, 0, 0, 1}
	copy(out, v)
	if len(v) == 1 {
		// Single channel broadcasts across rgb.
		out[1], out[2] = v[0], v[0]
	}
	return out
}
