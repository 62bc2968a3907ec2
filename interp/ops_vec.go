package interp

import (
	"fmt"
	"math"

	"github.com/gogpu/shadergraph/ir"
)

func init() {
	registerOp("vec_construct", opVecConstruct)
	registerOp("vec_extract", opVecExtract)
	registerOp("vec_swizzle", opVecSwizzle)
	registerOp("vec_dot", opVecDot)
	registerOp("vec_cross", opVecCross)
	registerOp("vec_length", opVecLength)
	registerOp("vec_normalize", opVecNormalize)
	registerOp("vec_distance", opVecDistance)
}

// opVecConstruct flattens scalar and vector components into one vector, so
// a float4 can be built from a float2 and two scalars.
func opVecConstruct(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	raw, err := need(args, "values")
	if err != nil {
		return nil, err
	}
	var components []Value
	switch val := raw.(type) {
	case []Value:
		components = val
	case []float64:
		out := make([]float64, len(val))
		copy(out, val)
		return out, nil
	default:
		return nil, fmt.Errorf("vec_construct values must be an array, got %T", raw)
	}
	var out []float64
	for i, c := range components {
		if vec, ok := asVec(c); ok {
			out = append(out, vec...)
			continue
		}
		f, err := toFloat(c)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		out = append(out, f)
	}
	if len(out) < 2 || len(out) > 4 {
		return nil, fmt.Errorf("vector must have 2-4 components, got %d", len(out))
	}
	return out, nil
}

func opVecExtract(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	vec, err := needVec(args, "value")
	if err != nil {
		return nil, err
	}
	index, err := needInt(args, "index")
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(vec) {
		return nil, fmt.Errorf("component index %d out of range [0,%d)", index, len(vec))
	}
	return vec[index], nil
}

var swizzleIndex = map[byte]int{
	'x': 0, 'y': 1, 'z': 2, 'w': 3,
	'r': 0, 'g': 1, 'b': 2, 'a': 3,
}

func opVecSwizzle(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	vec, err := needVec(args, "value")
	if err != nil {
		return nil, err
	}
	pattern := stringArg(args, "pattern", "")
	if pattern == "" {
		return nil, fmt.Errorf("missing swizzle pattern")
	}
	out := make([]float64, len(pattern))
	for i := 0; i < len(pattern); i++ {
		idx, ok := swizzleIndex[pattern[i]]
		if !ok {
			return nil, fmt.Errorf("invalid swizzle component %q", string(pattern[i]))
		}
		if idx >= len(vec) {
			return nil, fmt.Errorf("swizzle component %q out of range for a %d-vector", string(pattern[i]), len(vec))
		}
		out[i] = vec[idx]
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return out, nil
}

func vecPair(args map[string]Value) ([]float64, []float64, error) {
	a, err := needVec(args, "a")
	if err != nil {
		return nil, nil, err
	}
	b, err := needVec(args, "b")
	if err != nil {
		return nil, nil, err
	}
	if len(a) != len(b) {
		return nil, nil, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}
	return a, b, nil
}

func opVecDot(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	a, b, err := vecPair(args)
	if err != nil {
		return nil, err
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

func opVecCross(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	a, b, err := vecPair(args)
	if err != nil {
		return nil, err
	}
	if len(a) != 3 {
		return nil, fmt.Errorf("cross product requires 3-vectors, got %d", len(a))
	}
	return cross3(a, b), nil
}

func cross3(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func vecLength(v []float64) float64 {
	var sum float64
	for _, c := range v {
		sum += c * c
	}
	return math.Sqrt(sum)
}

func opVecLength(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	vec, err := needVec(args, "value")
	if err != nil {
		return nil, err
	}
	return vecLength(vec), nil
}

func opVecNormalize(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	vec, err := needVec(args, "value")
	if err != nil {
		return nil, err
	}
	length := vecLength(vec)
	if length == 0 {
		return nil, fmt.Errorf("cannot normalize a zero-length vector")
	}
	out := make([]float64, len(vec))
	for i, c := range vec {
		out[i] = c / length
	}
	return out, nil
}

func opVecDistance(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	a, b, err := vecPair(args)
	if err != nil {
		return nil, err
	}
	diff := make([]float64, len(a))
	for i := range a {
		diff[i] = a[i] - b[i]
	}
	return vecLength(diff), nil
}
