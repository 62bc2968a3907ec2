package interp

import (
	"fmt"

	"github.com/gogpu/shadergraph/ir"
)

// opFunc is the concrete CPU semantics of one operation: resolved
// arguments in, value or side effect out.
type opFunc func(r *funcRun, n *ir.Node, args map[string]Value) (Value, error)

var opFuncs = map[string]opFunc{}

func registerOp(name string, fn opFunc) {
	if _, exists := opFuncs[name]; exists {
		panic("duplicate op implementation: " + name)
	}
	if ir.LookupOp(name) == nil {
		panic("op implementation without schema: " + name)
	}
	opFuncs[name] = fn
}

func need(args map[string]Value, name string) (Value, error) {
	v, ok := args[name]
	if !ok {
		return nil, fmt.Errorf("missing argument %q", name)
	}
	return v, nil
}

func needFloat(args map[string]Value, name string) (float64, error) {
	v, err := need(args, name)
	if err != nil {
		return 0, err
	}
	return toFloat(v)
}

func needInt(args map[string]Value, name string) (int, error) {
	v, err := need(args, name)
	if err != nil {
		return 0, err
	}
	return toInt(v)
}

func needVec(args map[string]Value, name string) ([]float64, error) {
	v, err := need(args, name)
	if err != nil {
		return nil, err
	}
	vec, ok := asVec(v)
	if !ok {
		return nil, fmt.Errorf("argument %q is not a vector", name)
	}
	return vec, nil
}

// needRef returns the raw reference id carried by a requiredRef slot.
func needRef(args map[string]Value, name string) (string, error) {
	v, err := need(args, name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q is not a reference", name)
	}
	return s, nil
}

func needResource(r *funcRun, args map[string]Value, name string) (*Resource, error) {
	id, err := needRef(args, name)
	if err != nil {
		return nil, err
	}
	return r.x.ctx.Resource(id)
}

func stringArg(args map[string]Value, name, fallback string) string {
	if v, ok := args[name]; ok {
		if s, isStr := v.(string); isStr {
			return s
		}
	}
	return fallback
}
