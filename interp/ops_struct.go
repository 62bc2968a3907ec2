package interp

import (
	"fmt"

	"github.com/gogpu/shadergraph/ir"
)

func init() {
	registerOp("struct_construct", opStructConstruct)
	registerOp("struct_extract", opStructExtract)
	registerOp("array_construct", opArrayConstruct)
	registerOp("array_extract", opArrayExtract)
	registerOp("array_set", opArraySet)
	registerOp("array_length", opArrayLength)
}

// opStructConstruct returns a plain field map; the struct reference and
// control metadata never leak into the value.
func opStructConstruct(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	structID, err := needRef(args, "struct")
	if err != nil {
		return nil, err
	}
	def := r.x.doc.Struct(structID)
	if def == nil {
		return nil, fmt.Errorf("unknown struct %q", structID)
	}
	values, _ := args["values"].(map[string]Value)
	out := make(map[string]Value, len(def.Fields))
	for _, field := range def.Fields {
		v, ok := values[field.Name]
		if !ok {
			return nil, fmt.Errorf("struct %q field %q is not set", structID, field.Name)
		}
		out[field.Name] = v
	}
	return out, nil
}

func opStructExtract(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	value, err := need(args, "value")
	if err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]Value)
	if !ok {
		return nil, fmt.Errorf("struct_extract target is not a struct value, got %T", value)
	}
	field := stringArg(args, "field", "")
	v, present := obj[field]
	if !present {
		return nil, fmt.Errorf("struct value has no field %q", field)
	}
	return v, nil
}

func opArrayConstruct(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	values, ok := args["values"]
	if !ok {
		return []Value{}, nil
	}
	switch val := values.(type) {
	case []Value, []float64:
		return val, nil
	default:
		return nil, fmt.Errorf("array_construct values must be an array, got %T", values)
	}
}

func arrayElems(v Value) ([]Value, bool) {
	switch val := v.(type) {
	case []Value:
		return val, true
	case []float64:
		out := make([]Value, len(val))
		for i, f := range val {
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}

func opArrayExtract(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	raw, err := need(args, "array")
	if err != nil {
		return nil, err
	}
	elems, ok := arrayElems(raw)
	if !ok {
		return nil, fmt.Errorf("array_extract target is not an array, got %T", raw)
	}
	index, err := needInt(args, "index")
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(elems) {
		return nil, fmt.Errorf("array index %d out of range [0,%d)", index, len(elems))
	}
	return elems[index], nil
}

// opArraySet mutates an array held in a function-local variable in place.
func opArraySet(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	name, err := needRef(args, "array")
	if err != nil {
		return nil, err
	}
	current, ok := r.frame.locals[name]
	if !ok {
		return nil, fmt.Errorf("undefined variable %q", name)
	}
	elems, ok := arrayElems(current)
	if !ok {
		return nil, fmt.Errorf("variable %q does not hold an array, got %T", name, current)
	}
	index, err := needInt(args, "index")
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(elems) {
		return nil, fmt.Errorf("array index %d out of range [0,%d)", index, len(elems))
	}
	value, err := need(args, "value")
	if err != nil {
		return nil, err
	}
	elems[index] = value
	r.frame.locals[name] = elems
	return nil, nil
}

func opArrayLength(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	raw, err := need(args, "array")
	if err != nil {
		return nil, err
	}
	elems, ok := arrayElems(raw)
	if !ok {
		return nil, fmt.Errorf("array_length target is not an array, got %T", raw)
	}
	return float64(len(elems)), nil
}
