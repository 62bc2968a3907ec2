package interp

import (
	"github.com/gogpu/shadergraph/ir"
)

func init() {
	registerOp("buffer_load", opBufferLoad)
	registerOp("buffer_store", opBufferStore)
	registerOp("buffer_length", opBufferLength)
	registerOp("atomic_increment", opAtomicIncrement)
}

// opBufferLoad is bounds-checked against the resource's current element
// count; out-of-bounds access fails loudly rather than returning a
// default.
func opBufferLoad(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	buf, err := needResource(r, args, "buffer")
	if err != nil {
		return nil, err
	}
	index, err := needInt(args, "index")
	if err != nil {
		return nil, err
	}
	v, err := buf.Load(index)
	if err != nil {
		return nil, err
	}
	return cloneElement(v), nil
}

func opBufferStore(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	buf, err := needResource(r, args, "buffer")
	if err != nil {
		return nil, err
	}
	index, err := needInt(args, "index")
	if err != nil {
		return nil, err
	}
	value, err := need(args, "value")
	if err != nil {
		return nil, err
	}
	return nil, buf.Store(index, cloneElement(value))
}

func opBufferLength(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	buf, err := needResource(r, args, "buffer")
	if err != nil {
		return nil, err
	}
	return float64(buf.ElementCount()), nil
}

// opAtomicIncrement bumps the counter and returns the previous value.
func opAtomicIncrement(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	counter, err := needResource(r, args, "counter")
	if err != nil {
		return nil, err
	}
	prev, err := counter.Load(0)
	if err != nil {
		return nil, err
	}
	f, err := toFloat(prev)
	if err != nil {
		f = 0
	}
	if err := counter.Store(0, f+1); err != nil {
		return nil, err
	}
	return f, nil
}
