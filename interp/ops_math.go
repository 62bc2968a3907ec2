package interp

import (
	"fmt"
	"math"

	"github.com/gogpu/shadergraph/ir"
)

func init() {
	registerOp("const", opConst)
	registerOp("var_read", opVarRead)
	registerOp("var_write", opVarWrite)
	registerOp("builtin_read", opBuiltinRead)
	registerOp("static_cast_float", opCastFloat)
	registerOp("static_cast_int", opCastInt)
	registerOp("static_cast_bool", opCastBool)

	registerBinary("math_add", func(x, y float64) float64 { return x + y })
	registerBinary("math_sub", func(x, y float64) float64 { return x - y })
	registerBinary("math_mul", func(x, y float64) float64 { return x * y })
	registerBinary("math_div", func(x, y float64) float64 { return x / y })
	registerBinary("math_mod", math.Mod)
	registerBinary("math_pow", math.Pow)
	registerBinary("math_min", math.Min)
	registerBinary("math_max", math.Max)
	registerBinary("math_atan2", math.Atan2)

	registerUnary("math_abs", math.Abs)
	registerUnary("math_floor", math.Floor)
	registerUnary("math_ceil", math.Ceil)
	registerUnary("math_round", math.Round)
	registerUnary("math_sqrt", math.Sqrt)
	registerUnary("math_sin", math.Sin)
	registerUnary("math_cos", math.Cos)
	registerUnary("math_tan", math.Tan)
	registerUnary("math_exp", math.Exp)
	registerUnary("math_log", math.Log)
	registerUnary("math_sign", signOf)
	registerUnary("math_fract", func(x float64) float64 { return x - math.Floor(x) })
	registerUnary("math_neg", func(x float64) float64 { return -x })

	registerOp("math_clamp", opClamp)
	registerOp("math_mix", opMix)
	registerOp("math_smoothstep", opSmoothstep)

	registerCompare("compare_eq", func(x, y float64) bool { return x == y })
	registerCompare("compare_ne", func(x, y float64) bool { return x != y })
	registerCompare("compare_lt", func(x, y float64) bool { return x < y })
	registerCompare("compare_le", func(x, y float64) bool { return x <= y })
	registerCompare("compare_gt", func(x, y float64) bool { return x > y })
	registerCompare("compare_ge", func(x, y float64) bool { return x >= y })

	registerOp("logic_and", opLogicAnd)
	registerOp("logic_or", opLogicOr)
	registerOp("logic_not", opLogicNot)
}

func registerBinary(name string, f func(x, y float64) float64) {
	registerOp(name, func(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
		a, err := need(args, "a")
		if err != nil {
			return nil, err
		}
		b, err := need(args, "b")
		if err != nil {
			return nil, err
		}
		return numericBinary(a, b, f)
	})
}

func registerUnary(name string, f func(x float64) float64) {
	registerOp(name, func(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
		v, err := need(args, "value")
		if err != nil {
			return nil, err
		}
		return numericUnary(v, f)
	})
}

func registerCompare(name string, pred func(x, y float64) bool) {
	registerOp(name, func(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
		a, err := need(args, "a")
		if err != nil {
			return nil, err
		}
		b, err := need(args, "b")
		if err != nil {
			return nil, err
		}
		return compareValues(a, b, pred)
	})
}

func signOf(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func opConst(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	return need(args, "value")
}

func opVarRead(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	name, err := needRef(args, "var")
	if err != nil {
		return nil, err
	}
	return r.x.ctx.LookupVar(name)
}

func opVarWrite(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	name, err := needRef(args, "var")
	if err != nil {
		return nil, err
	}
	value, err := need(args, "value")
	if err != nil {
		return nil, err
	}
	if _, ok := r.frame.locals[name]; !ok {
		return nil, fmt.Errorf("undefined variable %q", name)
	}
	r.frame.locals[name] = value
	return value, nil
}

func opBuiltinRead(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	name := stringArg(args, "name", "")
	if name == "" {
		return nil, fmt.Errorf("missing builtin name")
	}
	if v, ok := r.x.ctx.builtins[name]; ok {
		return v, nil
	}
	if v, ok := r.x.ctx.host[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("builtin %q is not set in this invocation", name)
}

func opCastFloat(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	v, err := need(args, "value")
	if err != nil {
		return nil, err
	}
	if b, ok := v.(bool); ok {
		if b {
			return float64(1), nil
		}
		return float64(0), nil
	}
	return numericUnary(v, func(x float64) float64 { return x })
}

// opCastInt truncates toward zero through 32-bit integer reinterpretation,
// never rounding.
func opCastInt(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	v, err := need(args, "value")
	if err != nil {
		return nil, err
	}
	if b, ok := v.(bool); ok {
		if b {
			return float64(1), nil
		}
		return float64(0), nil
	}
	return numericUnary(v, func(x float64) float64 { return float64(int32(x)) })
}

func opCastBool(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	v, err := need(args, "value")
	if err != nil {
		return nil, err
	}
	return toBool(v)
}

func opClamp(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	v, err := need(args, "value")
	if err != nil {
		return nil, err
	}
	lo, err := need(args, "min")
	if err != nil {
		return nil, err
	}
	hi, err := need(args, "max")
	if err != nil {
		return nil, err
	}
	out, err := numericBinary(v, lo, math.Max)
	if err != nil {
		return nil, err
	}
	return numericBinary(out, hi, math.Min)
}

func opMix(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	a, err := need(args, "a")
	if err != nil {
		return nil, err
	}
	b, err := need(args, "b")
	if err != nil {
		return nil, err
	}
	t, err := need(args, "t")
	if err != nil {
		return nil, err
	}
	delta, err := numericBinary(b, a, func(x, y float64) float64 { return x - y })
	if err != nil {
		return nil, err
	}
	scaled, err := numericBinary(delta, t, func(x, y float64) float64 { return x * y })
	if err != nil {
		return nil, err
	}
	return numericBinary(a, scaled, func(x, y float64) float64 { return x + y })
}

func opSmoothstep(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	e0, err := need(args, "edge0")
	if err != nil {
		return nil, err
	}
	e1, err := need(args, "edge1")
	if err != nil {
		return nil, err
	}
	v, err := need(args, "value")
	if err != nil {
		return nil, err
	}
	num, err := numericBinary(v, e0, func(x, y float64) float64 { return x - y })
	if err != nil {
		return nil, err
	}
	den, err := numericBinary(e1, e0, func(x, y float64) float64 { return x - y })
	if err != nil {
		return nil, err
	}
	t, err := numericBinary(num, den, func(x, y float64) float64 { return x / y })
	if err != nil {
		return nil, err
	}
	return numericUnary(t, func(x float64) float64 {
		x = math.Max(0, math.Min(1, x))
		return x * x * (3 - 2*x)
	})
}

func opLogicAnd(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	a, b, err := boolPair(args)
	if err != nil {
		return nil, err
	}
	return a && b, nil
}

func opLogicOr(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	a, b, err := boolPair(args)
	if err != nil {
		return nil, err
	}
	return a || b, nil
}

func opLogicNot(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	v, err := need(args, "value")
	if err != nil {
		return nil, err
	}
	b, err := toBool(v)
	if err != nil {
		return nil, err
	}
	return !b, nil
}

func boolPair(args map[string]Value) (bool, bool, error) {
	av, err := need(args, "a")
	if err != nil {
		return false, false, err
	}
	bv, err := need(args, "b")
	if err != nil {
		return false, false, err
	}
	a, err := toBool(av)
	if err != nil {
		return false, false, err
	}
	b, err := toBool(bv)
	if err != nil {
		return false, false, err
	}
	return a, b, nil
}
