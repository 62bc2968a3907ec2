package interp

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/shadergraph/ir"
)

func init() {
	registerOp("call_func", opCallFunc)
	registerOp("cmd_resize_resource", opCmdResizeResource)
	registerOp("cmd_clear_resource", opCmdClearResource)
	registerOp("cmd_dispatch", opCmdDispatch)
	registerOp("cmd_draw", opCmdDraw)
}

func opCallFunc(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	funcID, err := needRef(args, "func")
	if err != nil {
		return nil, err
	}
	callArgs, _ := args["args"].(map[string]Value)
	return r.x.callFunction(funcID, callArgs)
}

// opCmdResizeResource infers 1D vs 2D from the size argument's shape: a
// scalar resizes one dimension, a 2-tuple sets width and height.
func opCmdResizeResource(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	res, err := needResource(r, args, "resource")
	if err != nil {
		return nil, err
	}
	size, err := need(args, "size")
	if err != nil {
		return nil, err
	}
	if vec, ok := asVec(size); ok {
		if len(vec) != 2 {
			return nil, fmt.Errorf("resize size must be a scalar or a 2-tuple, got %d components", len(vec))
		}
		res.Resize(int(vec[0]), int(vec[1]))
		return nil, nil
	}
	n, err := toInt(size)
	if err != nil {
		return nil, err
	}
	res.Resize(n, 1)
	return nil, nil
}

func opCmdClearResource(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	res, err := needResource(r, args, "resource")
	if err != nil {
		return nil, err
	}
	res.Clear(args["value"])
	return nil, nil
}

func dispatchGrid(size Value) (gputypes.Extent3D, error) {
	grid := gputypes.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1}
	if vec, ok := asVec(size); ok {
		switch len(vec) {
		case 2:
			grid.Width, grid.Height = gridDim(vec[0]), gridDim(vec[1])
		case 3:
			grid.Width, grid.Height = gridDim(vec[0]), gridDim(vec[1])
			grid.DepthOrArrayLayers = gridDim(vec[2])
		default:
			return grid, fmt.Errorf("dispatch count must have 1-3 components, got %d", len(vec))
		}
		return grid, nil
	}
	n, err := toInt(size)
	if err != nil {
		return grid, err
	}
	if n < 0 {
		n = 0
	}
	grid.Width = uint32(n)
	return grid, nil
}

// gridDim truncates one grid dimension, clamping negatives to an empty
// grid.
func gridDim(v float64) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}

// opCmdDispatch invokes a shader function once per cell of the invocation
// grid, in raster order: z, then y, then x. Per-invocation builtins are
// replaced between cells and restored afterwards.
func opCmdDispatch(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	funcID, err := needRef(args, "func")
	if err != nil {
		return nil, err
	}
	fn := r.x.doc.Function(funcID)
	if fn == nil {
		return nil, fmt.Errorf("unknown function %q", funcID)
	}
	if fn.Type != ir.FunctionShader {
		return nil, fmt.Errorf("cmd_dispatch target %q is not a shader function", funcID)
	}
	count, err := need(args, "count")
	if err != nil {
		return nil, err
	}
	grid, err := dispatchGrid(count)
	if err != nil {
		return nil, err
	}
	callArgs, _ := args["args"].(map[string]Value)

	prev := r.x.ctx.SetBuiltins(nil)
	defer r.x.ctx.SetBuiltins(prev)

	for z := uint32(0); z < grid.DepthOrArrayLayers; z++ {
		for y := uint32(0); y < grid.Height; y++ {
			for x := uint32(0); x < grid.Width; x++ {
				r.x.ctx.SetBuiltins(map[string]Value{
					"global_invocation_id": []float64{float64(x), float64(y), float64(z)},
					"local_invocation_id":  []float64{float64(x), float64(y), float64(z)},
					"workgroup_id":         []float64{0, 0, 0},
				})
				if _, err := r.x.callFunction(funcID, callArgs); err != nil {
					return nil, fmt.Errorf("dispatch %q at (%d,%d,%d): %w", funcID, x, y, z, err)
				}
			}
		}
	}
	return nil, nil
}

// opCmdDraw runs the vertex stage once per generated vertex (three per
// primitive), rasterizes each triangle, and runs the fragment stage once
// per covered pixel of the target texture.
func opCmdDraw(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	vertexID, err := needRef(args, "vertex_func")
	if err != nil {
		return nil, err
	}
	fragmentID, err := needRef(args, "fragment_func")
	if err != nil {
		return nil, err
	}
	target, err := needResource(r, args, "target")
	if err != nil {
		return nil, err
	}
	primitives, err := needInt(args, "primitive_count")
	if err != nil {
		return nil, err
	}
	blend := stringArg(args, "blend", "opaque")
	if blend != "opaque" && blend != "source_over" {
		return nil, fmt.Errorf("unknown blend mode %q", blend)
	}

	prev := r.x.ctx.SetBuiltins(nil)
	defer r.x.ctx.SetBuiltins(prev)

	w, h := target.Width(), target.Height()
	for p := 0; p < primitives; p++ {
		var tri [3][2]float64
		for v := 0; v < 3; v++ {
			index := p*3 + v
			r.x.ctx.SetBuiltins(map[string]Value{
				"vertex_index": float64(index),
			})
			result, err := r.x.callFunction(vertexID, nil)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", index, err)
			}
			pos, ok := asVec(result)
			if !ok || len(pos) < 2 {
				return nil, fmt.Errorf("vertex %d: stage must return a clip position vector", index)
			}
			// Clip space [-1,1] to pixel space, y up.
			tri[v][0] = (pos[0]*0.5 + 0.5) * float64(w)
			tri[v][1] = (0.5 - pos[1]*0.5) * float64(h)
		}
		if err := r.rasterize(fragmentID, target, tri, blend); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (r *funcRun) rasterize(fragmentID string, target *Resource, tri [3][2]float64, blend string) error {
	w, h := target.Width(), target.Height()
	minX := int(math.Floor(math.Min(tri[0][0], math.Min(tri[1][0], tri[2][0]))))
	maxX := int(math.Ceil(math.Max(tri[0][0], math.Max(tri[1][0], tri[2][0]))))
	minY := int(math.Floor(math.Min(tri[0][1], math.Min(tri[1][1], tri[2][1]))))
	maxY := int(math.Ceil(math.Max(tri[0][1], math.Max(tri[1][1], tri[2][1]))))
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > w {
		maxX = w
	}
	if maxY > h {
		maxY = h
	}

	area := edgeFn(tri[0], tri[1], tri[2])
	if area == 0 {
		return nil
	}
	for py := minY; py < maxY; py++ {
		for px := minX; px < maxX; px++ {
			p := [2]float64{float64(px) + 0.5, float64(py) + 0.5}
			w0 := edgeFn(tri[1], tri[2], p) / area
			w1 := edgeFn(tri[2], tri[0], p) / area
			w2 := edgeFn(tri[0], tri[1], p) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			r.x.ctx.SetBuiltins(map[string]Value{
				"fragment_coord": []float64{p[0], p[1]},
			})
			result, err := r.x.callFunction(fragmentID, nil)
			if err != nil {
				return fmt.Errorf("fragment (%d,%d): %w", px, py, err)
			}
			color, ok := asVec(result)
			if !ok {
				return fmt.Errorf("fragment (%d,%d): stage must return a color vector", px, py)
			}
			src := vec4(color)
			if blend == "source_over" {
				dst, err := target.Texel(px, py)
				if err != nil {
					return err
				}
				src = colorSourceOver(src, vec4(dst))
			}
			if err := target.SetTexel(px, py, src); err != nil {
				return err
			}
		}
	}
	return nil
}

func edgeFn(a, b, p [2]float64) float64 {
	return (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
}
