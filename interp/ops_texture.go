package interp

import (
	"fmt"
	"math"

	"github.com/gogpu/shadergraph/ir"
)

func init() {
	registerOp("color_mix", opColorMix)
	registerOp("texture_sample", opTextureSample)
	registerOp("texture_size", opTextureSize)
	registerOp("texture_store", opTextureStore)
}

// transparentEps is the alpha threshold below which a blended color
// collapses to fully transparent black instead of dividing by zero.
const transparentEps = 1e-6

// opColorMix is Porter-Duff source-over on straight (non-premultiplied)
// alpha.
func opColorMix(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	src, err := needVec(args, "src")
	if err != nil {
		return nil, err
	}
	dst, err := needVec(args, "dst")
	if err != nil {
		return nil, err
	}
	if len(src) != 4 || len(dst) != 4 {
		return nil, fmt.Errorf("color_mix requires float4 colors, got %d and %d components", len(src), len(dst))
	}
	return colorSourceOver(src, dst), nil
}

func colorSourceOver(src, dst []float64) []float64 {
	srcA, dstA := src[3], dst[3]
	outA := srcA + dstA*(1-srcA)
	if outA < transparentEps {
		return []float64{0, 0, 0, 0}
	}
	out := make([]float64, 4)
	for i := 0; i < 3; i++ {
		out[i] = (src[i]*srcA + dst[i]*dstA*(1-srcA)) / outA
	}
	out[3] = outA
	return out
}

// Coordinate wrap modes, applied independently per axis before lookup.
func wrapCoord(mode string, i, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("cannot sample an empty axis")
	}
	switch mode {
	case "clamp", "":
		if i < 0 {
			return 0, nil
		}
		if i >= n {
			return n - 1, nil
		}
		return i, nil
	case "repeat":
		i %= n
		if i < 0 {
			i += n
		}
		return i, nil
	case "mirror":
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
		return i, nil
	default:
		return 0, fmt.Errorf("unknown wrap mode %q", mode)
	}
}

// opTextureSample samples a texture at normalized uv coordinates. Sampled
// values are normalized to 4 channels regardless of the native channel
// count: 1 channel broadcasts across rgb, missing alpha defaults to 1.
func opTextureSample(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	tex, err := needResource(r, args, "texture")
	if err != nil {
		return nil, err
	}
	coord, err := needVec(args, "coord")
	if err != nil {
		return nil, err
	}
	if len(coord) != 2 {
		return nil, fmt.Errorf("sample coord must be a float2, got %d components", len(coord))
	}
	filter := stringArg(args, "filter", "nearest")
	wrapX := stringArg(args, "wrap_x", "clamp")
	wrapY := stringArg(args, "wrap_y", "clamp")

	w, h := tex.Width(), tex.Height()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("texture %q has no extent", tex.Def().ID)
	}

	switch filter {
	case "nearest":
		x, err := wrapCoord(wrapX, int(math.Floor(coord[0]*float64(w))), w)
		if err != nil {
			return nil, err
		}
		y, err := wrapCoord(wrapY, int(math.Floor(coord[1]*float64(h))), h)
		if err != nil {
			return nil, err
		}
		texel, err := tex.Texel(x, y)
		if err != nil {
			return nil, err
		}
		return vec4(texel), nil

	case "linear":
		return sampleLinear(tex, coord, wrapX, wrapY)

	default:
		return nil, fmt.Errorf("unknown filter mode %q", filter)
	}
}

// sampleLinear is bilinear filtering across 4 samples with wrap-aware
// neighbor resolution, using the half-texel offset convention
// coord*size - 0.5.
func sampleLinear(tex *Resource, coord []float64, wrapX, wrapY string) (Value, error) {
	w, h := tex.Width(), tex.Height()
	cx := coord[0]*float64(w) - 0.5
	cy := coord[1]*float64(h) - 0.5
	x0 := int(math.Floor(cx))
	y0 := int(math.Floor(cy))
	fx := cx - float64(x0)
	fy := cy - float64(y0)

	var corners [4][]float64
	for i, offset := range [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		x, err := wrapCoord(wrapX, x0+offset[0], w)
		if err != nil {
			return nil, err
		}
		y, err := wrapCoord(wrapY, y0+offset[1], h)
		if err != nil {
			return nil, err
		}
		texel, err := tex.Texel(x, y)
		if err != nil {
			return nil, err
		}
		corners[i] = vec4(texel)
	}

	out := make([]float64, 4)
	for c := 0; c < 4; c++ {
		top := corners[0][c]*(1-fx) + corners[1][c]*fx
		bottom := corners[2][c]*(1-fx) + corners[3][c]*fx
		out[c] = top*(1-fy) + bottom*fy
	}
	return out, nil
}

func opTextureSize(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	tex, err := needResource(r, args, "texture")
	if err != nil {
		return nil, err
	}
	return []float64{float64(tex.Width()), float64(tex.Height())}, nil
}

func opTextureStore(r *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	tex, err := needResource(r, args, "texture")
	if err != nil {
		return nil, err
	}
	coord, err := needVec(args, "coord")
	if err != nil {
		return nil, err
	}
	if len(coord) != 2 {
		return nil, fmt.Errorf("store coord must have 2 components, got %d", len(coord))
	}
	value, err := need(args, "value")
	if err != nil {
		return nil, err
	}
	return nil, tex.SetTexel(int(coord[0]), int(coord[1]), value)
}
