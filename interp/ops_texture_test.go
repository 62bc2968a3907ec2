package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/shadergraph/ir"
)

func testTexture(t *testing.T, w, h int) *Resource {
	t.Helper()
	def := &ir.ResourceDef{
		ID: "tex", Type: ir.ResourceTexture2D, Format: "rgba32float",
		Size: ir.SizeSpec{Mode: ir.SizeFixed, Width: w, Height: h},
	}
	res, err := newResource(def)
	require.NoError(t, err)
	res.Resize(w, h)
	return res
}

func TestColorSourceOver(t *testing.T) {
	// Opaque source fully replaces the destination.
	out := colorSourceOver([]float64{1, 0, 0, 1}, []float64{0, 0, 1, 1})
	assert.Equal(t, []float64{1, 0, 0, 1}, out)

	// Half-transparent red over opaque blue.
	out = colorSourceOver([]float64{1, 0, 0, 0.5}, []float64{0, 0, 1, 1})
	assert.InDelta(t, 0.5, out[0], 1e-12)
	assert.InDelta(t, 0.0, out[1], 1e-12)
	assert.InDelta(t, 0.5, out[2], 1e-12)
	assert.InDelta(t, 1.0, out[3], 1e-12)

	// Transparent source leaves the destination.
	out = colorSourceOver([]float64{1, 1, 1, 0}, []float64{0.2, 0.4, 0.6, 1})
	assert.Equal(t, []float64{0.2, 0.4, 0.6, 1}, out)
}

// When both colors are effectively transparent the result collapses to
// transparent black instead of dividing by a near-zero alpha.
func TestColorSourceOver_TransparentGuard(t *testing.T) {
	out := colorSourceOver([]float64{1, 1, 1, 0}, []float64{1, 1, 1, 0})
	assert.Equal(t, []float64{0, 0, 0, 0}, out)

	out = colorSourceOver([]float64{0.9, 0.9, 0.9, 1e-9}, []float64{0.9, 0.9, 0.9, 0})
	assert.Equal(t, []float64{0, 0, 0, 0}, out)
}

func TestWrapCoord(t *testing.T) {
	cases := []struct {
		mode string
		i    int
		n    int
		want int
	}{
		{"clamp", -3, 4, 0},
		{"clamp", 2, 4, 2},
		{"clamp", 9, 4, 3},
		{"repeat", 5, 4, 1},
		{"repeat", -1, 4, 3},
		{"mirror", 4, 4, 3},
		{"mirror", 5, 4, 2},
		{"mirror", -1, 4, 0},
		{"", 9, 4, 3}, // empty mode defaults to clamp
	}
	for _, tc := range cases {
		got, err := wrapCoord(tc.mode, tc.i, tc.n)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "wrapCoord(%q, %d, %d)", tc.mode, tc.i, tc.n)
	}

	_, err := wrapCoord("bogus", 0, 4)
	assert.ErrorContains(t, err, "unknown wrap mode")
	_, err = wrapCoord("clamp", 0, 0)
	assert.ErrorContains(t, err, "empty axis")
}

// The center of a 2x2 texture blends all four texels equally under the
// half-texel offset convention.
func TestSampleLinear_CenterBlend(t *testing.T) {
	tex := testTexture(t, 2, 2)
	require.NoError(t, tex.SetTexel(0, 0, []float64{1, 0, 0, 1}))
	require.NoError(t, tex.SetTexel(1, 0, []float64{0, 1, 0, 1}))
	require.NoError(t, tex.SetTexel(0, 1, []float64{0, 0, 1, 1}))
	require.NoError(t, tex.SetTexel(1, 1, []float64{0, 0, 0, 1}))

	out, err := sampleLinear(tex, []float64{0.5, 0.5}, "clamp", "clamp")
	require.NoError(t, err)
	vec, ok := out.([]float64)
	require.True(t, ok)
	assert.InDelta(t, 0.25, vec[0], 1e-12)
	assert.InDelta(t, 0.25, vec[1], 1e-12)
	assert.InDelta(t, 0.25, vec[2], 1e-12)
	assert.InDelta(t, 1.0, vec[3], 1e-12)
}

// Exactly on a texel center, bilinear filtering returns that texel.
func TestSampleLinear_TexelCenterExact(t *testing.T) {
	tex := testTexture(t, 2, 2)
	require.NoError(t, tex.SetTexel(0, 0, []float64{1, 0, 0, 1}))
	require.NoError(t, tex.SetTexel(1, 0, []float64{0, 1, 0, 1}))
	require.NoError(t, tex.SetTexel(0, 1, []float64{0, 0, 1, 1}))
	require.NoError(t, tex.SetTexel(1, 1, []float64{0, 0, 0, 1}))

	// uv (0.25, 0.25) maps to texel center (0, 0).
	out, err := sampleLinear(tex, []float64{0.25, 0.25}, "clamp", "clamp")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0, 1}, out)
}

func TestTextureSample_EndToEnd(t *testing.T) {
	doc := exprDoc("r",
		node("coord", "const", map[string]any{"value": []any{0.25, 0.25}}),
		node("r", "texture_sample", map[string]any{
			"texture": "tex", "coord": "coord", "filter": "nearest",
		}))
	doc.Resources = append(doc.Resources, ir.ResourceDef{
		ID: "tex", Type: ir.ResourceTexture2D, Format: "rgba32float",
		Size: ir.SizeSpec{Mode: ir.SizeFixed, Width: 2, Height: 2},
	})

	ctx, err := NewContext(doc, nil)
	require.NoError(t, err)
	tex, err := ctx.Resource("tex")
	require.NoError(t, err)
	require.NoError(t, tex.SetTexel(0, 0, []float64{0.5, 0.25, 0.125, 1}))

	x := NewExecutor(doc, ctx)
	require.NoError(t, x.Run())
	out, err := ctx.Resource("out")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.25, 0.125, 1}, out.Elements()[0])
}

// Single-channel textures broadcast across rgb when sampled.
func TestTextureSample_SingleChannelNormalization(t *testing.T) {
	def := &ir.ResourceDef{
		ID: "mask", Type: ir.ResourceTexture2D, Format: "r32float",
		Size: ir.SizeSpec{Mode: ir.SizeFixed, Width: 1, Height: 1},
	}
	tex, err := newResource(def)
	require.NoError(t, err)
	tex.Resize(1, 1)
	require.NoError(t, tex.SetTexel(0, 0, 0.75))

	out, err := sampleLinear(tex, []float64{0.5, 0.5}, "clamp", "clamp")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.75, 0.75, 0.75, 1}, out)
}
