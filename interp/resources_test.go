package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/shadergraph/ir"
)

func floatBuffer(id string, width int, p ir.Persistence) *ir.ResourceDef {
	return &ir.ResourceDef{
		ID: id, Type: ir.ResourceBuffer, DataType: ir.TypeFloat,
		Size:        ir.SizeSpec{Mode: ir.SizeFixed, Width: width},
		Persistence: p,
	}
}

func TestResource_ResizePreservesSurvivors(t *testing.T) {
	def := floatBuffer("buf", 0, ir.Persistence{Retain: true, ClearValue: 4.0})
	res, err := newResource(def)
	require.NoError(t, err)

	res.Resize(10, 1)
	require.NoError(t, res.Store(0, 7.0))
	require.NoError(t, res.Store(9, 8.0))

	// Growth without clearOnResize keeps prior elements and clear-fills
	// only the new tail.
	res.Resize(20, 1)
	assert.Equal(t, 20, res.ElementCount())
	v, err := res.Load(0)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
	v, err = res.Load(9)
	require.NoError(t, err)
	assert.Equal(t, 8.0, v)
	v, err = res.Load(10)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
	v, err = res.Load(19)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
}

func TestResource_ResizeClearOnResize(t *testing.T) {
	def := floatBuffer("buf", 0, ir.Persistence{Retain: true, ClearOnResize: true, ClearValue: 4.0})
	res, err := newResource(def)
	require.NoError(t, err)

	res.Resize(10, 1)
	require.NoError(t, res.Store(3, 99.0))

	res.Resize(20, 1)
	for i := 0; i < 20; i++ {
		v, err := res.Load(i)
		require.NoError(t, err)
		assert.Equal(t, 4.0, v, "element %d", i)
	}
}

func TestResource_ResizeShrinkTruncates(t *testing.T) {
	def := floatBuffer("buf", 0, ir.Persistence{Retain: true})
	res, err := newResource(def)
	require.NoError(t, err)

	res.Resize(8, 1)
	require.NoError(t, res.Store(2, 5.0))
	res.Resize(4, 1)

	assert.Equal(t, 4, res.ElementCount())
	v, err := res.Load(2)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
	_, err = res.Load(4)
	assert.Error(t, err)
}

func TestResource_ClearExplicitValueWins(t *testing.T) {
	def := floatBuffer("buf", 0, ir.Persistence{Retain: true, ClearValue: 4.0})
	res, err := newResource(def)
	require.NoError(t, err)
	res.Resize(3, 1)

	res.Clear(9.0)
	v, err := res.Load(1)
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)

	// nil falls back to the declared clear value.
	res.Clear(nil)
	v, err = res.Load(1)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
}

func TestResource_OutOfBoundsIsFatal(t *testing.T) {
	def := floatBuffer("buf", 0, ir.Persistence{Retain: true})
	res, err := newResource(def)
	require.NoError(t, err)
	res.Resize(4, 1)

	_, err = res.Load(-1)
	assert.ErrorContains(t, err, "out of range")
	_, err = res.Load(4)
	assert.ErrorContains(t, err, "out of range")
	err = res.Store(4, 1.0)
	assert.ErrorContains(t, err, "out of range")
}

func TestResource_TexelCoercion(t *testing.T) {
	def := &ir.ResourceDef{
		ID: "tex", Type: ir.ResourceTexture2D, Format: "rgba8unorm",
		Size: ir.SizeSpec{Mode: ir.SizeFixed, Width: 2, Height: 2},
	}
	res, err := newResource(def)
	require.NoError(t, err)
	res.Resize(2, 2)

	// Scalar stores replicate across every channel.
	require.NoError(t, res.SetTexel(0, 0, 0.5))
	texel, err := res.Texel(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, texel)

	// Short vectors pad alpha to 1.
	require.NoError(t, res.SetTexel(1, 0, []float64{0.1, 0.2, 0.3}))
	texel, err = res.Texel(1, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 1.0}, texel)

	_, err = res.Texel(2, 0)
	assert.ErrorContains(t, err, "out of range")
}

func TestResource_SingleChannelTexture(t *testing.T) {
	def := &ir.ResourceDef{
		ID: "mask", Type: ir.ResourceTexture2D, Format: "r32float",
		Size: ir.SizeSpec{Mode: ir.SizeFixed, Width: 1, Height: 1},
	}
	res, err := newResource(def)
	require.NoError(t, err)
	res.Resize(1, 1)

	require.NoError(t, res.SetTexel(0, 0, []float64{0.25, 0.5, 0.75, 1.0}))
	texel, err := res.Texel(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25}, texel)
}

func TestResource_UnknownFormatRejected(t *testing.T) {
	def := &ir.ResourceDef{ID: "tex", Type: ir.ResourceTexture2D, Format: "rgb565"}
	_, err := newResource(def)
	assert.ErrorContains(t, err, "unknown texture format")
}
