package interp

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/shadergraph/ir"
)

// Resource is the runtime state of one ResourceDef (or one texture-typed
// input): current extent, a flat element store, and the definition handle.
// Buffers use width as the element count and leave height at 1. Texture
// elements are per-texel []float64 of the format's native channel count.
type Resource struct {
	def      *ir.ResourceDef
	format   gputypes.TextureFormat
	channels int

	width  int
	height int
	elems  []Value
}

func newResource(def *ir.ResourceDef) (*Resource, error) {
	r := &Resource{def: def}
	if def.Type == ir.ResourceTexture2D {
		format, err := ir.ParseTextureFormat(def.Format)
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", def.ID, err)
		}
		r.format = format
		r.channels = ir.FormatChannels(format)
	}
	return r, nil
}

// Def returns the resource's definition.
func (r *Resource) Def() *ir.ResourceDef { return r.def }

// Format returns the texel format; textures only.
func (r *Resource) Format() gputypes.TextureFormat { return r.format }

// Width returns the current width (element count for buffers).
func (r *Resource) Width() int { return r.width }

// Height returns the current height (1 for buffers and counters).
func (r *Resource) Height() int { return r.height }

// Extent returns the current extent in gputypes form.
func (r *Resource) Extent() gputypes.Extent3D {
	h := r.height
	if h < 1 {
		h = 1
	}
	return gputypes.Extent3D{
		Width:              uint32(r.width),
		Height:             uint32(h),
		DepthOrArrayLayers: 1,
	}
}

// ElementCount returns the number of addressable elements.
func (r *Resource) ElementCount() int { return len(r.elems) }

// clearValue returns the declared clear value converted to one element's
// runtime shape, or the zero element when none is declared.
func (r *Resource) clearValue() Value {
	if r.def.Persistence.ClearValue != nil {
		return r.elementFrom(fromLiteral(r.def.Persistence.ClearValue))
	}
	return r.zeroElement()
}

func (r *Resource) zeroElement() Value {
	switch r.def.Type {
	case ir.ResourceTexture2D:
		return make([]float64, r.channels)
	case ir.ResourceBuffer:
		if w := r.def.DataType.ElementWidth(); w > 1 {
			return make([]float64, w)
		}
		if r.def.StructType != "" {
			return map[string]Value{}
		}
		return float64(0)
	default:
		return float64(0)
	}
}

// elementFrom coerces a runtime value to this resource's element shape.
// Scalars replicate across texel channels; vectors pad or truncate.
func (r *Resource) elementFrom(v Value) Value {
	if r.def.Type != ir.ResourceTexture2D {
		return v
	}
	texel := make([]float64, r.channels)
	if vec, ok := asVec(v); ok {
		norm := vec4(vec)
		for i := range texel {
			texel[i] = norm[i]
		}
		return texel
	}
	if f, err := toFloat(v); err == nil {
		for i := range texel {
			texel[i] = f
		}
	}
	return texel
}

// Resize sets the extent to w×h (h is ignored for buffers and counters)
// and reconciles the element store. With clearOnResize the whole new
// extent is filled with the clear value. Otherwise surviving elements keep
// their prior values: growth clear-fills only the new tail, shrinking
// truncates.
func (r *Resource) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 1 {
		h = 1
	}
	if r.def.Type != ir.ResourceTexture2D {
		h = 1
	}
	r.width, r.height = w, h

	count := w * h
	if r.def.Persistence.ClearOnResize {
		r.elems = make([]Value, count)
		fill := r.clearValue()
		for i := range r.elems {
			r.elems[i] = cloneElement(fill)
		}
		return
	}
	old := r.elems
	r.elems = make([]Value, count)
	n := copy(r.elems, old)
	fill := r.clearValue()
	for i := n; i < count; i++ {
		r.elems[i] = cloneElement(fill)
	}
}

// Clear fills every element. A non-nil value overrides the persistence
// default: explicit clear values always win.
func (r *Resource) Clear(value Value) {
	fill := r.clearValue()
	if value != nil {
		fill = r.elementFrom(value)
	}
	for i := range r.elems {
		r.elems[i] = cloneElement(fill)
	}
}

// Load returns the element at index. Out-of-bounds access is a hard
// runtime error, never silently clamped.
func (r *Resource) Load(index int) (Value, error) {
	if index < 0 || index >= len(r.elems) {
		return nil, fmt.Errorf("resource %q: index %d out of range [0,%d)", r.def.ID, index, len(r.elems))
	}
	return r.elems[index], nil
}

// Store writes the element at index, bounds-checked like Load.
func (r *Resource) Store(index int, v Value) error {
	if index < 0 || index >= len(r.elems) {
		return fmt.Errorf("resource %q: index %d out of range [0,%d)", r.def.ID, index, len(r.elems))
	}
	r.elems[index] = v
	return nil
}

// Texel returns the native-channel texel at (x, y), bounds-checked.
func (r *Resource) Texel(x, y int) ([]float64, error) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return nil, fmt.Errorf("resource %q: texel (%d,%d) out of range %dx%d", r.def.ID, x, y, r.width, r.height)
	}
	texel, _ := r.elems[y*r.width+x].([]float64)
	if texel == nil {
		texel = make([]float64, r.channels)
	}
	return texel, nil
}

// SetTexel writes a texel at (x, y), coercing value to the native channel
// count.
func (r *Resource) SetTexel(x, y int, value Value) error {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return fmt.Errorf("resource %q: texel (%d,%d) out of range %dx%d", r.def.ID, x, y, r.width, r.height)
	}
	r.elems[y*r.width+x] = r.elementFrom(value)
	return nil
}

// Elements exposes the flat element store for cpuAccess readback.
func (r *Resource) Elements() []Value { return r.elems }

func cloneElement(v Value) Value {
	switch val := v.(type) {
	case []float64:
		out := make([]float64, len(val))
		copy(out, val)
		return out
	case []Value:
		out := make([]Value, len(val))
		copy(out, val)
		return out
	case map[string]Value:
		out := make(map[string]Value, len(val))
		for k, e := range val {
			out[k] = e
		}
		return out
	default:
		return v
	}
}
