package ir

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/gputypes"
)

// ResourceType distinguishes the three resource kinds.
type ResourceType string

const (
	ResourceTexture2D     ResourceType = "texture2d"
	ResourceBuffer        ResourceType = "buffer"
	ResourceAtomicCounter ResourceType = "atomic_counter"
)

// SizeMode selects how a resource's extent is determined.
type SizeMode string

const (
	// SizeFixed uses the width/height declared on the SizeSpec.
	SizeFixed SizeMode = "fixed"
	// SizeViewport tracks the host viewport dimensions.
	SizeViewport SizeMode = "viewport"
	// SizeMatchResource copies another resource's extent.
	SizeMatchResource SizeMode = "match_resource"
	// SizeCPUDriven is undefined until an explicit resize command runs;
	// the element count is zero until then.
	SizeCPUDriven SizeMode = "cpu_driven"
)

// SizeSpec describes a resource's extent. Buffers use Width as the element
// count and leave Height at zero.
type SizeSpec struct {
	Mode          SizeMode `json:"mode"`
	Width         int      `json:"width,omitempty"`
	Height        int      `json:"height,omitempty"`
	MatchResource string   `json:"matchResource,omitempty"`
}

// Persistence is a resource's cross-frame retention policy.
type Persistence struct {
	Retain          bool `json:"retain"`
	ClearOnResize   bool `json:"clearOnResize,omitempty"`
	ClearEveryFrame bool `json:"clearEveryFrame,omitempty"`
	ClearValue      any  `json:"clearValue,omitempty"`
	CPUAccess       bool `json:"cpuAccess,omitempty"`
}

// UnmarshalJSON defaults Retain to true; resources persist across frames
// unless the document says otherwise.
func (p *Persistence) UnmarshalJSON(data []byte) error {
	type plain Persistence
	tmp := plain{Retain: true}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*p = Persistence(tmp)
	return nil
}

// ResourceDef declares a texture, buffer, or atomic counter.
type ResourceDef struct {
	ID   string       `json:"id"`
	Type ResourceType `json:"type"`

	// Format is the texel layout; textures only.
	Format string `json:"format,omitempty"`

	// DataType is the element layout for plain buffers.
	DataType DataType `json:"dataType,omitempty"`
	// StructType names a StructDef for struct-element buffers.
	StructType string `json:"structType,omitempty"`

	Size        SizeSpec    `json:"size"`
	Persistence Persistence `json:"persistence"`
}

// texel format names on the wire, mapped to the gputypes vocabulary shared
// with the GPU-backed implementations
var textureFormats = map[string]gputypes.TextureFormat{
	"r8unorm":     gputypes.TextureFormatR8Unorm,
	"rgba8unorm":  gputypes.TextureFormatRGBA8Unorm,
	"bgra8unorm":  gputypes.TextureFormatBGRA8Unorm,
	"r32float":    gputypes.TextureFormatR32Float,
	"rg32float":   gputypes.TextureFormatRG32Float,
	"rgba32float": gputypes.TextureFormatRGBA32Float,
}

// ParseTextureFormat maps a wire format name to its gputypes value.
func ParseTextureFormat(name string) (gputypes.TextureFormat, error) {
	if f, ok := textureFormats[name]; ok {
		return f, nil
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("unknown texture format %q", name)
}

// FormatChannels returns the per-texel channel count of a format.
func FormatChannels(format gputypes.TextureFormat) int {
	switch format {
	case gputypes.TextureFormatR8Unorm, gputypes.TextureFormatR32Float:
		return 1
	case gputypes.TextureFormatRG32Float:
		return 2
	default:
		return 4
	}
}

// ElementWidth returns the component count of a DataType (1 for scalars,
// 2-4 for vectors, 4/9/16 for matrices and quaternions).
func (t DataType) ElementWidth() int {
	switch t {
	case TypeFloat, TypeInt, TypeBool:
		return 1
	case TypeFloat2, TypeInt2:
		return 2
	case TypeFloat3, TypeInt3:
		return 3
	case TypeFloat4, TypeInt4, TypeQuat, TypeMat2:
		return 4
	case TypeMat3:
		return 9
	case TypeMat4:
		return 16
	default:
		return 0
	}
}

// IsVector reports whether t is a fixed-length vector type.
func (t DataType) IsVector() bool {
	switch t {
	case TypeFloat2, TypeFloat3, TypeFloat4, TypeInt2, TypeInt3, TypeInt4:
		return true
	default:
		return false
	}
}
