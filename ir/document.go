package ir

// Document is the top-level IR container. It is produced by an external
// authoring process as plain structured data, validated once, and then
// interpreted per frame.
type Document struct {
	// Version of the IR wire format
	Version string `json:"version,omitempty"`

	// Meta holds free-form document metadata
	Meta map[string]any `json:"meta,omitempty"`

	// EntryPoint is the id of a cpu-typed function
	EntryPoint string `json:"entryPoint"`

	// Inputs holds host-provided uniforms
	Inputs []InputDef `json:"inputs,omitempty"`

	// Resources holds textures, buffers, and atomic counters
	Resources []ResourceDef `json:"resources,omitempty"`

	// Structs holds shared layout definitions
	Structs []StructDef `json:"structs,omitempty"`

	// Functions holds all function definitions
	Functions []FunctionDef `json:"functions"`
}

// FunctionType distinguishes host-driven functions from shader stages.
type FunctionType string

const (
	FunctionCPU    FunctionType = "cpu"
	FunctionShader FunctionType = "shader"
)

// DataType names a POD value layout for ports, locals, and buffer elements.
type DataType string

const (
	TypeFloat  DataType = "float"
	TypeInt    DataType = "int"
	TypeBool   DataType = "bool"
	TypeFloat2 DataType = "float2"
	TypeFloat3 DataType = "float3"
	TypeFloat4 DataType = "float4"
	TypeInt2   DataType = "int2"
	TypeInt3   DataType = "int3"
	TypeInt4   DataType = "int4"
	TypeMat2   DataType = "mat2"
	TypeMat3   DataType = "mat3"
	TypeMat4   DataType = "mat4"
	TypeQuat   DataType = "quat"
	TypeStruct DataType = "struct"
)

// InputDef declares a host-provided uniform value.
type InputDef struct {
	ID      string   `json:"id"`
	Type    DataType `json:"type"`
	Default any      `json:"default,omitempty"`
}

// StructDef is a shared layout definition referenced by buffers and
// struct_construct nodes.
type StructDef struct {
	ID     string        `json:"id"`
	Fields []StructField `json:"fields"`
}

// StructField is a single member of a struct layout.
type StructField struct {
	Name string   `json:"name"`
	Type DataType `json:"type"`
}

// Field returns the field with the given name, or nil.
func (s *StructDef) Field(name string) *StructField {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// PortDef is a typed input or output port of a function.
type PortDef struct {
	ID   string   `json:"id"`
	Type DataType `json:"type"`
}

// LocalVarDef is a function-local mutable variable.
type LocalVarDef struct {
	ID      string   `json:"id"`
	Type    DataType `json:"type"`
	Initial any      `json:"initial,omitempty"`
}

// FunctionDef is a flat list of nodes. Structure (loops, branches) is
// expressed through node properties, never through nesting.
type FunctionDef struct {
	ID        string        `json:"id"`
	Type      FunctionType  `json:"type"`
	Inputs    []PortDef     `json:"inputs,omitempty"`
	Outputs   []PortDef     `json:"outputs,omitempty"`
	LocalVars []LocalVarDef `json:"localVars,omitempty"`
	Nodes     []Node        `json:"nodes"`
}

// Node returns the node with the given id, or nil.
func (f *FunctionDef) Node(id string) *Node {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i]
		}
	}
	return nil
}

// LocalVar returns the local variable with the given id, or nil.
func (f *FunctionDef) LocalVar(id string) *LocalVarDef {
	for i := range f.LocalVars {
		if f.LocalVars[i].ID == id {
			return &f.LocalVars[i]
		}
	}
	return nil
}

// Input returns the input port with the given id, or nil.
func (f *FunctionDef) Input(id string) *PortDef {
	for i := range f.Inputs {
		if f.Inputs[i].ID == id {
			return &f.Inputs[i]
		}
	}
	return nil
}

// Function returns the function with the given id, or nil.
func (d *Document) Function(id string) *FunctionDef {
	for i := range d.Functions {
		if d.Functions[i].ID == id {
			return &d.Functions[i]
		}
	}
	return nil
}

// Resource returns the resource with the given id, or nil.
func (d *Document) Resource(id string) *ResourceDef {
	for i := range d.Resources {
		if d.Resources[i].ID == id {
			return &d.Resources[i]
		}
	}
	return nil
}

// Input returns the document input with the given id, or nil.
func (d *Document) Input(id string) *InputDef {
	for i := range d.Inputs {
		if d.Inputs[i].ID == id {
			return &d.Inputs[i]
		}
	}
	return nil
}

// Struct returns the struct definition with the given id, or nil.
func (d *Document) Struct(id string) *StructDef {
	for i := range d.Structs {
		if d.Structs[i].ID == id {
			return &d.Structs[i]
		}
	}
	return nil
}
