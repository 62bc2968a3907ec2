package ir

// ArgSpec declares one named argument of an operation.
type ArgSpec struct {
	Name string

	// Optional arguments may be entirely absent.
	Optional bool

	// Refable slots interpret a string value as a reference. A literal
	// string in a refable slot is invalid unless LiteralTypes allows it.
	Refable bool

	// RequiredRef slots must be a string reference, never a literal.
	RequiredRef bool

	// LiteralTypes is the closed set of literal shapes accepted when the
	// value is not a reference. An int literal satisfies a float slot.
	LiteralTypes []LiteralType
}

// OpSchema declares an operation's complete argument contract. The
// registry is consumed by both edge reconstruction and the validator.
type OpSchema struct {
	Name string
	Args []ArgSpec

	// Executable marks side-effecting operations; only these participate
	// in execution edges.
	Executable bool

	// Dynamic operations carry a consolidated argument container whose
	// key set is not fixed by the schema.
	Dynamic bool

	// ContainerKey names the dynamic container property ("args"/"values").
	ContainerKey string

	// ExecOutPorts lists the reserved keys this op may use for outgoing
	// execution edges.
	ExecOutPorts []string
}

// Arg returns the declared argument with the given name, or nil.
func (s *OpSchema) Arg(name string) *ArgSpec {
	for i := range s.Args {
		if s.Args[i].Name == name {
			return &s.Args[i]
		}
	}
	return nil
}

var opRegistry = map[string]*OpSchema{}

func register(s OpSchema) {
	if _, exists := opRegistry[s.Name]; exists {
		panic("duplicate op schema: " + s.Name)
	}
	if s.Executable && s.ExecOutPorts == nil {
		s.ExecOutPorts = []string{KeyNext, KeyExecOut}
	}
	opRegistry[s.Name] = &s
}

// LookupOp returns the schema for an operation name, or nil.
func LookupOp(name string) *OpSchema {
	return opRegistry[name]
}

// Ops returns the names of all registered operations.
func Ops() []string {
	names := make([]string, 0, len(opRegistry))
	for name := range opRegistry {
		names = append(names, name)
	}
	return names
}

// Literal shape groups shared by the schema tables below.
var (
	numericLits = []LiteralType{
		LiteralFloat, LiteralInt,
		LiteralFloat2, LiteralFloat3, LiteralFloat4,
		LiteralInt2, LiteralInt3, LiteralInt4,
	}
	scalarLits   = []LiteralType{LiteralFloat, LiteralInt}
	intLits      = []LiteralType{LiteralInt}
	boolLits     = []LiteralType{LiteralBool}
	anyValueLits = []LiteralType{
		LiteralFloat, LiteralInt, LiteralBool,
		LiteralFloat2, LiteralFloat3, LiteralFloat4,
		LiteralInt2, LiteralInt3, LiteralInt4,
		LiteralArray, LiteralObject,
	}
)

func ref(name string, lits ...LiteralType) ArgSpec {
	return ArgSpec{Name: name, Refable: true, LiteralTypes: lits}
}

func optRef(name string, lits ...LiteralType) ArgSpec {
	return ArgSpec{Name: name, Optional: true, Refable: true, LiteralTypes: lits}
}

func refOnly(name string) ArgSpec {
	return ArgSpec{Name: name, Refable: true, RequiredRef: true}
}

func lit(name string, lits ...LiteralType) ArgSpec {
	return ArgSpec{Name: name, LiteralTypes: lits}
}

func optLit(name string, lits ...LiteralType) ArgSpec {
	return ArgSpec{Name: name, Optional: true, LiteralTypes: lits}
}

func binaryOp(name string) OpSchema {
	return OpSchema{Name: name, Args: []ArgSpec{
		ref("a", numericLits...),
		ref("b", numericLits...),
	}}
}

func unaryOp(name string) OpSchema {
	return OpSchema{Name: name, Args: []ArgSpec{ref("value", numericLits...)}}
}

func init() {
	registerCore()
	registerMath()
	registerCompare()
	registerVector()
	registerMatrix()
	registerQuaternion()
	registerTexture()
	registerBuffer()
	registerComposite()
	registerControl()
	registerCommands()
}

func registerCore() {
	register(OpSchema{Name: "const", Args: []ArgSpec{
		lit("value", anyValueLits...),
	}})
	register(OpSchema{Name: "var_read", Args: []ArgSpec{refOnly("var")}})
	register(OpSchema{Name: "var_write", Executable: true, Args: []ArgSpec{
		refOnly("var"),
		ref("value", anyValueLits...),
	}})
	register(OpSchema{Name: "builtin_read", Args: []ArgSpec{
		lit("name", LiteralString),
	}})
	register(OpSchema{Name: "static_cast_float", Args: []ArgSpec{
		ref("value", LiteralFloat, LiteralInt, LiteralBool),
	}})
	register(OpSchema{Name: "static_cast_int", Args: []ArgSpec{
		ref("value", LiteralFloat, LiteralInt, LiteralBool),
	}})
	register(OpSchema{Name: "static_cast_bool", Args: []ArgSpec{
		ref("value", LiteralFloat, LiteralInt, LiteralBool),
	}})
}

func registerMath() {
	for _, name := range []string{
		"math_add", "math_sub", "math_mul", "math_div", "math_mod",
		"math_pow", "math_min", "math_max", "math_atan2",
	} {
		register(binaryOp(name))
	}
	for _, name := range []string{
		"math_abs", "math_floor", "math_ceil", "math_round", "math_sqrt",
		"math_sin", "math_cos", "math_tan", "math_exp", "math_log",
		"math_sign", "math_fract", "math_neg",
	} {
		register(unaryOp(name))
	}
	register(OpSchema{Name: "math_clamp", Args: []ArgSpec{
		ref("value", numericLits...),
		ref("min", numericLits...),
		ref("max", numericLits...),
	}})
	register(OpSchema{Name: "math_mix", Args: []ArgSpec{
		ref("a", numericLits...),
		ref("b", numericLits...),
		ref("t", numericLits...),
	}})
	register(OpSchema{Name: "math_smoothstep", Args: []ArgSpec{
		ref("edge0", numericLits...),
		ref("edge1", numericLits...),
		ref("value", numericLits...),
	}})
}

func registerCompare() {
	cmpLits := append([]LiteralType{LiteralBool}, numericLits...)
	for _, name := range []string{
		"compare_eq", "compare_ne", "compare_lt", "compare_le",
		"compare_gt", "compare_ge",
	} {
		register(OpSchema{Name: name, Args: []ArgSpec{
			ref("a", cmpLits...),
			ref("b", cmpLits...),
		}})
	}
	register(OpSchema{Name: "logic_and", Args: []ArgSpec{
		ref("a", boolLits...), ref("b", boolLits...),
	}})
	register(OpSchema{Name: "logic_or", Args: []ArgSpec{
		ref("a", boolLits...), ref("b", boolLits...),
	}})
	register(OpSchema{Name: "logic_not", Args: []ArgSpec{ref("value", boolLits...)}})
}

func registerVector() {
	register(OpSchema{Name: "vec_construct", Args: []ArgSpec{
		// Array-valued reference argument: each element may be a number
		// or a reference, emitting per-index edges.
		ref("values", LiteralFloat2, LiteralFloat3, LiteralFloat4,
			LiteralInt2, LiteralInt3, LiteralInt4, LiteralArray),
	}})
	register(OpSchema{Name: "vec_extract", Args: []ArgSpec{
		ref("value", numericLits...),
		ref("index", intLits...),
	}})
	register(OpSchema{Name: "vec_swizzle", Args: []ArgSpec{
		ref("value", numericLits...),
		lit("pattern", LiteralString),
	}})
	register(OpSchema{Name: "vec_dot", Args: []ArgSpec{
		ref("a", numericLits...), ref("b", numericLits...),
	}})
	register(OpSchema{Name: "vec_cross", Args: []ArgSpec{
		ref("a", LiteralFloat3, LiteralInt3), ref("b", LiteralFloat3, LiteralInt3),
	}})
	register(OpSchema{Name: "vec_length", Args: []ArgSpec{ref("value", numericLits...)}})
	register(OpSchema{Name: "vec_normalize", Args: []ArgSpec{ref("value", numericLits...)}})
	register(OpSchema{Name: "vec_distance", Args: []ArgSpec{
		ref("a", numericLits...), ref("b", numericLits...),
	}})
}

func registerMatrix() {
	register(OpSchema{Name: "mat_construct_identity", Args: []ArgSpec{
		optLit("size", LiteralInt),
	}})
	register(OpSchema{Name: "mat_mul", Args: []ArgSpec{
		ref("a", LiteralArray), ref("b", LiteralArray),
	}})
	register(OpSchema{Name: "mat_transpose", Args: []ArgSpec{ref("value", LiteralArray)}})
	register(OpSchema{Name: "mat_transform", Args: []ArgSpec{
		ref("matrix", LiteralArray),
		ref("vector", numericLits...),
	}})
}

func registerQuaternion() {
	register(OpSchema{Name: "quat_identity"})
	register(OpSchema{Name: "quat_from_axis_angle", Args: []ArgSpec{
		ref("axis", LiteralFloat3, LiteralInt3),
		ref("angle", scalarLits...),
	}})
	register(OpSchema{Name: "quat_mul", Args: []ArgSpec{
		ref("a", LiteralFloat4, LiteralInt4), ref("b", LiteralFloat4, LiteralInt4),
	}})
	register(OpSchema{Name: "quat_rotate_vec", Args: []ArgSpec{
		ref("quat", LiteralFloat4, LiteralInt4),
		ref("vector", LiteralFloat3, LiteralInt3),
	}})
	register(OpSchema{Name: "quat_normalize", Args: []ArgSpec{
		ref("value", LiteralFloat4, LiteralInt4),
	}})
	register(OpSchema{Name: "quat_slerp", Args: []ArgSpec{
		ref("a", LiteralFloat4, LiteralInt4),
		ref("b", LiteralFloat4, LiteralInt4),
		ref("t", scalarLits...),
	}})
}

func registerTexture() {
	register(OpSchema{Name: "color_mix", Args: []ArgSpec{
		ref("src", LiteralFloat4, LiteralInt4),
		ref("dst", LiteralFloat4, LiteralInt4),
	}})
	register(OpSchema{Name: "texture_sample", Args: []ArgSpec{
		refOnly("texture"),
		ref("coord", LiteralFloat2, LiteralInt2),
		optLit("filter", LiteralString),
		optLit("wrap_x", LiteralString),
		optLit("wrap_y", LiteralString),
	}})
	register(OpSchema{Name: "texture_size", Args: []ArgSpec{refOnly("texture")}})
	register(OpSchema{Name: "texture_store", Executable: true, Args: []ArgSpec{
		refOnly("texture"),
		ref("coord", LiteralInt2, LiteralFloat2),
		ref("value", LiteralFloat, LiteralInt, LiteralFloat2, LiteralInt2,
			LiteralFloat3, LiteralInt3, LiteralFloat4, LiteralInt4),
	}})
}

func registerBuffer() {
	register(OpSchema{Name: "buffer_load", Args: []ArgSpec{
		refOnly("buffer"),
		ref("index", intLits...),
	}})
	register(OpSchema{Name: "buffer_store", Executable: true, Args: []ArgSpec{
		refOnly("buffer"),
		ref("index", intLits...),
		ref("value", anyValueLits...),
	}})
	register(OpSchema{Name: "buffer_length", Args: []ArgSpec{refOnly("buffer")}})
	register(OpSchema{Name: "atomic_increment", Executable: true, Args: []ArgSpec{
		refOnly("counter"),
	}})
}

func registerComposite() {
	register(OpSchema{Name: "struct_construct", Dynamic: true, ContainerKey: "values",
		Args: []ArgSpec{refOnly("struct")}})
	register(OpSchema{Name: "struct_extract", Args: []ArgSpec{
		ref("value", LiteralObject),
		lit("field", LiteralString),
	}})
	register(OpSchema{Name: "array_construct", Dynamic: true, ContainerKey: "values"})
	register(OpSchema{Name: "array_extract", Args: []ArgSpec{
		ref("array", LiteralArray),
		ref("index", intLits...),
	}})
	register(OpSchema{Name: "array_set", Executable: true, Args: []ArgSpec{
		refOnly("array"),
		ref("index", intLits...),
		ref("value", anyValueLits...),
	}})
	register(OpSchema{Name: "array_length", Args: []ArgSpec{ref("array", LiteralArray)}})
}

func registerControl() {
	register(OpSchema{Name: "call_func", Executable: true, Dynamic: true,
		ContainerKey: "args", Args: []ArgSpec{refOnly("func")}})
	register(OpSchema{Name: "func_return", Executable: true, ExecOutPorts: []string{},
		Args: []ArgSpec{optRef("value", anyValueLits...)}})
	register(OpSchema{Name: "flow_branch", Executable: true,
		ExecOutPorts: []string{KeyExecTrue, KeyExecFalse},
		Args:         []ArgSpec{ref("condition", boolLits...)}})
	register(OpSchema{Name: "flow_loop", Executable: true,
		ExecOutPorts: []string{KeyExecBody, KeyExecCompleted},
		Args: []ArgSpec{
			optRef("count", intLits...),
			optRef("start", intLits...),
			optRef("end", intLits...),
		}})
}

func registerCommands() {
	register(OpSchema{Name: "cmd_resize_resource", Executable: true, Args: []ArgSpec{
		refOnly("resource"),
		ref("size", LiteralInt, LiteralInt2),
	}})
	register(OpSchema{Name: "cmd_clear_resource", Executable: true, Args: []ArgSpec{
		refOnly("resource"),
		optRef("value", anyValueLits...),
	}})
	register(OpSchema{Name: "cmd_dispatch", Executable: true, Dynamic: true,
		ContainerKey: "args", Args: []ArgSpec{
			refOnly("func"),
			ref("count", LiteralInt, LiteralInt2, LiteralInt3),
		}})
	register(OpSchema{Name: "cmd_draw", Executable: true, Args: []ArgSpec{
		refOnly("vertex_func"),
		refOnly("fragment_func"),
		refOnly("target"),
		ref("primitive_count", intLits...),
		optLit("blend", LiteralString),
	}})
}

// Builtin identifiers injected by the executor, and whether each is
// restricted to GPU (shader) contexts.
var gpuOnlyBuiltins = map[string]bool{
	"global_invocation_id": true,
	"local_invocation_id":  true,
	"workgroup_id":         true,
	"vertex_index":         true,
	"fragment_coord":       true,
}

var cpuBuiltins = map[string]bool{
	"time":          true,
	"frame":         true,
	"viewport_size": true,
}

// IsGPUOnlyBuiltin reports whether name is a per-invocation builtin that
// is unavailable in CPU-typed functions.
func IsGPUOnlyBuiltin(name string) bool {
	return gpuOnlyBuiltins[name]
}

// IsKnownBuiltin reports whether name is any recognized builtin.
func IsKnownBuiltin(name string) bool {
	return gpuOnlyBuiltins[name] || cpuBuiltins[name]
}
