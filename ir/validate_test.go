package ir

import (
	"strings"
	"testing"
)

func validDocument() *Document {
	return &Document{
		EntryPoint: "main",
		Inputs: []InputDef{
			{ID: "speed", Type: TypeFloat, Default: 1.0},
		},
		Resources: []ResourceDef{
			{ID: "buf", Type: ResourceBuffer, DataType: TypeFloat,
				Size: SizeSpec{Mode: SizeFixed, Width: 8}},
			{ID: "tex", Type: ResourceTexture2D, Format: "rgba8unorm",
				Size: SizeSpec{Mode: SizeFixed, Width: 4, Height: 4}},
		},
		Functions: []FunctionDef{
			{
				ID:   "main",
				Type: FunctionCPU,
				Nodes: []Node{
					{ID: "c", Op: "const", Props: map[string]any{"value": 2.0}},
					{ID: "store", Op: "buffer_store", Props: map[string]any{
						"buffer": "buf", "index": 0.0, "value": "c",
					}},
				},
			},
		},
	}
}

func TestValidate_ValidDocument(t *testing.T) {
	errs, err := ValidateDocument(validDocument())
	if err != nil {
		t.Fatalf("ValidateDocument returned error: %v", err)
	}
	if len(errs) > 0 {
		t.Errorf("valid document has validation errors:")
		for _, e := range errs {
			t.Errorf("  - %s", e.Error())
		}
	}
}

func TestValidate_NilDocument(t *testing.T) {
	if _, err := ValidateDocument(nil); err == nil {
		t.Error("expected error for nil document, got nil")
	}
}

func TestValidate_EntryPoint(t *testing.T) {
	doc := validDocument()
	doc.EntryPoint = "missing"
	expectError(t, doc, "does not name a function")

	doc = validDocument()
	doc.Functions[0].Type = FunctionShader
	expectError(t, doc, "must be a cpu function")

	doc = validDocument()
	doc.EntryPoint = ""
	expectError(t, doc, "entry point is required")
}

// All problems surface in one pass, not just the first.
func TestValidate_AccumulatesErrors(t *testing.T) {
	doc := validDocument()
	doc.EntryPoint = "missing"
	doc.Resources[1].Format = "bogus"
	doc.Functions[0].Nodes[0].Op = "no_such_op"

	errs, err := ValidateDocument(doc)
	if err != nil {
		t.Fatalf("ValidateDocument returned error: %v", err)
	}
	if len(errs) < 3 {
		t.Errorf("got %d errors, want at least 3: %v", len(errs), errs)
	}
}

func TestValidate_ErrorPaths(t *testing.T) {
	doc := validDocument()
	doc.Functions[0].Nodes[1].Props["buffer"] = "nowhere"

	errs, _ := ValidateDocument(doc)
	if len(errs) == 0 {
		t.Fatal("expected errors, got none")
	}
	found := false
	for _, e := range errs {
		if strings.HasPrefix(e.Error(), "functions[0].nodes[1].buffer:") {
			found = true
		}
	}
	if !found {
		t.Errorf("no error with path functions[0].nodes[1].buffer, got %v", errs)
	}
}

func TestValidate_DuplicateIDs(t *testing.T) {
	doc := validDocument()
	doc.Inputs = append(doc.Inputs, InputDef{ID: "speed", Type: TypeFloat})
	expectError(t, doc, `duplicate input id "speed"`)

	doc = validDocument()
	doc.Resources = append(doc.Resources, doc.Resources[0])
	expectError(t, doc, `duplicate resource id "buf"`)

	doc = validDocument()
	doc.Functions[0].Nodes = append(doc.Functions[0].Nodes,
		Node{ID: "c", Op: "const", Props: map[string]any{"value": 1.0}})
	expectError(t, doc, `duplicate node id "c"`)
}

func TestValidate_ResourceDeclarations(t *testing.T) {
	doc := validDocument()
	doc.Resources[0].DataType = ""
	expectError(t, doc, "needs a dataType or structType")

	doc = validDocument()
	doc.Resources[0].StructType = "particle"
	expectError(t, doc, "declares both dataType and structType")

	doc = validDocument()
	doc.Resources[0].Size = SizeSpec{Mode: SizeFixed, Width: 0}
	expectError(t, doc, "fixed size must be positive")

	doc = validDocument()
	doc.Resources[0].Size = SizeSpec{Mode: SizeMatchResource, MatchResource: "buf"}
	expectError(t, doc, "cannot size-match itself")

	doc = validDocument()
	doc.Resources[1].Format = "rgb565"
	expectError(t, doc, "unknown texture format")
}

func TestValidate_UnknownOp(t *testing.T) {
	doc := validDocument()
	doc.Functions[0].Nodes[0].Op = "frobnicate"
	expectError(t, doc, `unknown op "frobnicate"`)
}

func TestValidate_MissingRequiredArgument(t *testing.T) {
	doc := validDocument()
	delete(doc.Functions[0].Nodes[1].Props, "index")
	expectError(t, doc, `missing required argument "index"`)
}

func TestValidate_UnknownArgumentRejected(t *testing.T) {
	doc := validDocument()
	doc.Functions[0].Nodes[0].Props["extra"] = 1.0
	expectError(t, doc, `unexpected argument "extra"`)
}

func TestValidate_UnresolvedReference(t *testing.T) {
	doc := validDocument()
	doc.Functions[0].Nodes[1].Props["value"] = "phantom"
	expectError(t, doc, `reference "phantom" does not resolve`)
}

func TestValidate_LiteralTypeMismatch(t *testing.T) {
	doc := validDocument()
	// logic_not takes a bool, not a number.
	doc.Functions[0].Nodes[0] = Node{ID: "c", Op: "logic_not",
		Props: map[string]any{"value": 3.5}}
	expectError(t, doc, "has literal type")
}

func TestValidate_PureNodeExecKeys(t *testing.T) {
	doc := validDocument()
	doc.Functions[0].Nodes[0].Props[KeyNext] = "store"
	expectError(t, doc, `is pure and cannot declare "next"`)
}

func TestValidate_UnsupportedExecPort(t *testing.T) {
	doc := validDocument()
	doc.Functions[0].Nodes[1].Props[KeyExecTrue] = "c"
	expectError(t, doc, `does not support exec port "exec_true"`)
}

func TestValidate_ExecTargetUnknown(t *testing.T) {
	doc := validDocument()
	doc.Functions[0].Nodes[1].Props[KeyNext] = "ghost"
	expectError(t, doc, `next references unknown node "ghost"`)
}

func TestValidate_GPUBuiltinInCPUContext(t *testing.T) {
	doc := validDocument()
	doc.Functions[0].Nodes[0] = Node{ID: "c", Op: "builtin_read",
		Props: map[string]any{"name": "global_invocation_id"}}
	expectError(t, doc, "not available in CPU context")
}

func TestValidate_GPUBuiltinInShaderContext(t *testing.T) {
	doc := validDocument()
	doc.Functions = append(doc.Functions, FunctionDef{
		ID:   "kernel",
		Type: FunctionShader,
		Nodes: []Node{
			{ID: "gid", Op: "builtin_read",
				Props: map[string]any{"name": "global_invocation_id"}},
		},
	})
	errs, _ := ValidateDocument(doc)
	for _, e := range errs {
		if strings.Contains(e.Message, "not available") {
			t.Errorf("shader context rejected a GPU builtin: %s", e.Error())
		}
	}
}

func TestValidate_UnknownBuiltin(t *testing.T) {
	doc := validDocument()
	doc.Functions[0].Nodes[0] = Node{ID: "c", Op: "builtin_read",
		Props: map[string]any{"name": "thread_id"}}
	expectError(t, doc, `unknown builtin "thread_id"`)
}

func TestValidate_StructConstructFields(t *testing.T) {
	doc := validDocument()
	doc.Structs = []StructDef{{ID: "particle", Fields: []StructField{
		{Name: "pos", Type: TypeFloat2},
		{Name: "mass", Type: TypeFloat},
	}}}
	doc.Functions[0].Nodes[0] = Node{ID: "c", Op: "struct_construct",
		Props: map[string]any{
			"struct": "particle",
			"values": map[string]any{
				"pos":   []any{0.0, 0.0},
				"color": []any{1.0, 1.0, 1.0},
			},
		}}
	expectError(t, doc, `struct "particle" has no field "color"`)
	expectError(t, doc, `struct "particle" field "mass" is not set`)
}

func TestValidate_DispatchTargetMustBeShader(t *testing.T) {
	doc := validDocument()
	doc.Functions[0].Nodes[1] = Node{ID: "store", Op: "cmd_dispatch",
		Props: map[string]any{"func": "main", "count": 4.0}}
	expectError(t, doc, "must be a shader function")
}

func TestValidate_CallArgsCrossChecked(t *testing.T) {
	doc := validDocument()
	doc.Functions = append(doc.Functions, FunctionDef{
		ID: "helper", Type: FunctionCPU,
		Inputs: []PortDef{{ID: "amount", Type: TypeFloat}},
	})
	doc.Functions[0].Nodes[1] = Node{ID: "store", Op: "call_func",
		Props: map[string]any{
			"func": "helper",
			"args": map[string]any{"strength": 1.0},
		}}
	expectError(t, doc, `function "helper" has no input "strength"`)
}

func TestValidate_ResourceKindChecks(t *testing.T) {
	doc := validDocument()
	doc.Functions[0].Nodes[1].Props["buffer"] = "tex"
	expectError(t, doc, `resource "tex" is not a buffer`)

	doc = validDocument()
	doc.Functions[0].Nodes[1] = Node{ID: "store", Op: "texture_store",
		Props: map[string]any{
			"texture": "buf", "coord": []any{0.0, 0.0}, "value": 1.0,
		}}
	expectError(t, doc, `resource "buf" is not a texture2d`)
}

func TestValidate_VarMustBeVariable(t *testing.T) {
	doc := validDocument()
	doc.Functions[0].Nodes[1] = Node{ID: "store", Op: "var_write",
		Props: map[string]any{"var": "buf", "value": 1.0}}
	expectError(t, doc, `"buf" is not a variable`)
}

func TestValidate_LoopNeedsBounds(t *testing.T) {
	doc := validDocument()
	doc.Functions[0].Nodes[1] = Node{ID: "store", Op: "flow_loop",
		Props: map[string]any{"start": 0.0}}
	expectError(t, doc, "needs a count or a start/end pair")
}

func expectError(t *testing.T, doc *Document, substr string) {
	t.Helper()
	errs, err := ValidateDocument(doc)
	if err != nil {
		t.Fatalf("ValidateDocument returned error: %v", err)
	}
	for _, e := range errs {
		if strings.Contains(e.Message, substr) {
			return
		}
	}
	t.Errorf("no validation error containing %q, got %v", substr, errs)
}
