package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError carries a machine-checkable path into the document and a
// human message.
type ValidationError struct {
	Path    []any
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	var sb strings.Builder
	for i, seg := range e.Path {
		switch s := seg.(type) {
		case string:
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(s)
		case int:
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(s))
			sb.WriteByte(']')
		default:
			sb.WriteString(fmt.Sprint(seg))
		}
	}
	return sb.String() + ": " + e.Message
}

// Validator validates IR documents. Errors are accumulated and returned
// together so a single pass surfaces the complete problem set.
type Validator struct {
	doc    *Document
	errors []ValidationError
}

// ValidateDocument checks the document for structural and semantic
// correctness. It returns all validation errors, or nil if the document is
// valid.
func ValidateDocument(doc *Document) ([]ValidationError, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	v := &Validator{doc: doc, errors: make([]ValidationError, 0)}
	v.validateEntryPoint()
	v.validateInputs()
	v.validateResources()
	v.validateStructs()
	v.validateFunctions()
	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

func (v *Validator) addError(path []any, format string, args ...any) {
	// Copy the path: callers build paths with append off shared prefixes.
	v.errors = append(v.errors, ValidationError{
		Path:    append([]any(nil), path...),
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *Validator) validateEntryPoint() {
	if v.doc.EntryPoint == "" {
		v.addError([]any{"entryPoint"}, "entry point is required")
		return
	}
	fn := v.doc.Function(v.doc.EntryPoint)
	if fn == nil {
		v.addError([]any{"entryPoint"}, "entry point %q does not name a function", v.doc.EntryPoint)
		return
	}
	if fn.Type != FunctionCPU {
		v.addError([]any{"entryPoint"}, "entry point %q must be a cpu function, got %q", v.doc.EntryPoint, fn.Type)
	}
}

func (v *Validator) validateInputs() {
	seen := make(map[string]bool)
	for i, in := range v.doc.Inputs {
		if in.ID == "" {
			v.addError([]any{"inputs", i, "id"}, "input has empty id")
		}
		if seen[in.ID] {
			v.addError([]any{"inputs", i, "id"}, "duplicate input id %q", in.ID)
		}
		seen[in.ID] = true
	}
}

func (v *Validator) validateResources() {
	seen := make(map[string]bool)
	for i, res := range v.doc.Resources {
		path := []any{"resources", i}
		if res.ID == "" {
			v.addError(append(path, "id"), "resource has empty id")
		}
		if seen[res.ID] {
			v.addError(append(path, "id"), "duplicate resource id %q", res.ID)
		}
		seen[res.ID] = true

		switch res.Type {
		case ResourceTexture2D:
			if _, err := ParseTextureFormat(res.Format); err != nil {
				v.addError(append(path, "format"), "%v", err)
			}
		case ResourceBuffer:
			if res.DataType == "" && res.StructType == "" {
				v.addError(path, "buffer %q needs a dataType or structType", res.ID)
			}
			if res.DataType != "" && res.StructType != "" {
				v.addError(path, "buffer %q declares both dataType and structType", res.ID)
			}
			if res.StructType != "" && v.doc.Struct(res.StructType) == nil {
				v.addError(append(path, "structType"), "unknown struct %q", res.StructType)
			}
		case ResourceAtomicCounter:
			// No layout to check.
		default:
			v.addError(append(path, "type"), "unknown resource type %q", res.Type)
		}

		switch res.Size.Mode {
		case SizeFixed:
			if res.Size.Width <= 0 {
				v.addError(append(path, "size", "width"), "fixed size must be positive, got %d", res.Size.Width)
			}
		case SizeMatchResource:
			target := res.Size.MatchResource
			if target == "" || v.doc.Resource(target) == nil {
				v.addError(append(path, "size", "matchResource"), "unknown resource %q", target)
			} else if target == res.ID {
				v.addError(append(path, "size", "matchResource"), "resource %q cannot size-match itself", res.ID)
			}
		case SizeViewport, SizeCPUDriven:
			// Extent supplied at runtime.
		default:
			v.addError(append(path, "size", "mode"), "unknown size mode %q", res.Size.Mode)
		}
	}
}

func (v *Validator) validateStructs() {
	seen := make(map[string]bool)
	for i, s := range v.doc.Structs {
		path := []any{"structs", i}
		if seen[s.ID] {
			v.addError(append(path, "id"), "duplicate struct id %q", s.ID)
		}
		seen[s.ID] = true
		fields := make(map[string]bool)
		for j, f := range s.Fields {
			if f.Name == "" {
				v.addError(append(path, "fields", j), "struct field has empty name")
			}
			if fields[f.Name] {
				v.addError(append(path, "fields", j), "duplicate field name %q", f.Name)
			}
			fields[f.Name] = true
		}
	}
}

func (v *Validator) validateFunctions() {
	seen := make(map[string]bool)
	for i := range v.doc.Functions {
		fn := &v.doc.Functions[i]
		path := []any{"functions", i}
		if fn.ID == "" {
			v.addError(append(path, "id"), "function has empty id")
		}
		if seen[fn.ID] {
			v.addError(append(path, "id"), "duplicate function id %q", fn.ID)
		}
		seen[fn.ID] = true
		if fn.Type != FunctionCPU && fn.Type != FunctionShader {
			v.addError(append(path, "type"), "unknown function type %q", fn.Type)
		}
		v.validateFunction(path, fn)
	}
}

func (v *Validator) validateFunction(path []any, fn *FunctionDef) {
	nodeIDs := make(map[string]bool, len(fn.Nodes))
	for j := range fn.Nodes {
		n := &fn.Nodes[j]
		if nodeIDs[n.ID] {
			v.addError(append(path, "nodes", j, "id"), "duplicate node id %q", n.ID)
		}
		nodeIDs[n.ID] = true
	}
	for j := range fn.Nodes {
		v.validateNode(append(path, "nodes", j), fn, nodeIDs, &fn.Nodes[j])
	}
}

// resolveScope reports whether id resolves, searching node-local, then
// function-local, then document-global scope.
func (v *Validator) resolveScope(fn *FunctionDef, nodeIDs map[string]bool, id string) bool {
	if nodeIDs[id] {
		return true
	}
	if fn.LocalVar(id) != nil || fn.Input(id) != nil {
		return true
	}
	return v.doc.Input(id) != nil || v.doc.Resource(id) != nil ||
		v.doc.Function(id) != nil || v.doc.Struct(id) != nil
}

func (v *Validator) validateNode(path []any, fn *FunctionDef, nodeIDs map[string]bool, n *Node) {
	schema := LookupOp(n.Op)
	if schema == nil {
		v.addError(append(path, "op"), "unknown op %q", n.Op)
		return
	}

	v.validateExecKeys(path, nodeIDs, n, schema)

	for i := range schema.Args {
		arg := &schema.Args[i]
		val, present := n.Props[arg.Name]
		if !present {
			if !arg.Optional {
				v.addError(append(path, arg.Name), "missing required argument %q for op %q", arg.Name, n.Op)
			}
			continue
		}
		v.validateArgValue(append(path, arg.Name), fn, nodeIDs, n, arg, val)
	}

	// Unknown keys are rejected; dynamic ops are exempt since their
	// container carries an open key set.
	if !schema.Dynamic {
		for key := range n.Props {
			if IsReservedKey(key) || schema.Arg(key) != nil {
				continue
			}
			v.addError(append(path, key), "unexpected argument %q for op %q", key, n.Op)
		}
	}

	v.validateSpecialOps(path, fn, nodeIDs, n, schema)
}

func (v *Validator) validateExecKeys(path []any, nodeIDs map[string]bool, n *Node, schema *OpSchema) {
	if _, ok := n.Props[KeyExecIn]; ok {
		if s, isStr := n.StringProp(KeyExecIn); !isStr {
			v.addError(append(path, KeyExecIn), "exec_in must be a string node id")
		} else if !nodeIDs[s] {
			v.addError(append(path, KeyExecIn), "exec_in references unknown node %q", s)
		}
	}
	allowed := make(map[string]bool, len(schema.ExecOutPorts))
	for _, p := range schema.ExecOutPorts {
		allowed[p] = true
	}
	for _, key := range execOutKeys {
		raw, ok := n.Props[key]
		if !ok {
			continue
		}
		if !schema.Executable {
			v.addError(append(path, key), "op %q is pure and cannot declare %q", n.Op, key)
			continue
		}
		if !allowed[key] {
			v.addError(append(path, key), "op %q does not support exec port %q", n.Op, key)
			continue
		}
		s, isStr := raw.(string)
		if !isStr {
			v.addError(append(path, key), "%s must be a string node id", key)
			continue
		}
		if !nodeIDs[s] {
			v.addError(append(path, key), "%s references unknown node %q", key, s)
		}
	}
}

func (v *Validator) validateArgValue(path []any, fn *FunctionDef, nodeIDs map[string]bool, n *Node, arg *ArgSpec, val any) {
	if s, isStr := val.(string); isStr {
		if arg.RequiredRef || arg.Refable {
			if v.resolveScope(fn, nodeIDs, s) {
				return
			}
			if !arg.RequiredRef && literalAllowed(arg, LiteralString) {
				return
			}
			v.addError(path, "reference %q does not resolve", s)
			return
		}
		if literalAllowed(arg, LiteralString) {
			return
		}
		v.addError(path, "op %q argument %q does not accept a string", n.Op, arg.Name)
		return
	}

	if arg.RequiredRef {
		v.addError(path, "op %q argument %q must be a reference", n.Op, arg.Name)
		return
	}
	shape := LiteralShapeOf(val)
	for _, want := range arg.LiteralTypes {
		if shape.Satisfies(want) {
			return
		}
	}
	v.addError(path, "op %q argument %q has literal type %q, want one of %v",
		n.Op, arg.Name, shape, arg.LiteralTypes)
}

func literalAllowed(arg *ArgSpec, t LiteralType) bool {
	for _, want := range arg.LiteralTypes {
		if want == t {
			return true
		}
	}
	return false
}

// validateSpecialOps handles the per-op auxiliary context of dynamic ops
// and the CPU/GPU builtin availability table.
func (v *Validator) validateSpecialOps(path []any, fn *FunctionDef, nodeIDs map[string]bool, n *Node, schema *OpSchema) {
	switch n.Op {
	case "builtin_read":
		name, ok := n.StringProp("name")
		if !ok {
			return
		}
		if !IsKnownBuiltin(name) {
			v.addError(append(path, "name"), "unknown builtin %q", name)
			return
		}
		if fn.Type == FunctionCPU && IsGPUOnlyBuiltin(name) {
			v.addError(append(path, "name"), "builtin %q is not available in CPU context", name)
		}

	case "struct_construct":
		structID, ok := n.StringProp("struct")
		if !ok {
			return
		}
		def := v.doc.Struct(structID)
		if def == nil {
			v.addError(append(path, "struct"), "unknown struct %q", structID)
			return
		}
		values, _ := n.Props[schema.ContainerKey].(map[string]any)
		for key := range values {
			if def.Field(key) == nil {
				v.addError(append(path, schema.ContainerKey, key), "struct %q has no field %q", structID, key)
			}
		}
		for _, f := range def.Fields {
			if _, present := values[f.Name]; !present {
				v.addError(append(path, schema.ContainerKey), "struct %q field %q is not set", structID, f.Name)
			}
		}

	case "call_func", "cmd_dispatch":
		funcID, ok := n.StringProp("func")
		if !ok {
			return
		}
		target := v.doc.Function(funcID)
		if target == nil {
			v.addError(append(path, "func"), "unknown function %q", funcID)
			return
		}
		if n.Op == "cmd_dispatch" && target.Type != FunctionShader {
			v.addError(append(path, "func"), "cmd_dispatch target %q must be a shader function", funcID)
		}
		args, _ := n.Props[schema.ContainerKey].(map[string]any)
		for key := range args {
			if target.Input(key) == nil {
				v.addError(append(path, schema.ContainerKey, key), "function %q has no input %q", funcID, key)
			}
		}

	case "cmd_draw":
		for _, argName := range []string{"vertex_func", "fragment_func"} {
			funcID, ok := n.StringProp(argName)
			if !ok {
				continue
			}
			target := v.doc.Function(funcID)
			if target == nil {
				v.addError(append(path, argName), "unknown function %q", funcID)
			} else if target.Type != FunctionShader {
				v.addError(append(path, argName), "cmd_draw stage %q must be a shader function", funcID)
			}
		}
		if targetID, ok := n.StringProp("target"); ok {
			res := v.doc.Resource(targetID)
			if res == nil {
				v.addError(append(path, "target"), "unknown resource %q", targetID)
			} else if res.Type != ResourceTexture2D {
				v.addError(append(path, "target"), "cmd_draw target %q must be a texture2d", targetID)
			}
		}

	case "cmd_resize_resource", "cmd_clear_resource":
		if resID, ok := n.StringProp("resource"); ok && v.doc.Resource(resID) == nil {
			v.addError(append(path, "resource"), "unknown resource %q", resID)
		}

	case "texture_sample", "texture_size", "texture_store":
		if texID, ok := n.StringProp("texture"); ok {
			res := v.doc.Resource(texID)
			if res != nil && res.Type != ResourceTexture2D {
				v.addError(append(path, "texture"), "resource %q is not a texture2d", texID)
			}
			// A non-resource reference may be a texture-typed function
			// input; the reference itself was checked above.
		}

	case "buffer_load", "buffer_store", "buffer_length":
		if bufID, ok := n.StringProp("buffer"); ok {
			res := v.doc.Resource(bufID)
			if res != nil && res.Type != ResourceBuffer {
				v.addError(append(path, "buffer"), "resource %q is not a buffer", bufID)
			}
		}

	case "atomic_increment":
		if id, ok := n.StringProp("counter"); ok {
			res := v.doc.Resource(id)
			if res != nil && res.Type != ResourceAtomicCounter {
				v.addError(append(path, "counter"), "resource %q is not an atomic_counter", id)
			}
		}

	case "var_read", "var_write":
		if id, ok := n.StringProp("var"); ok {
			if fn.LocalVar(id) == nil && fn.Input(id) == nil && v.doc.Input(id) == nil {
				// Referencing a node or resource as a variable is a
				// scoping mistake even though the id resolves.
				if v.resolveScope(fn, nodeIDs, id) {
					v.addError(append(path, "var"), "%q is not a variable", id)
				}
			}
		}

	case "flow_loop":
		_, hasCount := n.Props["count"]
		_, hasStart := n.Props["start"]
		_, hasEnd := n.Props["end"]
		if !hasCount && !(hasStart && hasEnd) {
			v.addError(path, "flow_loop needs a count or a start/end pair")
		}
	}
}
