package ir

import (
	"reflect"
	"testing"
)

func TestReconstructEdges_DataEdges(t *testing.T) {
	fn := &FunctionDef{
		ID:   "f",
		Type: FunctionCPU,
		Nodes: []Node{
			{ID: "a", Op: "const", Props: map[string]any{"value": 1.0}},
			{ID: "b", Op: "const", Props: map[string]any{"value": 2.0}},
			{ID: "sum", Op: "math_add", Props: map[string]any{"a": "a", "b": "b"}},
		},
	}
	edges := ReconstructEdges(nil, fn)
	want := []Edge{
		{From: "a", PortOut: PortValue, To: "sum", PortIn: "a", Type: EdgeData},
		{From: "b", PortOut: PortValue, To: "sum", PortIn: "b", Type: EdgeData},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges = %v, want %v", edges, want)
	}
}

func TestReconstructEdges_LiteralsEmitNothing(t *testing.T) {
	fn := &FunctionDef{
		ID:   "f",
		Type: FunctionCPU,
		Nodes: []Node{
			{ID: "sum", Op: "math_add", Props: map[string]any{"a": 1.0, "b": 2.0}},
		},
	}
	if edges := ReconstructEdges(nil, fn); len(edges) != 0 {
		t.Errorf("literal-only node produced edges: %v", edges)
	}
}

// Reconstruction must be idempotent: running it twice over the same
// function yields the identical edge list.
func TestReconstructEdges_Idempotent(t *testing.T) {
	fn := &FunctionDef{
		ID:   "f",
		Type: FunctionCPU,
		LocalVars: []LocalVarDef{
			{ID: "x", Type: TypeFloat},
		},
		Nodes: []Node{
			{ID: "a", Op: "const", Props: map[string]any{"value": 1.0}},
			{ID: "w1", Op: "var_write", Props: map[string]any{
				"var": "x", "value": "a", KeyNext: "w2",
			}},
			{ID: "w2", Op: "var_write", Props: map[string]any{
				"var": "x", "value": "a",
			}},
		},
	}
	first := ReconstructEdges(nil, fn)
	second := ReconstructEdges(nil, fn)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reconstruction is not idempotent:\nfirst:  %v\nsecond: %v", first, second)
	}
}

// An exec_in annotation that names a pure node must not produce an
// execution edge. Pure nodes have no side effects to order.
func TestReconstructEdges_PureExecInExcluded(t *testing.T) {
	fn := &FunctionDef{
		ID:   "f",
		Type: FunctionCPU,
		LocalVars: []LocalVarDef{
			{ID: "x", Type: TypeFloat},
		},
		Nodes: []Node{
			{ID: "c", Op: "const", Props: map[string]any{"value": 5.0}},
			{ID: "w", Op: "var_write", Props: map[string]any{
				"var": "x", "value": "c", KeyExecIn: "c",
			}},
		},
	}
	for _, e := range ReconstructEdges(nil, fn) {
		if e.Type == EdgeExecution {
			t.Errorf("pure exec_in target produced execution edge %v", e)
		}
	}
}

// A pure node named as an exec target on the producing side is likewise
// excluded.
func TestReconstructEdges_PureExecTargetExcluded(t *testing.T) {
	fn := &FunctionDef{
		ID:   "f",
		Type: FunctionCPU,
		LocalVars: []LocalVarDef{
			{ID: "x", Type: TypeFloat},
		},
		Nodes: []Node{
			{ID: "c", Op: "const", Props: map[string]any{"value": 5.0}},
			{ID: "w", Op: "var_write", Props: map[string]any{
				"var": "x", "value": "c", KeyNext: "c",
			}},
		},
	}
	for _, e := range ReconstructEdges(nil, fn) {
		if e.Type == EdgeExecution {
			t.Errorf("pure exec target produced execution edge %v", e)
		}
	}
}

func TestReconstructEdges_ExecInFallback(t *testing.T) {
	fn := &FunctionDef{
		ID:   "f",
		Type: FunctionCPU,
		LocalVars: []LocalVarDef{
			{ID: "x", Type: TypeFloat},
		},
		Nodes: []Node{
			{ID: "w1", Op: "var_write", Props: map[string]any{"var": "x", "value": 1.0}},
			{ID: "w2", Op: "var_write", Props: map[string]any{
				"var": "x", "value": 2.0, KeyExecIn: "w1",
			}},
		},
	}
	edges := ReconstructEdges(nil, fn)
	want := Edge{From: "w1", PortOut: PortExecOut, To: "w2", PortIn: PortExecIn, Type: EdgeExecution}
	found := false
	for _, e := range edges {
		if e == want {
			found = true
		}
	}
	if !found {
		t.Errorf("exec_in fallback edge missing, got %v", edges)
	}
}

// An explicit execution edge targeting a node suppresses that node's
// exec_in fallback entirely.
func TestReconstructEdges_ExplicitBeatsFallback(t *testing.T) {
	fn := &FunctionDef{
		ID:   "f",
		Type: FunctionCPU,
		LocalVars: []LocalVarDef{
			{ID: "x", Type: TypeFloat},
		},
		Nodes: []Node{
			{ID: "w1", Op: "var_write", Props: map[string]any{
				"var": "x", "value": 1.0, KeyNext: "w3",
			}},
			{ID: "w2", Op: "var_write", Props: map[string]any{"var": "x", "value": 2.0}},
			{ID: "w3", Op: "var_write", Props: map[string]any{
				"var": "x", "value": 3.0, KeyExecIn: "w2",
			}},
		},
	}
	edges := ReconstructEdges(nil, fn)
	var execTo3 []Edge
	for _, e := range edges {
		if e.Type == EdgeExecution && e.To == "w3" {
			execTo3 = append(execTo3, e)
		}
	}
	if len(execTo3) != 1 {
		t.Fatalf("got %d execution edges into w3, want 1: %v", len(execTo3), execTo3)
	}
	if execTo3[0].From != "w1" {
		t.Errorf("execution edge into w3 comes from %q, want w1", execTo3[0].From)
	}
}

// Array-valued reference arguments emit one edge per resolved element,
// with the index recorded in the port name.
func TestReconstructEdges_ArrayElementPorts(t *testing.T) {
	fn := &FunctionDef{
		ID:   "f",
		Type: FunctionCPU,
		Nodes: []Node{
			{ID: "a", Op: "const", Props: map[string]any{"value": 1.0}},
			{ID: "b", Op: "const", Props: map[string]any{"value": 2.0}},
			{ID: "v", Op: "vec_construct", Props: map[string]any{
				"values": []any{"a", 0.5, "b"},
			}},
		},
	}
	edges := ReconstructEdges(nil, fn)
	want := []Edge{
		{From: "a", PortOut: PortValue, To: "v", PortIn: "values[0]", Type: EdgeData},
		{From: "b", PortOut: PortValue, To: "v", PortIn: "values[2]", Type: EdgeData},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges = %v, want %v", edges, want)
	}
}

// Dynamic containers are walked recursively; nested references get
// dotted/indexed port paths.
func TestReconstructEdges_DynamicContainer(t *testing.T) {
	doc := &Document{
		Functions: []FunctionDef{
			{ID: "helper", Type: FunctionCPU, Inputs: []PortDef{{ID: "amount", Type: TypeFloat}}},
		},
	}
	fn := &FunctionDef{
		ID:   "f",
		Type: FunctionCPU,
		Nodes: []Node{
			{ID: "c", Op: "const", Props: map[string]any{"value": 4.0}},
			{ID: "call", Op: "call_func", Props: map[string]any{
				"func": "helper",
				"args": map[string]any{"amount": "c"},
			}},
		},
	}
	edges := ReconstructEdges(doc, fn)
	want := []Edge{
		{From: "helper", PortOut: PortValue, To: "call", PortIn: "func", Type: EdgeData},
		{From: "c", PortOut: PortValue, To: "call", PortIn: "args.amount", Type: EdgeData},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges = %v, want %v", edges, want)
	}
}

func TestReconstructEdges_CrossScopeReferences(t *testing.T) {
	doc := &Document{
		Inputs: []InputDef{{ID: "speed", Type: TypeFloat}},
		Resources: []ResourceDef{
			{ID: "buf", Type: ResourceBuffer, DataType: TypeFloat},
		},
	}
	fn := &FunctionDef{
		ID:   "f",
		Type: FunctionCPU,
		Nodes: []Node{
			{ID: "load", Op: "buffer_load", Props: map[string]any{
				"buffer": "buf", "index": 0.0,
			}},
			{ID: "sum", Op: "math_add", Props: map[string]any{
				"a": "load", "b": "speed",
			}},
		},
	}
	edges := ReconstructEdges(doc, fn)
	want := []Edge{
		{From: "buf", PortOut: PortValue, To: "load", PortIn: "buffer", Type: EdgeData},
		{From: "load", PortOut: PortValue, To: "sum", PortIn: "a", Type: EdgeData},
		{From: "speed", PortOut: PortValue, To: "sum", PortIn: "b", Type: EdgeData},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges = %v, want %v", edges, want)
	}
}
