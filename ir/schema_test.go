package ir

import (
	"testing"
)

func TestLookupOp(t *testing.T) {
	if LookupOp("math_add") == nil {
		t.Error("LookupOp(math_add) = nil, want schema")
	}
	if LookupOp("no_such_op") != nil {
		t.Error("LookupOp(no_such_op) != nil, want nil")
	}
}

func TestOpSchema_ExecutableDefaults(t *testing.T) {
	s := LookupOp("buffer_store")
	if s == nil {
		t.Fatal("buffer_store schema missing")
	}
	if !s.Executable {
		t.Error("buffer_store is not marked executable")
	}
	// Plain executables support the generic chain ports.
	want := map[string]bool{KeyNext: true, KeyExecOut: true}
	if len(s.ExecOutPorts) != 2 || !want[s.ExecOutPorts[0]] || !want[s.ExecOutPorts[1]] {
		t.Errorf("buffer_store ExecOutPorts = %v, want next/exec_out", s.ExecOutPorts)
	}
}

func TestOpSchema_ControlFlowPorts(t *testing.T) {
	branch := LookupOp("flow_branch")
	if got := branch.ExecOutPorts; len(got) != 2 || got[0] != KeyExecTrue || got[1] != KeyExecFalse {
		t.Errorf("flow_branch ExecOutPorts = %v, want [exec_true exec_false]", got)
	}
	loop := LookupOp("flow_loop")
	if got := loop.ExecOutPorts; len(got) != 2 || got[0] != KeyExecBody || got[1] != KeyExecCompleted {
		t.Errorf("flow_loop ExecOutPorts = %v, want [exec_body exec_completed]", got)
	}
	ret := LookupOp("func_return")
	if len(ret.ExecOutPorts) != 0 {
		t.Errorf("func_return ExecOutPorts = %v, want none", ret.ExecOutPorts)
	}
}

func TestOpSchema_DynamicContainers(t *testing.T) {
	cases := []struct {
		op  string
		key string
	}{
		{"struct_construct", "values"},
		{"array_construct", "values"},
		{"call_func", "args"},
		{"cmd_dispatch", "args"},
	}
	for _, tc := range cases {
		s := LookupOp(tc.op)
		if s == nil {
			t.Errorf("%s schema missing", tc.op)
			continue
		}
		if !s.Dynamic || s.ContainerKey != tc.key {
			t.Errorf("%s: Dynamic=%v ContainerKey=%q, want true/%q", tc.op, s.Dynamic, s.ContainerKey, tc.key)
		}
	}
}

// Reserved keys are control annotations; no schema may claim one as an
// argument name.
func TestSchemas_NeverDeclareReservedKeys(t *testing.T) {
	for _, name := range Ops() {
		s := LookupOp(name)
		for _, arg := range s.Args {
			if IsReservedKey(arg.Name) {
				t.Errorf("op %q declares reserved key %q as an argument", name, arg.Name)
			}
		}
	}
}

func TestBuiltinTables(t *testing.T) {
	if !IsKnownBuiltin("time") || !IsKnownBuiltin("global_invocation_id") {
		t.Error("known builtins missing from table")
	}
	if IsKnownBuiltin("bogus") {
		t.Error("IsKnownBuiltin(bogus) = true")
	}
	if IsGPUOnlyBuiltin("time") {
		t.Error("time is not a GPU-only builtin")
	}
	if !IsGPUOnlyBuiltin("vertex_index") {
		t.Error("vertex_index is a GPU-only builtin")
	}
}

func TestLiteralShapeOf(t *testing.T) {
	cases := []struct {
		value any
		want  LiteralType
	}{
		{1.5, LiteralFloat},
		{3.0, LiteralInt},
		{true, LiteralBool},
		{"hi", LiteralString},
		{[]any{1.0, 2.0}, LiteralInt2},
		{[]any{0.5, 1.0, 1.5}, LiteralFloat3},
		{[]any{1.0, "ref"}, LiteralArray},
		{map[string]any{}, LiteralObject},
	}
	for _, tc := range cases {
		if got := LiteralShapeOf(tc.value); got != tc.want {
			t.Errorf("LiteralShapeOf(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestLiteralType_Satisfies(t *testing.T) {
	if !LiteralInt.Satisfies(LiteralFloat) {
		t.Error("int literal should satisfy a float slot")
	}
	if !LiteralInt3.Satisfies(LiteralFloat3) {
		t.Error("int3 literal should satisfy a float3 slot")
	}
	if LiteralFloat.Satisfies(LiteralInt) {
		t.Error("float literal must not satisfy an int slot")
	}
	if LiteralInt2.Satisfies(LiteralFloat3) {
		t.Error("width mismatch must not satisfy")
	}
}
