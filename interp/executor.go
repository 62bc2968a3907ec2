package interp

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/gogpu/shadergraph/ir"
)

// State is the executor's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateResolvingEntry
	StateRunning
	StateCompleted
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolvingEntry:
		return "resolving-entry"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Executor drives execution order from reconstructed edges. Executable
// nodes are stepped eagerly; pure nodes are pulled on demand.
type Executor struct {
	doc   *ir.Document
	ctx   *Context
	state State

	// edgeCache holds reconstructed edges per function id. Reconstruction
	// is idempotent, so caching once after load is safe.
	edgeCache map[string][]ir.Edge

	log commonlog.Logger
}

// NewExecutor creates an executor over a validated document and a context.
func NewExecutor(doc *ir.Document, ctx *Context) *Executor {
	return &Executor{
		doc:       doc,
		ctx:       ctx,
		state:     StateIdle,
		edgeCache: make(map[string][]ir.Edge),
		log:       commonlog.GetLogger("shadergraph.exec"),
	}
}

// State returns the executor's current lifecycle state.
func (x *Executor) State() State { return x.state }

// Context returns the evaluation context.
func (x *Executor) Context() *Context { return x.ctx }

// Run executes the document's entry function once.
func (x *Executor) Run() error {
	x.state = StateResolvingEntry
	entry := x.doc.Function(x.doc.EntryPoint)
	if entry == nil {
		x.state = StateFailed
		return fmt.Errorf("entry point %q does not name a function", x.doc.EntryPoint)
	}
	if entry.Type != ir.FunctionCPU {
		x.state = StateFailed
		return fmt.Errorf("entry point %q is not a cpu function", x.doc.EntryPoint)
	}
	x.state = StateRunning
	if _, err := x.callFunction(entry.ID, nil); err != nil {
		x.state = StateFailed
		return err
	}
	x.state = StateCompleted
	return nil
}

func (x *Executor) functionEdges(fn *ir.FunctionDef) []ir.Edge {
	if edges, ok := x.edgeCache[fn.ID]; ok {
		return edges
	}
	edges := ir.ReconstructEdges(x.doc, fn)
	x.edgeCache[fn.ID] = edges
	return edges
}

// funcRun is the per-invocation execution state of one function.
type funcRun struct {
	x     *Executor
	fn    *ir.FunctionDef
	frame *Frame

	nodes     map[string]*ir.Node
	hasExecIn map[string]bool
	outgoing  map[string]map[string]string

	// evaluating guards pull evaluation against circular data
	// dependencies.
	evaluating map[string]bool
}

// callFunction invokes fn with the given input bindings and returns its
// func_return value, if any. Recursion is detected at call time and is
// fatal.
func (x *Executor) callFunction(fnID string, args map[string]Value) (Value, error) {
	fn := x.doc.Function(fnID)
	if fn == nil {
		return nil, fmt.Errorf("unknown function %q", fnID)
	}
	if err := x.ctx.enterFunction(fnID); err != nil {
		return nil, err
	}
	defer x.ctx.leaveFunction(fnID)

	frame := x.ctx.PushFrame(fnID)
	defer func() { _ = x.ctx.PopFrame() }()

	for i := range fn.LocalVars {
		lv := &fn.LocalVars[i]
		frame.locals[lv.ID] = fromLiteral(lv.Initial)
	}
	for i := range fn.Inputs {
		port := &fn.Inputs[i]
		v, ok := args[port.ID]
		if !ok {
			return nil, fmt.Errorf("function %q: input %q not supplied", fnID, port.ID)
		}
		frame.locals[port.ID] = v
	}

	r := &funcRun{
		x:          x,
		fn:         fn,
		frame:      frame,
		nodes:      make(map[string]*ir.Node, len(fn.Nodes)),
		hasExecIn:  make(map[string]bool),
		outgoing:   make(map[string]map[string]string),
		evaluating: make(map[string]bool),
	}
	for i := range fn.Nodes {
		r.nodes[fn.Nodes[i].ID] = &fn.Nodes[i]
	}
	for _, e := range x.functionEdges(fn) {
		if e.Type != ir.EdgeExecution {
			continue
		}
		r.hasExecIn[e.To] = true
		ports := r.outgoing[e.From]
		if ports == nil {
			ports = make(map[string]string)
			r.outgoing[e.From] = ports
		}
		ports[e.PortOut] = e.To
	}

	// Entry nodes: executable nodes with no incoming execution edge, in
	// declaration order.
	for i := range fn.Nodes {
		n := &fn.Nodes[i]
		schema := ir.LookupOp(n.Op)
		if schema == nil || !schema.Executable || r.hasExecIn[n.ID] {
			continue
		}
		if err := r.runChain(n.ID); err != nil {
			return nil, err
		}
		if frame.returned {
			break
		}
	}
	return frame.returnValue, nil
}

// runChain steps along execution edges starting at nodeID until the chain
// ends or the frame returns.
func (r *funcRun) runChain(nodeID string) error {
	current := nodeID
	for current != "" && !r.frame.returned {
		n, ok := r.nodes[current]
		if !ok {
			return fmt.Errorf("function %q: execution reached unknown node %q", r.fn.ID, current)
		}
		r.x.log.Debugf("exec %s.%s (%s)", r.fn.ID, n.ID, n.Op)

		switch n.Op {
		case "flow_branch":
			next, err := r.stepBranch(n)
			if err != nil {
				return err
			}
			current = next
			continue
		case "flow_loop":
			if err := r.stepLoop(n); err != nil {
				return err
			}
			current = r.outgoing[n.ID][ir.KeyExecCompleted]
			continue
		case "func_return":
			return r.stepReturn(n)
		}

		opFn, ok := opFuncs[n.Op]
		if !ok {
			return fmt.Errorf("op %q has no interpreter implementation (node %q)", n.Op, n.ID)
		}
		args, err := r.resolveArgs(n)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.ID, err)
		}
		result, err := opFn(r, n, args)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.ID, err)
		}
		r.frame.memo[n.ID] = result

		ports := r.outgoing[n.ID]
		next := ports[ir.KeyNext]
		if other := ports[ir.KeyExecOut]; other != "" && other != next {
			// Fan-out: run the secondary chain to completion first.
			if next != "" {
				if err := r.runChain(next); err != nil {
					return err
				}
			}
			next = other
		}
		current = next
	}
	return nil
}

func (r *funcRun) stepBranch(n *ir.Node) (string, error) {
	condVal, err := r.pullArg(n, "condition")
	if err != nil {
		return "", fmt.Errorf("node %q: %w", n.ID, err)
	}
	cond, err := toBool(condVal)
	if err != nil {
		return "", fmt.Errorf("node %q: condition: %w", n.ID, err)
	}
	ports := r.outgoing[n.ID]
	if cond {
		return ports[ir.KeyExecTrue], nil
	}
	return ports[ir.KeyExecFalse], nil
}

// stepLoop re-enters exec_body once per iteration, binding a fresh loop
// index keyed by the loop node's id.
func (r *funcRun) stepLoop(n *ir.Node) error {
	start, end, err := r.loopBounds(n)
	if err != nil {
		return fmt.Errorf("node %q: %w", n.ID, err)
	}
	body := r.outgoing[n.ID][ir.KeyExecBody]
	for i := start; i < end && !r.frame.returned; i++ {
		r.frame.loopIndex[n.ID] = i
		// Loop-variant pulls must re-evaluate each iteration.
		r.invalidatePure()
		if body == "" {
			continue
		}
		if err := r.runChain(body); err != nil {
			return err
		}
	}
	delete(r.frame.loopIndex, n.ID)
	r.invalidatePure()
	return nil
}

// invalidatePure drops memoized results of pure nodes. Executable nodes
// keep theirs: execution is the only thing that produces them, and nodes
// downstream of a loop may still consume results produced before it.
func (r *funcRun) invalidatePure() {
	for id := range r.frame.memo {
		n, ok := r.nodes[id]
		if !ok {
			delete(r.frame.memo, id)
			continue
		}
		if schema := ir.LookupOp(n.Op); schema == nil || !schema.Executable {
			delete(r.frame.memo, id)
		}
	}
}

func (r *funcRun) loopBounds(n *ir.Node) (int, int, error) {
	if _, ok := n.Props["count"]; ok {
		v, err := r.pullArg(n, "count")
		if err != nil {
			return 0, 0, err
		}
		count, err := toInt(v)
		if err != nil {
			return 0, 0, err
		}
		return 0, count, nil
	}
	startVal, err := r.pullArg(n, "start")
	if err != nil {
		return 0, 0, err
	}
	endVal, err := r.pullArg(n, "end")
	if err != nil {
		return 0, 0, err
	}
	start, err := toInt(startVal)
	if err != nil {
		return 0, 0, err
	}
	end, err := toInt(endVal)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func (r *funcRun) stepReturn(n *ir.Node) error {
	if _, ok := n.Props["value"]; ok {
		v, err := r.pullArg(n, "value")
		if err != nil {
			return fmt.Errorf("node %q: %w", n.ID, err)
		}
		r.frame.returnValue = v
	}
	r.frame.returned = true
	return nil
}

// pullArg resolves a single declared argument of n.
func (r *funcRun) pullArg(n *ir.Node, name string) (Value, error) {
	schema := ir.LookupOp(n.Op)
	arg := schema.Arg(name)
	raw, ok := n.Props[name]
	if !ok {
		return nil, fmt.Errorf("missing argument %q", name)
	}
	return r.resolveArgValue(raw, arg)
}

// evalNode pull-evaluates a node's value. Pure nodes evaluate on demand;
// executable nodes only yield their memoized result from execution, except
// an active flow_loop, which yields its current index.
func (r *funcRun) evalNode(id string) (Value, error) {
	if v, ok := r.frame.memo[id]; ok {
		return v, nil
	}
	n, ok := r.nodes[id]
	if !ok {
		return nil, fmt.Errorf("unknown node %q", id)
	}
	if n.Op == "flow_loop" {
		if i, active := r.frame.loopIndex[id]; active {
			return float64(i), nil
		}
		return nil, fmt.Errorf("loop %q is not active", id)
	}
	schema := ir.LookupOp(n.Op)
	if schema == nil {
		return nil, fmt.Errorf("unknown op %q (node %q)", n.Op, id)
	}
	if schema.Executable {
		return nil, fmt.Errorf("executable node %q has not been executed", id)
	}
	if r.evaluating[id] {
		return nil, fmt.Errorf("node %q has a circular data dependency", id)
	}
	r.evaluating[id] = true
	defer delete(r.evaluating, id)

	opFn, ok := opFuncs[n.Op]
	if !ok {
		return nil, fmt.Errorf("op %q has no interpreter implementation (node %q)", n.Op, id)
	}
	args, err := r.resolveArgs(n)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", id, err)
	}
	result, err := opFn(r, n, args)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", id, err)
	}
	r.frame.memo[id] = result
	return result, nil
}

// resolveRef resolves a reference id: node, then function-local, then
// builtins, then document input, resource, or function.
func (r *funcRun) resolveRef(id string) (Value, error) {
	if _, ok := r.nodes[id]; ok {
		return r.evalNode(id)
	}
	if v, ok := r.frame.locals[id]; ok {
		return v, nil
	}
	if v, ok := r.x.ctx.builtins[id]; ok {
		return v, nil
	}
	if v, ok := r.x.ctx.host[id]; ok {
		return v, nil
	}
	if v, ok := r.x.ctx.inputs[id]; ok {
		return v, nil
	}
	if res, ok := r.x.ctx.resources[id]; ok {
		return res, nil
	}
	if r.x.doc.Function(id) != nil {
		return FuncRef{ID: id}, nil
	}
	return nil, fmt.Errorf("unresolved reference %q", id)
}

// resolveArgs materializes every declared argument plus the dynamic
// container, resolving references to runtime values. RequiredRef slots
// keep the raw id: their ops act on the referent's identity, not its
// value.
func (r *funcRun) resolveArgs(n *ir.Node) (map[string]Value, error) {
	schema := ir.LookupOp(n.Op)
	args := make(map[string]Value, len(schema.Args)+1)
	for i := range schema.Args {
		arg := &schema.Args[i]
		raw, ok := n.Props[arg.Name]
		if !ok {
			continue
		}
		v, err := r.resolveArgValue(raw, arg)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", arg.Name, err)
		}
		args[arg.Name] = v
	}
	if schema.Dynamic && schema.ContainerKey != "" {
		if raw, ok := n.Props[schema.ContainerKey]; ok {
			v, err := r.resolveDynamic(raw)
			if err != nil {
				return nil, fmt.Errorf("argument %q: %w", schema.ContainerKey, err)
			}
			args[schema.ContainerKey] = v
		}
	}
	return args, nil
}

func (r *funcRun) resolveArgValue(raw any, arg *ir.ArgSpec) (Value, error) {
	if arg.RequiredRef {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected a reference, got %T", raw)
		}
		return s, nil
	}
	if !arg.Refable {
		return fromLiteral(raw), nil
	}
	switch val := raw.(type) {
	case string:
		return r.resolveRef(val)
	case []any:
		return r.resolveDynamic(val)
	default:
		return fromLiteral(raw), nil
	}
}

// resolveDynamic walks a container, resolving every string that names a
// known id and keeping everything else literal.
func (r *funcRun) resolveDynamic(raw any) (Value, error) {
	switch val := raw.(type) {
	case string:
		if v, err := r.resolveRef(val); err == nil {
			return v, nil
		}
		return val, nil
	case map[string]any:
		out := make(map[string]Value, len(val))
		for k, e := range val {
			v, err := r.resolveDynamic(e)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case []any:
		out := make([]Value, len(val))
		allFloat := true
		for i, e := range val {
			v, err := r.resolveDynamic(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
			if _, isF := v.(float64); !isF {
				allFloat = false
			}
		}
		if allFloat {
			vec := make([]float64, len(out))
			for i, e := range out {
				vec[i] = e.(float64)
			}
			return vec, nil
		}
		return out, nil
	default:
		return fromLiteral(raw), nil
	}
}
