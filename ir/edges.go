package ir

import "strconv"

// EdgeType tags an edge as a value dependency or an ordering dependency.
type EdgeType string

const (
	EdgeData      EdgeType = "data"
	EdgeExecution EdgeType = "execution"
)

// Edge is a derived, never authored, graph edge.
type Edge struct {
	From    string
	PortOut string
	To      string
	PortIn  string
	Type    EdgeType
}

// The producer-side port for data edges and the implicit ports used when
// synthesizing execution edges.
const (
	PortValue   = "value"
	PortExecIn  = KeyExecIn
	PortExecOut = KeyExecOut
)

// edgeBuilder accumulates deduplicated edges for one function.
type edgeBuilder struct {
	doc   *Document
	fn    *FunctionDef
	edges []Edge
	seen  map[Edge]bool

	nodes map[string]*Node
}

// ReconstructEdges derives the explicit data/execution edge list for fn.
// The pass is idempotent: identical tuples collapse to a single edge, so
// running it twice over an unchanged function yields the same set.
//
// doc may be nil; cross-scope references (document inputs, resources,
// functions) then simply do not resolve.
func ReconstructEdges(doc *Document, fn *FunctionDef) []Edge {
	b := &edgeBuilder{
		doc:   doc,
		fn:    fn,
		seen:  make(map[Edge]bool),
		nodes: make(map[string]*Node, len(fn.Nodes)),
	}
	for i := range fn.Nodes {
		b.nodes[fn.Nodes[i].ID] = &fn.Nodes[i]
	}

	// Pass 1: data edges and explicit execution edges, in declaration
	// order. Explicit edges must exist before exec_in fallbacks are
	// considered, so the heuristic never shadows a schema-declared edge.
	for i := range fn.Nodes {
		b.nodeEdges(&fn.Nodes[i])
	}

	// Pass 2: exec_in fallbacks.
	for i := range fn.Nodes {
		b.execInFallback(&fn.Nodes[i])
	}

	return b.edges
}

func (b *edgeBuilder) add(e Edge) {
	if b.seen[e] {
		return
	}
	b.seen[e] = true
	b.edges = append(b.edges, e)
}

// resolves reports whether id names anything in scope: a node, a local
// variable, a function input, or a document input/resource/function.
func (b *edgeBuilder) resolves(id string) bool {
	if _, ok := b.nodes[id]; ok {
		return true
	}
	if b.fn.LocalVar(id) != nil || b.fn.Input(id) != nil {
		return true
	}
	if b.doc != nil {
		if b.doc.Input(id) != nil || b.doc.Resource(id) != nil || b.doc.Function(id) != nil {
			return true
		}
	}
	return false
}

func (b *edgeBuilder) isExecutable(id string) bool {
	n, ok := b.nodes[id]
	if !ok {
		return false
	}
	schema := LookupOp(n.Op)
	return schema != nil && schema.Executable
}

func (b *edgeBuilder) nodeEdges(n *Node) {
	schema := LookupOp(n.Op)
	if schema == nil {
		// Unknown op; the validator reports it.
		return
	}

	for i := range schema.Args {
		arg := &schema.Args[i]
		v, ok := n.Props[arg.Name]
		if !ok {
			continue
		}
		if !arg.Refable && !arg.RequiredRef {
			continue
		}
		switch val := v.(type) {
		case string:
			if b.resolves(val) {
				b.add(Edge{From: val, PortOut: PortValue, To: n.ID, PortIn: arg.Name, Type: EdgeData})
			}
		case []any:
			// Array-valued reference arguments emit one edge per
			// resolved element.
			for idx, elem := range val {
				s, isStr := elem.(string)
				if isStr && b.resolves(s) {
					port := arg.Name + "[" + strconv.Itoa(idx) + "]"
					b.add(Edge{From: s, PortOut: PortValue, To: n.ID, PortIn: port, Type: EdgeData})
				}
			}
		}
	}

	if schema.Dynamic && schema.ContainerKey != "" {
		if container, ok := n.Props[schema.ContainerKey]; ok {
			b.walkContainer(n, schema.ContainerKey, container)
		}
	}

	if schema.Executable {
		for _, target := range n.ExecTargets() {
			key, to := target[0], target[1]
			if b.isExecutable(to) {
				b.add(Edge{From: n.ID, PortOut: key, To: to, PortIn: PortExecIn, Type: EdgeExecution})
			}
		}
	}
}

// walkContainer scans a dynamic-argument container recursively, emitting a
// data edge for every string value that resolves to a known id.
func (b *edgeBuilder) walkContainer(n *Node, path string, v any) {
	switch val := v.(type) {
	case string:
		if b.resolves(val) {
			b.add(Edge{From: val, PortOut: PortValue, To: n.ID, PortIn: path, Type: EdgeData})
		}
	case map[string]any:
		for key, elem := range val {
			b.walkContainer(n, path+"."+key, elem)
		}
	case []any:
		for idx, elem := range val {
			b.walkContainer(n, path+"["+strconv.Itoa(idx)+"]", elem)
		}
	}
}

// execInFallback synthesizes an execution edge for an exec_in annotation
// when no explicit execution edge already targets the node. A pure node
// named by exec_in produces no edge: pure nodes have no side effects to
// order, only their data edges matter.
func (b *edgeBuilder) execInFallback(n *Node) {
	schema := LookupOp(n.Op)
	if schema == nil || !schema.Executable {
		return
	}
	from, ok := n.ExecIn()
	if !ok || !b.isExecutable(from) {
		return
	}
	for _, e := range b.edges {
		if e.Type == EdgeExecution && e.To == n.ID && e.PortIn == PortExecIn {
			return
		}
	}
	b.add(Edge{From: from, PortOut: PortExecOut, To: n.ID, PortIn: PortExecIn, Type: EdgeExecution})
}
