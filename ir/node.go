package ir

import (
	"encoding/json"
	"fmt"
)

// Reserved node keys. These are control annotations, never operation
// arguments, and the schema registry must not declare them.
const (
	KeyID            = "id"
	KeyOp            = "op"
	KeyMetadata      = "metadata"
	KeyComment       = "comment"
	KeyExecIn        = "exec_in"
	KeyExecOut       = "exec_out"
	KeyExecTrue      = "exec_true"
	KeyExecFalse     = "exec_false"
	KeyExecBody      = "exec_body"
	KeyExecCompleted = "exec_completed"
	KeyNext          = "next"
)

var reservedKeys = map[string]bool{
	KeyID:            true,
	KeyOp:            true,
	KeyMetadata:      true,
	KeyComment:       true,
	KeyExecIn:        true,
	KeyExecOut:       true,
	KeyExecTrue:      true,
	KeyExecFalse:     true,
	KeyExecBody:      true,
	KeyExecCompleted: true,
	KeyNext:          true,
}

// execOutKeys are the reserved keys that name outgoing execution targets,
// in the order edges are emitted.
var execOutKeys = []string{
	KeyNext, KeyExecOut, KeyExecTrue, KeyExecFalse, KeyExecBody, KeyExecCompleted,
}

// IsReservedKey reports whether key is a control annotation rather than an
// operation argument.
func IsReservedKey(key string) bool {
	return reservedKeys[key]
}

// Node is a single operation in a function's flat node list. Props holds
// the operation-specific keys: literals (numbers, booleans, arrays, nested
// objects) or strings that are references to other ids.
type Node struct {
	ID    string
	Op    string
	Props map[string]any
}

// Prop returns the named property and whether it is present.
func (n *Node) Prop(key string) (any, bool) {
	v, ok := n.Props[key]
	return v, ok
}

// StringProp returns the named property if it is present and a string.
func (n *Node) StringProp(key string) (string, bool) {
	v, ok := n.Props[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ExecIn returns the node's exec_in annotation, if any.
func (n *Node) ExecIn() (string, bool) { return n.StringProp(KeyExecIn) }

// ExecTargets returns the (reserved key, target id) pairs naming the node's
// outgoing execution targets, in emission order.
func (n *Node) ExecTargets() [][2]string {
	var out [][2]string
	for _, key := range execOutKeys {
		if target, ok := n.StringProp(key); ok {
			out = append(out, [2]string{key, target})
		}
	}
	return out
}

// UnmarshalJSON decodes a node from its flat wire form, where operation
// arguments sit beside id and op at the top level.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, ok := raw[KeyID].(string)
	if !ok {
		return fmt.Errorf("node is missing a string %q key", KeyID)
	}
	op, ok := raw[KeyOp].(string)
	if !ok {
		return fmt.Errorf("node %q is missing a string %q key", id, KeyOp)
	}
	n.ID = id
	n.Op = op
	n.Props = make(map[string]any, len(raw)-2)
	for k, v := range raw {
		if k == KeyID || k == KeyOp {
			continue
		}
		n.Props[k] = v
	}
	return nil
}

// MarshalJSON encodes the node back to its flat wire form.
func (n Node) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(n.Props)+2)
	for k, v := range n.Props {
		raw[k] = v
	}
	raw[KeyID] = n.ID
	raw[KeyOp] = n.Op
	return json.Marshal(raw)
}
