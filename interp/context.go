package interp

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/gogpu/shadergraph/ir"
)

// Frame is one entry of the call stack. A frame is exclusively owned by
// the function invocation that pushed it.
type Frame struct {
	fnID   string
	locals map[string]Value

	// loopIndex holds active loop counters keyed by loop node id; loops
	// may nest and each needs its own counter visible only within its
	// body.
	loopIndex map[string]int

	// memo caches per-node results. Cleared at every loop iteration so
	// loop-variant values re-evaluate.
	memo map[string]Value

	returned    bool
	returnValue Value
}

// Context owns the interpreter's mutable state: the resource store, the
// call stack, and the per-invocation builtins. It is session-scoped state
// with explicit construction and teardown, never ambient globals.
type Context struct {
	doc       *ir.Document
	resources map[string]*Resource
	inputs    map[string]Value

	// builtins holds per-invocation values and is swapped wholesale by
	// dispatch and draw; host holds frame-scoped values (time, frame,
	// viewport_size) that survive those swaps.
	builtins map[string]Value
	host     map[string]Value

	frames []*Frame

	// active counts live activations per function id for recursion
	// detection.
	active map[string]int

	viewportW  int
	viewportH  int
	frameIndex int

	log commonlog.Logger
}

// NewContext materializes a context for doc. Every non-defaulted input
// must be supplied, or construction fails.
func NewContext(doc *ir.Document, inputs map[string]Value) (*Context, error) {
	ctx := &Context{
		doc:       doc,
		resources: make(map[string]*Resource, len(doc.Resources)),
		inputs:    make(map[string]Value, len(doc.Inputs)),
		builtins:  make(map[string]Value),
		host: map[string]Value{
			"time":          0.0,
			"frame":         0.0,
			"viewport_size": []float64{0, 0},
		},
		active: make(map[string]int),
		log:    commonlog.GetLogger("shadergraph.interp"),
	}

	for i := range doc.Inputs {
		in := &doc.Inputs[i]
		if v, ok := inputs[in.ID]; ok {
			ctx.inputs[in.ID] = fromLiteral(v)
			continue
		}
		if in.Default == nil {
			return nil, fmt.Errorf("input %q has no default and was not supplied", in.ID)
		}
		ctx.inputs[in.ID] = fromLiteral(in.Default)
	}

	for i := range doc.Resources {
		def := &doc.Resources[i]
		res, err := newResource(def)
		if err != nil {
			return nil, err
		}
		ctx.resources[def.ID] = res
	}
	// Second pass: extents. match_resource must see its target
	// materialized first.
	for i := range doc.Resources {
		def := &doc.Resources[i]
		res := ctx.resources[def.ID]
		switch def.Size.Mode {
		case ir.SizeFixed:
			h := def.Size.Height
			res.Resize(def.Size.Width, h)
		case ir.SizeViewport:
			res.Resize(ctx.viewportW, ctx.viewportH)
		case ir.SizeMatchResource:
			if target, ok := ctx.resources[def.Size.MatchResource]; ok {
				res.Resize(target.Width(), target.Height())
			}
		case ir.SizeCPUDriven:
			// Zero-length until an explicit resize command runs.
			res.Resize(0, 1)
		}
		if def.Persistence.ClearValue != nil {
			res.Clear(nil)
		}
	}
	return ctx, nil
}

// Resource returns the runtime resource with the given id.
func (c *Context) Resource(id string) (*Resource, error) {
	res, ok := c.resources[id]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", id)
	}
	return res, nil
}

// SetViewport updates the host viewport and resizes viewport-tracking
// resources.
func (c *Context) SetViewport(w, h int) {
	c.viewportW, c.viewportH = w, h
	c.host["viewport_size"] = []float64{float64(w), float64(h)}
	for i := range c.doc.Resources {
		def := &c.doc.Resources[i]
		if def.Size.Mode == ir.SizeViewport {
			c.resources[def.ID].Resize(w, h)
		}
	}
}

// BeginFrame applies per-frame persistence rules: clearEveryFrame
// resources are refilled with their clear value, and non-retained
// resources are reset.
func (c *Context) BeginFrame() {
	c.host["frame"] = float64(c.frameIndex)
	c.frameIndex++
	for i := range c.doc.Resources {
		def := &c.doc.Resources[i]
		if def.Persistence.ClearEveryFrame || !def.Persistence.Retain {
			c.resources[def.ID].Clear(nil)
		}
	}
}

// SetTime publishes the host clock, in seconds, to the time builtin.
func (c *Context) SetTime(seconds float64) {
	c.host["time"] = seconds
}

// PushFrame pushes a stack frame for an invocation of fnID.
func (c *Context) PushFrame(fnID string) *Frame {
	f := &Frame{
		fnID:      fnID,
		locals:    make(map[string]Value),
		loopIndex: make(map[string]int),
		memo:      make(map[string]Value),
	}
	c.frames = append(c.frames, f)
	return f
}

// PopFrame pops the current frame; popping an empty stack is a runtime
// error.
func (c *Context) PopFrame() error {
	if len(c.frames) == 0 {
		return fmt.Errorf("call stack underflow")
	}
	c.frames = c.frames[:len(c.frames)-1]
	return nil
}

// CurrentFrame returns the active frame.
func (c *Context) CurrentFrame() (*Frame, error) {
	if len(c.frames) == 0 {
		return nil, fmt.Errorf("no active stack frame")
	}
	return c.frames[len(c.frames)-1], nil
}

// LookupVar resolves a bare identifier: current frame locals, then
// invocation builtins, then host builtins, then document inputs.
func (c *Context) LookupVar(name string) (Value, error) {
	if f, err := c.CurrentFrame(); err == nil {
		if v, ok := f.locals[name]; ok {
			return v, nil
		}
	}
	if v, ok := c.builtins[name]; ok {
		return v, nil
	}
	if v, ok := c.host[name]; ok {
		return v, nil
	}
	if v, ok := c.inputs[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("undefined variable %q", name)
}

// SetLocal writes a local variable binding in the current frame.
func (c *Context) SetLocal(name string, v Value) error {
	f, err := c.CurrentFrame()
	if err != nil {
		return err
	}
	f.locals[name] = v
	return nil
}

// SetBuiltins replaces the per-invocation builtin values and returns the
// previous set so a dispatch can restore it.
func (c *Context) SetBuiltins(b map[string]Value) map[string]Value {
	prev := c.builtins
	if b == nil {
		b = make(map[string]Value)
	}
	c.builtins = b
	return prev
}

func (c *Context) enterFunction(id string) error {
	if c.active[id] > 0 {
		return fmt.Errorf("recursive call of function %q is forbidden", id)
	}
	c.active[id]++
	return nil
}

func (c *Context) leaveFunction(id string) {
	c.active[id]--
}

// Destroy tears the context down, dropping all resource stores.
func (c *Context) Destroy() {
	c.resources = nil
	c.frames = nil
	c.builtins = nil
	c.host = nil
	c.log.Debug("context destroyed")
}
