// Package shadergraph provides a graph-based intermediate representation
// for GPU compute and render pipelines, together with a reference CPU
// interpreter.
//
// A pipeline is described as a JSON document: a set of named resources
// (textures, buffers, atomic counters), typed inputs, struct definitions,
// and functions. Each function is a flat list of nodes whose string
// properties reference other nodes, variables, inputs, or resources.
// Edges between nodes are not stored; they are reconstructed from those
// references against the operation schema registry.
//
// The package provides a simple, high-level API for loading, validating,
// and running documents, as well as lower-level access to the individual
// stages.
//
// Example usage:
//
//	doc, err := shadergraph.Parse(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx, err := shadergraph.Run(doc, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, _ := ctx.Resource("output")
//
// For validation without execution, use Validate:
//
//	errs, err := shadergraph.Validate(doc)
//
// For incremental execution (frame loops, external inputs), use the interp
// package directly:
//
//	ctx, _ := interp.NewContext(doc, inputs)
//	x := interp.NewExecutor(doc, ctx)
//	err := x.Run()
package shadergraph

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/shadergraph/interp"
	"github.com/gogpu/shadergraph/ir"
)

// RunOptions configures document execution.
type RunOptions struct {
	// Inputs binds document inputs by id. Inputs with defaults may be
	// omitted.
	Inputs map[string]interp.Value

	// ViewportWidth and ViewportHeight size viewport-tracking resources.
	ViewportWidth  int
	ViewportHeight int

	// Validate enables document validation before execution.
	Validate bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() RunOptions {
	return RunOptions{
		ViewportWidth:  640,
		ViewportHeight: 480,
		Validate:       true,
	}
}

// Parse decodes a JSON pipeline document.
//
// Parse only checks structure, not semantics: an undefined reference or a
// mistyped argument is reported by Validate, not here.
func Parse(data []byte) (*ir.Document, error) {
	var doc ir.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return &doc, nil
}

// Validate validates a document for correctness.
//
// Validation checks include:
//   - Operation names and argument shapes against the schema registry
//   - Reference validity (every string reference resolves in scope)
//   - Entry point existence and function kind
//   - Resource declarations (formats, sizing, element types)
//
// Returns a slice of validation errors. If the slice is empty, validation
// passed.
func Validate(doc *ir.Document) ([]ir.ValidationError, error) {
	return ir.ValidateDocument(doc)
}

// Run executes a document's entry point once using default options and
// returns the execution context, which holds final resource and variable
// state.
func Run(doc *ir.Document, inputs map[string]interp.Value) (*interp.Context, error) {
	opts := DefaultOptions()
	opts.Inputs = inputs
	return RunWithOptions(doc, opts)
}

// RunWithOptions executes a document's entry point with custom options.
//
// The execution pipeline is:
//  1. Validate the document (if enabled)
//  2. Materialize resources and bind inputs
//  3. Run the entry-point function to completion
func RunWithOptions(doc *ir.Document, opts RunOptions) (*interp.Context, error) {
	if opts.Validate {
		validationErrors, err := ir.ValidateDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		if len(validationErrors) > 0 {
			return nil, fmt.Errorf("validation failed: %w", &validationErrors[0])
		}
	}

	ctx, err := interp.NewContext(doc, opts.Inputs)
	if err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		ctx.SetViewport(opts.ViewportWidth, opts.ViewportHeight)
	}

	x := interp.NewExecutor(doc, ctx)
	if err := x.Run(); err != nil {
		return nil, fmt.Errorf("execution error: %w", err)
	}
	return ctx, nil
}
