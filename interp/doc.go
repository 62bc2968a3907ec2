// Package interp is the reference CPU interpreter for shadergraph IR.
//
// The interpreter executes a validated Document with bit-for-bit semantics
// that shading-language backends must reproduce. It is single-threaded and
// synchronous: execution order is entirely determined by the reconstructed
// execution-edge graph, and dispatch cells are iterated in raster order
// (z, then y, then x), so results are reproducible for conformance testing
// against GPU backends.
//
// Executable nodes are stepped eagerly along execution edges; pure nodes
// are never pre-scheduled, only pulled on demand when a consumer needs
// their value. Runtime errors (undefined variable, out-of-bounds access,
// forbidden recursion, dimension mismatch) are fatal and abort the current
// execution: continuing after a semantic violation would silently diverge
// from GPU-backend behavior.
package interp
