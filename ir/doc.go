// Package ir defines the graph intermediate representation for shadergraph.
//
// The IR is designed to be:
//   - Backend-agnostic: Not tied to any specific shading language
//   - Flat: Functions are flat node lists; control flow lives in node properties
//   - Implicit: Dataflow and control flow are stored as string references
//     inside node arguments, not as an authored edge list
//
// # Structure
//
// The IR is organized around a Document type that contains:
//   - Inputs: Host-provided uniform values
//   - Resources: Textures, buffers, and atomic counters
//   - Structs: Shared layout definitions
//   - Functions: CPU and shader function definitions, each a flat node list
//   - EntryPoint: The id of the CPU function that drives a frame
//
// # Analysis Pipeline
//
// The typical pipeline is:
//
//	Document → Validate → ReconstructEdges → interpret / lower to a backend
//
// ReconstructEdges derives an explicit, deduplicated bipartite graph of
// data and execution edges from the implicit references, using the op
// schema registry as the single source of truth for every operation's
// argument contract. The same registry drives validation, so changing an
// operation's contract only ever touches the registry.
package ir
