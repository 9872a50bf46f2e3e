// Package nepl compiles the NEPL prefix-notation expression language into
// standalone WebAssembly modules.
//
// The pipeline is: Tokenize -> Parse (arity-driven, with pipe desugaring)
// -> Validate (whole-program constant evaluation) -> backend. The wasm
// backend mixes direct instruction emission with compile-time constant
// folding; the textual-IR backend folds everything. Language-level builtins
// are bridged to host imports through the descriptor table in builtins.go.
//
// The pipeline is synchronous and purely functional over its inputs; the
// only I/O is the one-shot stdlib directory scan. Recursion depth tracks
// the nesting depth of the input program.
package nepl

// Version of the NEPL toolchain.
const Version = "0.2.0"
