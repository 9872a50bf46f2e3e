// compiler.go: compiler orchestration.
//
// CompileWASM and EmitLLVMIR run the full pipeline: load stdlib metadata,
// parse, validate against the evaluator, then hand off to a backend. The
// stdlib load happens first so a missing root fails before any parsing is
// attempted. Each invocation is independent and returns plain data, so
// concurrent compiles of different sources need no coordination.
package nepl

import "golang.org/x/crypto/blake2b"

// CompilationArtifact is the complete output of one compile invocation.
// It is built once and immutable thereafter.
type CompilationArtifact struct {
	// Wasm is the binary module.
	Wasm []byte

	// Builtins is the ordered, unique set of builtins the program actually
	// references, in the same deterministic order as the Import section.
	Builtins []BuiltinDescriptor

	// StdlibFiles is the loaded standard-library metadata (inert; see
	// stdlib.go).
	StdlibFiles []StdlibFile
}

// Digest is a content digest of the binary module. Two compiles of
// identical input produce identical digests; the CLI surfaces it for
// reproducibility checks.
func (a *CompilationArtifact) Digest() [32]byte {
	return blake2b.Sum256(a.Wasm)
}

// CompileWASM compiles a NEPL source into a standalone wasm module.
func CompileWASM(source, stdlibRoot string) (*CompilationArtifact, error) {
	files, err := LoadStdlibFiles(stdlibRoot)
	if err != nil {
		return nil, err
	}
	expr, err := Parse(source)
	if err != nil {
		return nil, err
	}
	if err := Validate(expr); err != nil {
		return nil, err
	}
	used := CollectUsedBuiltins(expr)
	wasm, err := generateModule(expr, used)
	if err != nil {
		return nil, err
	}
	return &CompilationArtifact{
		Wasm:        wasm,
		Builtins:    used,
		StdlibFiles: files,
	}, nil
}

// EmitLLVMIR compiles a NEPL source into a textual IR listing by fully
// constant-folding the program.
func EmitLLVMIR(source, stdlibRoot string) (string, error) {
	files, err := LoadStdlibFiles(stdlibRoot)
	if err != nil {
		return "", err
	}
	expr, err := Parse(source)
	if err != nil {
		return "", err
	}
	return generateLLVMIR(expr, len(files))
}
