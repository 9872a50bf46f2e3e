// neplc is the NEPL compiler driver.
//
// Usage:
//
//	neplc --output out.wasm [--input prog.nepl] [--stdlib path]
//	      [--emit wasm|llvm] [--run] [--lib] [--verbose]
//	neplc -repl
//
// Source comes from --input or standard input. Errors go to stderr with a
// non-zero exit; no partial output is written.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	nepl "github.com/neknaj/NEPLg1"
)

const appName = "neplc"

func main() {
	var (
		input   = flag.String("input", "", "input file (default: read from stdin)")
		output  = flag.String("output", "", "output file (required)")
		stdlib  = flag.String("stdlib", "", "path to the standard library root (default: bundled stdlib)")
		emit    = flag.String("emit", "wasm", "output format: wasm, llvm")
		run     = flag.Bool("run", false, "run the code if the output format is wasm")
		lib     = flag.Bool("lib", false, "compile as library (not yet honored)")
		repl    = flag.Bool("repl", false, "start an interactive evaluator instead of compiling")
		verbose = flag.Bool("verbose", false, "log compilation phases")
	)
	flag.Parse()

	if *repl {
		os.Exit(runREPL())
	}

	if *output == "" {
		fmt.Fprintf(os.Stderr, "%s: --output is required\n", appName)
		flag.Usage()
		os.Exit(2)
	}

	if err := execute(*input, *output, *stdlib, *emit, *run, *lib, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(exitCode(err))
	}
}

func execute(input, output, stdlib, emit string, run, lib, verbose bool) error {
	// Reject unsupported formats before any compilation work.
	if emit != "wasm" && emit != "llvm" {
		return &nepl.UnsupportedFormatError{Format: emit}
	}

	var log *zap.SugaredLogger
	if verbose {
		base, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer base.Sync()
		log = base.Sugar()
	} else {
		log = zap.NewNop().Sugar()
	}

	stdlibRoot := stdlib
	if stdlibRoot == "" {
		stdlibRoot = nepl.DefaultStdlibRoot()
	}

	source, err := readSource(input)
	if err != nil {
		return err
	}
	log.Infow("compiling", "emit", emit, "stdlib", stdlibRoot, "bytes", len(source))

	start := time.Now()
	switch emit {
	case "wasm":
		artifact, err := nepl.CompileWASM(source, stdlibRoot)
		if err != nil {
			return err
		}
		digest := artifact.Digest()
		log.Infow("compiled",
			"elapsed", time.Since(start),
			"module_bytes", len(artifact.Wasm),
			"builtins", len(artifact.Builtins),
			"stdlib_files", len(artifact.StdlibFiles),
			"digest", fmt.Sprintf("%x", digest[:8]))
		if err := writeOutput(output, artifact.Wasm); err != nil {
			return err
		}
		if run {
			result, err := runArtifact(artifact, defaultHandler{})
			if err != nil {
				return err
			}
			fmt.Printf("Program exited with %d\n", result)
		}
	case "llvm":
		ir, err := nepl.EmitLLVMIR(source, stdlibRoot)
		if err != nil {
			return err
		}
		log.Infow("compiled", "elapsed", time.Since(start), "ir_bytes", len(ir))
		if err := writeOutput(output, []byte(ir)); err != nil {
			return err
		}
		if run {
			fmt.Fprintln(os.Stderr, "--run is ignored for non-wasm outputs")
		}
	}

	if lib {
		fmt.Fprintln(os.Stderr, "--lib is acknowledged but not yet honored")
	}
	return nil
}

func readSource(input string) (string, error) {
	if input == "" {
		buf, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", &nepl.SourceError{Err: err}
		}
		return string(buf), nil
	}
	buf, err := os.ReadFile(input)
	if err != nil {
		return "", &nepl.SourceError{Err: err}
	}
	return string(buf), nil
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}

// exitCode maps an error to the process exit code: 2 for usage-level
// failures, 1 for everything else.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var usage *nepl.UnsupportedFormatError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}
