// run.go: execute a compiled module with host-provided builtins.
//
// The builtin registry in the artifact drives the host wiring: every used
// builtin becomes an exported host function in its declared module, backed
// by a BuiltinHandler. This is the seam the tests use to observe and script
// host behavior; the real host values are unrelated to the compile-time
// stand-in constants.
package main

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"

	nepl "github.com/neknaj/NEPLg1"
)

// BuiltinHandler supplies the host side of each builtin kind.
type BuiltinHandler interface {
	WasmPagesize() int32
	WasiRandom() int32
	WasiPrint(value int32) int32
}

// defaultHandler is the handler behind `neplc --run`.
type defaultHandler struct{}

func (defaultHandler) WasmPagesize() int32 { return 65536 }
func (defaultHandler) WasiRandom() int32   { return 4 }
func (defaultHandler) WasiPrint(value int32) int32 {
	fmt.Println(value)
	return value
}

// runArtifact instantiates the artifact's module, wiring each used builtin
// to the handler, then calls the exported main.
func runArtifact(artifact *nepl.CompilationArtifact, handler BuiltinHandler) (int32, error) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	// One host module per distinct Module name, in first-appearance order.
	var moduleNames []string
	byModule := map[string][]nepl.BuiltinDescriptor{}
	for _, b := range artifact.Builtins {
		if _, ok := byModule[b.Module]; !ok {
			moduleNames = append(moduleNames, b.Module)
		}
		byModule[b.Module] = append(byModule[b.Module], b)
	}

	for _, name := range moduleNames {
		builder := rt.NewHostModuleBuilder(name)
		for _, b := range byModule[name] {
			switch b.Kind {
			case nepl.BuiltinPageSize:
				builder.NewFunctionBuilder().
					WithFunc(func(context.Context) int32 { return handler.WasmPagesize() }).
					Export(b.Name)
			case nepl.BuiltinRandom:
				builder.NewFunctionBuilder().
					WithFunc(func(context.Context) int32 { return handler.WasiRandom() }).
					Export(b.Name)
			case nepl.BuiltinPrint:
				builder.NewFunctionBuilder().
					WithFunc(func(_ context.Context, v int32) int32 { return handler.WasiPrint(v) }).
					Export(b.Name)
			default:
				return 0, fmt.Errorf("builtin %s has an unknown kind", b.Name)
			}
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return 0, fmt.Errorf("failed to link builtin module %s: %w", name, err)
		}
	}

	mod, err := rt.Instantiate(ctx, artifact.Wasm)
	if err != nil {
		return 0, fmt.Errorf("failed to instantiate module: %w", err)
	}
	mainFn := mod.ExportedFunction("main")
	if mainFn == nil {
		return 0, fmt.Errorf("exported main function missing")
	}
	results, err := mainFn.Call(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to execute main: %w", err)
	}
	if len(results) != 1 {
		return 0, fmt.Errorf("main returned %d results, want 1", len(results))
	}
	return int32(uint32(results[0])), nil
}
