// builtins.go: host-provided builtins visible at the NEPL language level.
//
// The descriptor table below is the single source of truth for a builtin's
// arity (the parser), its stand-in value (the evaluator) and its wasm import
// signature (the code generator). It is fixed and ordered; nothing mutates
// it after startup. Backends map descriptors to actual host imports; this
// file performs no I/O or wasm interaction itself.
package nepl

import "sort"

// BuiltinKind selects which host capability backs a builtin call.
type BuiltinKind int

const (
	// BuiltinPageSize returns the size of a wasm memory page in bytes.
	BuiltinPageSize BuiltinKind = iota

	// BuiltinRandom returns a host-dependent random 32-bit integer.
	BuiltinRandom

	// BuiltinPrint prints a 32-bit integer and passes it through unchanged.
	BuiltinPrint
)

// BuiltinDescriptor is the metadata for a single builtin symbol.
type BuiltinDescriptor struct {
	// Name of the builtin at the NEPL level, also the import field name.
	Name string

	// Module is the host module the wasm import is resolved from.
	Module string

	// Params and Results are the wasm value types of the import signature.
	Params  []ValType
	Results []ValType

	// Kind tag used by backends and host runners.
	Kind BuiltinKind
}

// Arity is the number of language-level arguments a call takes.
func (b *BuiltinDescriptor) Arity() int { return len(b.Params) }

// builtinTable is the complete, ordered list of builtins known to the core.
var builtinTable = []BuiltinDescriptor{
	{
		Name:    "wasm_pagesize",
		Module:  "env",
		Results: []ValType{I32},
		Kind:    BuiltinPageSize,
	},
	{
		Name:    "wasi_random",
		Module:  "wasi",
		Results: []ValType{I32},
		Kind:    BuiltinRandom,
	},
	{
		Name:    "wasi_print",
		Module:  "wasi",
		Params:  []ValType{I32},
		Results: []ValType{I32},
		Kind:    BuiltinPrint,
	},
}

// Builtins returns the full descriptor table in declaration order. The
// returned slice is shared; callers must not modify it.
func Builtins() []BuiltinDescriptor { return builtinTable }

// LookupBuiltin finds a builtin by name, or nil. The scan is linear because
// the table is small by construction.
func LookupBuiltin(name string) *BuiltinDescriptor {
	for i := range builtinTable {
		if builtinTable[i].Name == name {
			return &builtinTable[i]
		}
	}
	return nil
}

// CollectUsedBuiltins walks the expression tree and returns every builtin
// referenced anywhere in it, sorted by name. Sorting (rather than keeping
// first-occurrence order) makes the import section, and therefore every
// function index in the emitted module, a pure function of the builtin set.
func CollectUsedBuiltins(expr Expr) []BuiltinDescriptor {
	seen := map[string]bool{}
	collectCallNames(expr, seen)

	var used []BuiltinDescriptor
	for i := range builtinTable {
		if seen[builtinTable[i].Name] {
			used = append(used, builtinTable[i])
		}
	}
	sort.Slice(used, func(i, j int) bool { return used[i].Name < used[j].Name })
	return used
}

func collectCallNames(expr Expr, seen map[string]bool) {
	switch e := expr.(type) {
	case *CallExpr:
		seen[e.Name] = true
		for _, arg := range e.Args {
			collectCallNames(arg, seen)
		}
	case *VectorExpr:
		for _, el := range e.Elems {
			collectCallNames(el, seen)
		}
	}
}
