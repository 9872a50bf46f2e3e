// wasmgen.go: the binary WASM backend.
//
// The backend emits the module bytes directly: magic, version, then the
// Type, Import (only when builtins are used), Function, Export and Code
// sections, in that fixed order. The produced module exports exactly one
// zero-argument, single-i32-result function named "main"; imported builtins
// occupy function indices 0..n-1 in sorted-name order, so "main" sits at
// index n.
//
// Emission is two-tier, selected per AST node by operator identity:
//
//   - Tier 1: add/sub/mul/div/mod/neg, the truthiness logic ops, the
//     comparisons, the bit ops and every used builtin lower to real
//     instructions, recursing into operand subtrees first. Builtin calls
//     become wasm `call` instructions: their runtime value is whatever the
//     host returns, independent of the evaluator's stand-ins.
//   - Tier 2: every other operator folds its entire subtree through the
//     evaluator into a single i32.const. Such subtrees must be fully
//     constant-computable; there is no runtime representation for strings
//     or vectors in the artifact format, so Tier-2 operators must not be
//     "upgraded" to instructions without first designing a memory model.
package nepl

// ValType is a wasm value type byte.
type ValType byte

// I32 is the only value type the NEPL artifact format uses.
const I32 ValType = 0x7f

var (
	wasmMagic   = []byte{0x00, 0x61, 0x73, 0x6d}
	wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}
)

// Section ids, in the order the module lays them out.
const (
	sectionType     byte = 1
	sectionImport   byte = 2
	sectionFunction byte = 3
	sectionExport   byte = 7
	sectionCode     byte = 10
)

const (
	importKindFunc byte = 0x00
	exportKindFunc byte = 0x00
)

// Opcodes used by the emitter.
const (
	opCall     byte = 0x10
	opI32Const byte = 0x41
	opEnd      byte = 0x0b

	opI32Eqz byte = 0x45
	opI32Eq  byte = 0x46
	opI32Ne  byte = 0x47
	opI32LtS byte = 0x48
	opI32GtS byte = 0x4a
	opI32LeS byte = 0x4c
	opI32GeS byte = 0x4e

	opI32Add  byte = 0x6a
	opI32Sub  byte = 0x6b
	opI32Mul  byte = 0x6c
	opI32DivS byte = 0x6d
	opI32RemS byte = 0x6f
	opI32And  byte = 0x71
	opI32Or   byte = 0x72
	opI32Xor  byte = 0x73
	opI32Shl  byte = 0x74
	opI32ShrU byte = 0x76
)

// ---- encoding helpers ----------------------------------------------

func encodeULEB128(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func encodeSLEB128(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		out = append(out, b)
		if done {
			return out
		}
	}
}

func encodeSection(id byte, body []byte) []byte {
	out := []byte{id}
	out = append(out, encodeULEB128(uint64(len(body)))...)
	return append(out, body...)
}

func encodeVector(count int, contents []byte) []byte {
	out := encodeULEB128(uint64(count))
	return append(out, contents...)
}

func encodeName(s string) []byte {
	out := encodeULEB128(uint64(len(s)))
	return append(out, s...)
}

// ---- module assembly -----------------------------------------------

type funcSig struct {
	params  []ValType
	results []ValType
}

func sigKey(params, results []ValType) string {
	key := make([]byte, 0, len(params)+len(results)+1)
	for _, p := range params {
		key = append(key, byte(p))
	}
	key = append(key, '|')
	for _, r := range results {
		key = append(key, byte(r))
	}
	return string(key)
}

type wasmGenerator struct {
	types       []funcSig
	typeCache   map[string]int
	imports     []BuiltinDescriptor
	importTypes []int          // type index per import, parallel to imports
	importIndex map[string]int // builtin name -> function index
}

// generateModule emits the complete binary module for a validated program.
// used must be the sorted set from CollectUsedBuiltins so that function
// indices are stable across identical inputs.
func generateModule(expr Expr, used []BuiltinDescriptor) ([]byte, error) {
	g := &wasmGenerator{
		typeCache:   make(map[string]int),
		importIndex: make(map[string]int),
	}
	for i, b := range used {
		g.imports = append(g.imports, b)
		g.importTypes = append(g.importTypes, g.typeIndex(b.Params, b.Results))
		g.importIndex[b.Name] = i
	}
	mainType := g.typeIndex(nil, []ValType{I32})
	mainIndex := len(g.imports)

	body, err := g.emitExpr(expr)
	if err != nil {
		return nil, err
	}
	body = append(body, opEnd)

	var wasm []byte
	wasm = append(wasm, wasmMagic...)
	wasm = append(wasm, wasmVersion...)
	wasm = append(wasm, g.emitTypeSection()...)
	if len(g.imports) > 0 {
		wasm = append(wasm, g.emitImportSection()...)
	}
	wasm = append(wasm, emitFunctionSection(mainType)...)
	wasm = append(wasm, emitExportSection(mainIndex)...)
	wasm = append(wasm, emitCodeSection(body)...)
	return wasm, nil
}

// typeIndex returns the type section index for a signature, adding it if new.
func (g *wasmGenerator) typeIndex(params, results []ValType) int {
	key := sigKey(params, results)
	if idx, ok := g.typeCache[key]; ok {
		return idx
	}
	idx := len(g.types)
	g.types = append(g.types, funcSig{params: params, results: results})
	g.typeCache[key] = idx
	return idx
}

func (g *wasmGenerator) emitTypeSection() []byte {
	var contents []byte
	for _, sig := range g.types {
		contents = append(contents, 0x60) // function type tag
		contents = append(contents, encodeULEB128(uint64(len(sig.params)))...)
		for _, p := range sig.params {
			contents = append(contents, byte(p))
		}
		contents = append(contents, encodeULEB128(uint64(len(sig.results)))...)
		for _, r := range sig.results {
			contents = append(contents, byte(r))
		}
	}
	return encodeSection(sectionType, encodeVector(len(g.types), contents))
}

func (g *wasmGenerator) emitImportSection() []byte {
	var contents []byte
	for i, b := range g.imports {
		contents = append(contents, encodeName(b.Module)...)
		contents = append(contents, encodeName(b.Name)...)
		contents = append(contents, importKindFunc)
		contents = append(contents, encodeULEB128(uint64(g.importTypes[i]))...)
	}
	return encodeSection(sectionImport, encodeVector(len(g.imports), contents))
}

func emitFunctionSection(mainType int) []byte {
	contents := encodeULEB128(uint64(mainType))
	return encodeSection(sectionFunction, encodeVector(1, contents))
}

func emitExportSection(mainIndex int) []byte {
	contents := encodeName("main")
	contents = append(contents, exportKindFunc)
	contents = append(contents, encodeULEB128(uint64(mainIndex))...)
	return encodeSection(sectionExport, encodeVector(1, contents))
}

func emitCodeSection(body []byte) []byte {
	// locals declaration (none) + instructions
	fn := encodeULEB128(0)
	fn = append(fn, body...)
	contents := encodeULEB128(uint64(len(fn)))
	contents = append(contents, fn...)
	return encodeSection(sectionCode, encodeVector(1, contents))
}

// ---- expression emission -------------------------------------------

// directOps is the Tier-1 set of non-builtin operators.
var directOps = map[string]bool{
	"add": true, "sub": true, "mul": true, "div": true, "mod": true,
	"neg": true, "and": true, "or": true, "xor": true, "not": true,
	"lt": true, "le": true, "eq": true, "ne": true, "gt": true, "ge": true,
	"bit_and": true, "bit_or": true, "bit_xor": true, "bit_not": true,
	"bit_shl": true, "bit_shr": true,
}

func (g *wasmGenerator) emitExpr(expr Expr) ([]byte, error) {
	if call, ok := expr.(*CallExpr); ok {
		if _, imported := g.importIndex[call.Name]; imported || directOps[call.Name] {
			return g.emitDirectCall(call)
		}
	}
	// Tier 2: fold the whole subtree at compile time.
	return g.emitFolded(expr)
}

func (g *wasmGenerator) emitFolded(expr Expr) ([]byte, error) {
	v, err := Evaluate(expr)
	if err != nil {
		return nil, err
	}
	if v.Tag != VTNumber {
		return nil, semanticf("expression of type %s has no runtime representation", tagName(v.Tag))
	}
	return emitI32Const(v.AsNumber()), nil
}

func emitI32Const(v int32) []byte {
	out := []byte{opI32Const}
	return append(out, encodeSLEB128(int64(v))...)
}

// emitOperands emits every argument subtree in order.
func (g *wasmGenerator) emitOperands(call *CallExpr) ([]byte, error) {
	var out []byte
	for _, arg := range call.Args {
		code, err := g.emitExpr(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, code...)
	}
	return out, nil
}

// emitTruthy emits one operand normalized to 0/1 (operand != 0).
func (g *wasmGenerator) emitTruthy(arg Expr) ([]byte, error) {
	out, err := g.emitExpr(arg)
	if err != nil {
		return nil, err
	}
	out = append(out, emitI32Const(0)...)
	out = append(out, opI32Ne)
	return out, nil
}

func (g *wasmGenerator) emitDirectCall(call *CallExpr) ([]byte, error) {
	// Imported builtin: arguments then a real host call.
	if idx, ok := g.importIndex[call.Name]; ok {
		out, err := g.emitOperands(call)
		if err != nil {
			return nil, err
		}
		out = append(out, opCall)
		out = append(out, encodeULEB128(uint64(idx))...)
		return out, nil
	}

	switch call.Name {
	case "neg":
		// 0 - x
		out := emitI32Const(0)
		operand, err := g.emitExpr(call.Args[0])
		if err != nil {
			return nil, err
		}
		out = append(out, operand...)
		return append(out, opI32Sub), nil

	case "not":
		out, err := g.emitExpr(call.Args[0])
		if err != nil {
			return nil, err
		}
		return append(out, opI32Eqz), nil

	case "and", "or", "xor":
		out, err := g.emitTruthy(call.Args[0])
		if err != nil {
			return nil, err
		}
		rhs, err := g.emitTruthy(call.Args[1])
		if err != nil {
			return nil, err
		}
		out = append(out, rhs...)
		switch call.Name {
		case "and":
			return append(out, opI32And), nil
		case "or":
			return append(out, opI32Or), nil
		default:
			return append(out, opI32Xor), nil
		}

	case "bit_not":
		// x xor -1
		out, err := g.emitExpr(call.Args[0])
		if err != nil {
			return nil, err
		}
		out = append(out, emitI32Const(-1)...)
		return append(out, opI32Xor), nil
	}

	out, err := g.emitOperands(call)
	if err != nil {
		return nil, err
	}
	switch call.Name {
	case "add":
		out = append(out, opI32Add)
	case "sub":
		out = append(out, opI32Sub)
	case "mul":
		out = append(out, opI32Mul)
	case "div":
		out = append(out, opI32DivS)
	case "mod":
		out = append(out, opI32RemS)
	case "lt":
		out = append(out, opI32LtS)
	case "le":
		out = append(out, opI32LeS)
	case "eq":
		out = append(out, opI32Eq)
	case "ne":
		out = append(out, opI32Ne)
	case "gt":
		out = append(out, opI32GtS)
	case "ge":
		out = append(out, opI32GeS)
	case "bit_and":
		out = append(out, opI32And)
	case "bit_or":
		out = append(out, opI32Or)
	case "bit_xor":
		out = append(out, opI32Xor)
	case "bit_shl":
		out = append(out, opI32Shl)
	case "bit_shr":
		// Logical shift; see the evaluator's bit_shr for the matching rule.
		out = append(out, opI32ShrU)
	default:
		return nil, semanticf("operator '%s' has no instruction lowering", call.Name)
	}
	return out, nil
}
