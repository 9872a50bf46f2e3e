package nepl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func compileModule(t *testing.T, src string) []byte {
	t.Helper()
	expr := parseOK(t, src)
	require.NoError(t, Validate(expr))
	wasm, err := generateModule(expr, CollectUsedBuiltins(expr))
	require.NoError(t, err)
	return wasm
}

// decodeULEB reads one unsigned LEB128 value and returns it with the number
// of bytes consumed.
func decodeULEB(t *testing.T, b []byte) (uint64, int) {
	t.Helper()
	var v uint64
	for i := 0; i < len(b); i++ {
		v |= uint64(b[i]&0x7f) << (7 * i)
		if b[i]&0x80 == 0 {
			return v, i + 1
		}
	}
	t.Fatal("truncated LEB128")
	return 0, 0
}

// sectionIDs walks the module after the 8-byte header and lists section ids
// in file order.
func sectionIDs(t *testing.T, wasm []byte) []byte {
	t.Helper()
	require.GreaterOrEqual(t, len(wasm), 8)
	var ids []byte
	rest := wasm[8:]
	for len(rest) > 0 {
		ids = append(ids, rest[0])
		size, n := decodeULEB(t, rest[1:])
		rest = rest[1+n+int(size):]
	}
	return ids
}

// sectionBody extracts the contents of the section with the given id.
func sectionBody(t *testing.T, wasm []byte, id byte) []byte {
	t.Helper()
	rest := wasm[8:]
	for len(rest) > 0 {
		size, n := decodeULEB(t, rest[1:])
		if rest[0] == id {
			return rest[1+n : 1+n+int(size)]
		}
		rest = rest[1+n+int(size):]
	}
	t.Fatalf("module has no section %d", id)
	return nil
}

// mainBody returns the instruction bytes of the sole code-section function,
// locals declaration stripped.
func mainBody(t *testing.T, wasm []byte) []byte {
	t.Helper()
	code := sectionBody(t, wasm, 10)
	count, n := decodeULEB(t, code)
	require.EqualValues(t, 1, count)
	code = code[n:]
	size, n := decodeULEB(t, code)
	fn := code[n : n+int(size)]
	locals, n := decodeULEB(t, fn)
	require.EqualValues(t, 0, locals)
	return fn[n:]
}

// exportedMainIndex parses the export section and returns the function index
// behind the "main" export.
func exportedMainIndex(t *testing.T, wasm []byte) uint64 {
	t.Helper()
	exp := sectionBody(t, wasm, 7)
	count, n := decodeULEB(t, exp)
	require.EqualValues(t, 1, count)
	exp = exp[n:]
	nameLen, n := decodeULEB(t, exp)
	require.Equal(t, "main", string(exp[n:n+int(nameLen)]))
	exp = exp[n+int(nameLen):]
	require.Equal(t, byte(0x00), exp[0]) // func export
	idx, _ := decodeULEB(t, exp[1:])
	return idx
}

func TestGenerateModuleGolden(t *testing.T) {
	// The smallest program, byte for byte.
	want := []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
		0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f, // type: () -> i32
		0x03, 0x02, 0x01, 0x00, // function: one func, type 0
		0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00, // export "main"
		0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x2a, 0x0b, // code: i32.const 42; end
	}
	require.Equal(t, want, compileModule(t, "42"))
}

func TestGenerateModuleSectionOrder(t *testing.T) {
	require.Equal(t, []byte{1, 3, 7, 10}, sectionIDs(t, compileModule(t, "add 1 2")))
	// The import section appears only when a builtin is used.
	require.Equal(t, []byte{1, 2, 3, 7, 10}, sectionIDs(t, compileModule(t, "wasi_random")))
}

func TestGenerateModuleMainIndex(t *testing.T) {
	// Without imports main is function 0; each import shifts it up.
	require.EqualValues(t, 0, exportedMainIndex(t, compileModule(t, "42")))
	require.EqualValues(t, 1, exportedMainIndex(t, compileModule(t, "wasi_random")))
	require.EqualValues(t, 3, exportedMainIndex(t,
		compileModule(t, "add wasm_pagesize (wasi_print (wasi_random))")))
}

func TestGenerateModuleImportOrder(t *testing.T) {
	// Imports are sorted by name: wasi_print=0, wasi_random=1,
	// wasm_pagesize=2, independent of textual first use.
	body := mainBody(t, compileModule(t, "add wasm_pagesize (wasi_print (wasi_random))"))
	require.Equal(t, []byte{
		0x10, 0x02, // call wasm_pagesize
		0x10, 0x01, // call wasi_random
		0x10, 0x00, // call wasi_print
		0x6a, // i32.add
		0x0b, // end
	}, body)
}

func TestGenerateModuleImportSectionStable(t *testing.T) {
	a := compileModule(t, "add wasi_random wasm_pagesize")
	b := compileModule(t, "add wasm_pagesize wasi_random")
	require.Equal(t, sectionBody(t, a, 2), sectionBody(t, b, 2))
	require.Equal(t, sectionBody(t, a, 1), sectionBody(t, b, 1))
}

func TestGenerateModuleTypeDedupe(t *testing.T) {
	// Both builtins and main share the single () -> i32 signature.
	typeSec := sectionBody(t, compileModule(t, "add wasi_random wasm_pagesize"), 1)
	require.Equal(t, []byte{0x01, 0x60, 0x00, 0x01, 0x7f}, typeSec)

	// wasi_print adds the (i32) -> i32 signature ahead of it.
	typeSec = sectionBody(t, compileModule(t, "wasi_print (wasi_random)"), 1)
	require.Equal(t, []byte{
		0x02,
		0x60, 0x01, 0x7f, 0x01, 0x7f, // (i32) -> i32
		0x60, 0x00, 0x01, 0x7f, // () -> i32
	}, typeSec)
}

func TestGenerateModuleDirectOps(t *testing.T) {
	cases := []struct {
		src  string
		body []byte
	}{
		{"add 1 2", []byte{0x41, 0x01, 0x41, 0x02, 0x6a, 0x0b}},
		{"neg 1", []byte{0x41, 0x00, 0x41, 0x01, 0x6b, 0x0b}},
		{"not 0", []byte{0x41, 0x00, 0x45, 0x0b}},
		{"bit_not 5", []byte{0x41, 0x05, 0x41, 0x7f, 0x73, 0x0b}},
		{"bit_shr -8 1", []byte{0x41, 0x78, 0x41, 0x01, 0x76, 0x0b}},
		{"div 10 3", []byte{0x41, 0x0a, 0x41, 0x03, 0x6d, 0x0b}},
		{"lt 1 2", []byte{0x41, 0x01, 0x41, 0x02, 0x48, 0x0b}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.body, mainBody(t, compileModule(t, tc.src)), "source %q", tc.src)
	}
}

func TestGenerateModuleTruthyNormalization(t *testing.T) {
	// and normalizes both operands to 0/1 before i32.and.
	body := mainBody(t, compileModule(t, "and 2 3"))
	require.Equal(t, []byte{
		0x41, 0x02, 0x41, 0x00, 0x47, // 2 != 0
		0x41, 0x03, 0x41, 0x00, 0x47, // 3 != 0
		0x71, // i32.and
		0x0b,
	}, body)
}

func TestGenerateModuleConstantFolding(t *testing.T) {
	// Tier-2 operators fold to the same module as the literal result.
	require.Equal(t, compileModule(t, "3"), compileModule(t, `len concat "ha" "!"`))
	require.Equal(t, compileModule(t, "120"), compileModule(t, "factorial 5"))
	require.Equal(t, compileModule(t, "2"), compileModule(t, "len pop push [1 2] 3"))

	// A folded subtree under a direct op becomes one constant operand.
	body := mainBody(t, compileModule(t, "add (factorial 4) 1"))
	require.Equal(t, []byte{0x41, 0x18, 0x41, 0x01, 0x6a, 0x0b}, body)
}

func TestGenerateModuleNegativeConst(t *testing.T) {
	body := mainBody(t, compileModule(t, "-1"))
	require.Equal(t, []byte{0x41, 0x7f, 0x0b}, body)
	body = mainBody(t, compileModule(t, "-123456"))
	require.Equal(t, []byte{0x41, 0xc0, 0xbb, 0x78, 0x0b}, body)
}

func TestGenerateModuleRejectsNonNumericResult(t *testing.T) {
	expr := parseOK(t, `"hello"`)
	_, err := generateModule(expr, nil)
	require.ErrorContains(t, err, "no runtime representation")

	expr = parseOK(t, "[1 2]")
	_, err = generateModule(expr, nil)
	require.ErrorContains(t, err, "no runtime representation")
}

func TestLEB128Encoding(t *testing.T) {
	require.Equal(t, []byte{0x00}, encodeULEB128(0))
	require.Equal(t, []byte{0x7f}, encodeULEB128(127))
	require.Equal(t, []byte{0x80, 0x01}, encodeULEB128(128))
	require.Equal(t, []byte{0xe5, 0x8e, 0x26}, encodeULEB128(624485))

	require.Equal(t, []byte{0x00}, encodeSLEB128(0))
	require.Equal(t, []byte{0x3f}, encodeSLEB128(63))
	require.Equal(t, []byte{0xc0, 0x00}, encodeSLEB128(64))
	require.Equal(t, []byte{0x7f}, encodeSLEB128(-1))
	require.Equal(t, []byte{0x40}, encodeSLEB128(-64))
	require.Equal(t, []byte{0xc0, 0xbb, 0x78}, encodeSLEB128(-123456))
}
