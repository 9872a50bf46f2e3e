package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	nepl "github.com/neknaj/NEPLg1"
)

// recordingHandler scripts host values and records every print.
type recordingHandler struct {
	pagesize int32
	random   int32
	printed  []int32
}

func (h *recordingHandler) WasmPagesize() int32 { return h.pagesize }
func (h *recordingHandler) WasiRandom() int32   { return h.random }
func (h *recordingHandler) WasiPrint(value int32) int32 {
	h.printed = append(h.printed, value)
	return value
}

func compileForRun(t *testing.T, source string) *nepl.CompilationArtifact {
	t.Helper()
	art, err := nepl.CompileWASM(source, t.TempDir())
	require.NoError(t, err)
	return art
}

func runProgram(t *testing.T, source string, handler BuiltinHandler) int32 {
	t.Helper()
	result, err := runArtifact(compileForRun(t, source), handler)
	require.NoError(t, err)
	return result
}

func TestRunArithmetic(t *testing.T) {
	require.Equal(t, int32(3), runProgram(t, "add 1 2", defaultHandler{}))
	require.Equal(t, int32(3), runProgram(t, "div 10 3", defaultHandler{}))
	require.Equal(t, int32(-5), runProgram(t, "neg 5", defaultHandler{}))
}

func TestRunPipeChain(t *testing.T) {
	require.Equal(t, int32(1), runProgram(t, "1 > neg > add 2", defaultHandler{}))
}

func TestRunFoldedCollections(t *testing.T) {
	// Strings and vectors disappear at compile time; the module just
	// returns the folded constant.
	require.Equal(t, int32(5), runProgram(t, `add (len "abc") (len [1 2])`, defaultHandler{}))
}

func TestRunLogicalShift(t *testing.T) {
	require.Equal(t, int32(2147483644), runProgram(t, "bit_shr -8 1", defaultHandler{}))
}

func TestRunHostRandomThroughPrint(t *testing.T) {
	h := &recordingHandler{random: 123}
	require.Equal(t, int32(123), runProgram(t, "wasi_print (wasi_random)", h))
	require.Equal(t, []int32{123}, h.printed)
}

func TestRunHostValuesNotStandIns(t *testing.T) {
	// The runtime result follows the handler, not the compile-time
	// stand-in constants.
	h := &recordingHandler{pagesize: 2048, random: 7}
	result := runProgram(t, "add wasm_pagesize (wasi_print (wasi_random))", h)
	require.Equal(t, int32(2055), result)
	require.Equal(t, []int32{7}, h.printed)
}

func TestRunPrintFanOut(t *testing.T) {
	h := &recordingHandler{}
	result := runProgram(t, "add (wasi_print 10) (wasi_print 20)", h)
	require.Equal(t, int32(30), result)
	require.Equal(t, []int32{10, 20}, h.printed)
}

func TestRunWrappingArithmetic(t *testing.T) {
	require.Equal(t, int32(-2147483648), runProgram(t, "add 2147483647 1", defaultHandler{}))
}
