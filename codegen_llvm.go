// codegen_llvm.go: the textual-IR backend.
//
// This backend has no instruction-level lowering: it evaluates the whole
// program to one integer and emits a function body returning that literal.
// It exists as a degenerate "compile by fully constant-folding" placeholder
// and inherits whatever error the parser or evaluator produced when the
// program cannot be reduced to a single constant.
package nepl

import (
	"fmt"
	"strings"
)

func generateLLVMIR(expr Expr, stdlibFileCount int) (string, error) {
	v, err := Evaluate(expr)
	if err != nil {
		return "", err
	}
	if v.Tag != VTNumber {
		return "", semanticf("program reduces to a %s, not an i32", tagName(v.Tag))
	}

	var b strings.Builder
	b.WriteString("; ModuleID = 'nepl'\n")
	fmt.Fprintf(&b, "; stdlib files loaded: %d\n", stdlibFileCount)
	b.WriteString("\n")
	b.WriteString("define i32 @main() {\n")
	b.WriteString("entry:\n")
	fmt.Fprintf(&b, "  ret i32 %d\n", v.AsNumber())
	b.WriteString("}\n")
	return b.String(), nil
}
