// ast.go: the NEPL expression tree.
//
// Expr is a closed sum: literals (number, string, vector) and operator
// calls. There are no user-defined calls, so a CallExpr always names an
// entry of the static arity table and carries exactly that many arguments;
// the parser enforces the invariant at construction time.
package nepl

// Expr is a node of the expression tree.
type Expr interface {
	isExpr()
}

// NumberExpr is a 32-bit integer literal.
type NumberExpr struct {
	Value int32
}

// StringExpr is a string literal.
type StringExpr struct {
	Value string
}

// VectorExpr is a bracketed literal of zero or more elements.
type VectorExpr struct {
	Elems []Expr
}

// CallExpr applies a named operator or builtin to its arguments.
type CallExpr struct {
	Name string
	Args []Expr
}

func (*NumberExpr) isExpr() {}
func (*StringExpr) isExpr() {}
func (*VectorExpr) isExpr() {}
func (*CallExpr) isExpr()   {}
