// parser.go: arity-driven recursive descent for NEPL.
//
// NEPL has no operator precedence: juxtaposition is the call syntax. An
// identifier is resolved against the combined arity table (operators plus
// the builtin registry) the moment it is seen, and a call consumes exactly
// that many argument expressions. Unknown identifiers are semantic errors
// at parse time; there is no forward reference or later rebinding.
//
// The only infix form is the pipe. `lhs > f a b` desugars to f(lhs, a, b):
// the operator after `>` is parsed as a partial call that consumes arity-1
// further arguments, with lhs prepended. Chains are left-associative, so
// `a > f > g` is g(f(a)). To keep that associativity, the trailing
// arguments of a pipe target never cross a `>` themselves; a chain can
// always be parenthesized where another grouping is wanted.
package nepl

import "fmt"

// operatorArity maps every non-builtin operator to its fixed arity. The
// table is package-level immutable data; builtins contribute theirs via the
// registry.
var operatorArity = map[string]int{
	// arithmetic
	"add": 2, "sub": 2, "mul": 2, "div": 2, "mod": 2, "pow": 2,
	"neg": 1,

	// logic on truthiness
	"and": 2, "or": 2, "xor": 2, "not": 1,

	// numeric comparisons
	"lt": 2, "le": 2, "eq": 2, "ne": 2, "gt": 2, "ge": 2,

	// bitwise
	"bit_and": 2, "bit_or": 2, "bit_xor": 2, "bit_not": 1,
	"bit_shl": 2, "bit_shr": 2,

	// math / combinatorics
	"gcd": 2, "lcm": 2, "factorial": 1, "permutation": 2, "combination": 2,

	// strings and vectors
	"len": 1, "concat": 2, "get": 2, "push": 2, "pop": 1,
}

// arityOf resolves a name against operators and builtins.
func arityOf(name string) (int, bool) {
	if n, ok := operatorArity[name]; ok {
		return n, true
	}
	if b := LookupBuiltin(name); b != nil {
		return b.Arity(), true
	}
	return 0, false
}

// Parse tokenizes and parses a complete NEPL program into one expression.
func Parse(source string) (Expr, error) {
	toks, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, &ParseError{Msg: "unexpected trailing input"}
	}
	return expr, nil
}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() (Token, bool) {
	if p.atEnd() {
		return Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

// parseExpr parses one pipe-expression: an operand followed by any number
// of `> operator args...` segments, folded left.
func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.Type != PIPE {
			return left, nil
		}
		p.pos++
		left, err = p.parsePipeTarget(left)
		if err != nil {
			return nil, err
		}
	}
}

// parsePipeTarget parses the partial call after a `>` and prepends lhs.
func (p *parser) parsePipeTarget(lhs Expr) (Expr, error) {
	tok, ok := p.next()
	if !ok || tok.Type != IDENT {
		return nil, &SemanticError{Msg: "cannot pipe into a non-call expression"}
	}
	name := tok.Lexeme
	arity, known := arityOf(name)
	if !known {
		return nil, semanticf("unknown operator '%s'", name)
	}
	if arity == 0 {
		return nil, semanticf("cannot pipe into zero-arity operator '%s'", name)
	}
	args := make([]Expr, 0, arity)
	args = append(args, lhs)
	for i := 1; i < arity; i++ {
		// Operand level: the chain's next `>` belongs to the pipe fold.
		arg, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &CallExpr{Name: name, Args: args}, nil
}

// parseOperand parses a literal, a group, a vector, or a full call.
func (p *parser) parseOperand() (Expr, error) {
	tok, ok := p.next()
	if !ok {
		return nil, &ParseError{Msg: "unexpected end of input"}
	}

	switch tok.Type {
	case INT:
		return &NumberExpr{Value: tok.Int}, nil

	case STRING:
		return &StringExpr{Value: tok.Str}, nil

	case LROUND:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.next()
		if !ok || closing.Type != RROUND {
			return nil, &ParseError{Msg: "expected ')'"}
		}
		return expr, nil

	case LSQUARE:
		var elems []Expr
		for {
			peeked, ok := p.peek()
			if !ok {
				return nil, &ParseError{Msg: "expected ']'"}
			}
			if peeked.Type == RSQUARE {
				p.pos++
				return &VectorExpr{Elems: elems}, nil
			}
			el, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
		}

	case IDENT:
		name := tok.Lexeme
		arity, known := arityOf(name)
		if !known {
			return nil, semanticf("unknown operator '%s'", name)
		}
		args := make([]Expr, 0, arity)
		for i := 0; i < arity; i++ {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return &CallExpr{Name: name, Args: args}, nil

	case RROUND:
		return nil, &ParseError{Msg: "unexpected ')'"}

	case RSQUARE:
		return nil, &ParseError{Msg: "unexpected ']'"}

	case PIPE:
		return nil, &ParseError{Msg: "unexpected '>' with no left-hand side"}

	default:
		return nil, &ParseError{Msg: fmt.Sprintf("unexpected token %q", tok.Lexeme)}
	}
}
