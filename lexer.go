// lexer.go: the NEPL tokenizer.
//
// The scanner is a single left-to-right pass with one byte of lookahead and
// no backtracking. It recognizes:
//
//   - identifiers        [A-Za-z_][A-Za-z0-9_]*
//   - integer literals   -?[0-9]+  (checked to fit in 32 bits)
//   - string literals    "..." with backslash escapes; an escape consumes
//     exactly the next byte verbatim, so \" is a quote and \x is the letter x
//   - punctuation        ( ) [ ] and the pipe character >
//
// Whitespace is insignificant and never produces a token. Any failure is a
// *LexError carrying the byte offset of the offending token start.
package nepl

import "strconv"

// TokenType represents the kind of token.
type TokenType int

const (
	IDENT TokenType = iota
	INT
	STRING

	LROUND  // "("
	RROUND  // ")"
	LSQUARE // "["
	RSQUARE // "]"
	PIPE    // ">"
)

// Token is a lexical token with its decoded literal value.
type Token struct {
	Type   TokenType
	Lexeme string // raw text slice
	Int    int32  // decoded value for INT
	Str    string // decoded value for STRING
	Pos    int    // byte offset of the token start
}

// Lexer scans a NEPL source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of the current token
	cur    int // current index
	tokens []Token
}

// NewLexer creates a lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Tokenize scans the entire source and returns its tokens. The end of input
// is the end of the slice; there is no sentinel token.
func Tokenize(src string) ([]Token, error) {
	return NewLexer(src).Scan()
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	return ch, true
}

func (l *Lexer) addToken(tok Token) {
	tok.Lexeme = l.src[l.start:l.cur]
	tok.Pos = l.start
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.src[l.cur] {
		case ' ', '\t', '\r', '\n':
			l.cur++
			l.start = l.cur
		default:
			return
		}
	}
}

func (l *Lexer) err(msg string) error {
	return &LexError{Pos: l.start, Msg: msg}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

// ----- scanners -----

// scanString decodes a double-quoted literal. The opening quote has already
// been consumed. A backslash takes the next byte verbatim.
func (l *Lexer) scanString() (string, error) {
	var out []byte
	for {
		ch, ok := l.advance()
		if !ok {
			return "", l.err("string literal was not terminated")
		}
		switch ch {
		case '"':
			return string(out), nil
		case '\\':
			esc, ok := l.advance()
			if !ok {
				return "", l.err("string literal was not terminated")
			}
			out = append(out, esc)
		default:
			out = append(out, ch)
		}
	}
}

// scanInteger parses the digits of -?[0-9]+; the sign (if any) and the first
// digit have already been consumed.
func (l *Lexer) scanInteger() (int32, error) {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	v, convErr := strconv.ParseInt(l.src[l.start:l.cur], 10, 32)
	if convErr != nil {
		return 0, l.err("integer literal does not fit in 32 bits")
	}
	return int32(v), nil
}

func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// ----- main scanner -----

func (l *Lexer) scanToken() (bool, error) {
	l.skipWhitespace()
	if l.isAtEnd() {
		return false, nil
	}

	ch, _ := l.advance()
	switch ch {
	case '(':
		l.addToken(Token{Type: LROUND})
		return true, nil
	case ')':
		l.addToken(Token{Type: RROUND})
		return true, nil
	case '[':
		l.addToken(Token{Type: LSQUARE})
		return true, nil
	case ']':
		l.addToken(Token{Type: RSQUARE})
		return true, nil
	case '>':
		l.addToken(Token{Type: PIPE})
		return true, nil
	case '"':
		text, err := l.scanString()
		if err != nil {
			return false, err
		}
		l.addToken(Token{Type: STRING, Str: text})
		return true, nil
	case '-':
		if b, ok := l.peek(); !ok || !isDigit(b) {
			return false, l.err("unexpected character '-'")
		}
		l.advance()
		v, err := l.scanInteger()
		if err != nil {
			return false, err
		}
		l.addToken(Token{Type: INT, Int: v})
		return true, nil
	}

	if isDigit(ch) {
		v, err := l.scanInteger()
		if err != nil {
			return false, err
		}
		l.addToken(Token{Type: INT, Int: v})
		return true, nil
	}

	if isAlpha(ch) {
		l.scanIdentifier()
		l.addToken(Token{Type: IDENT})
		return true, nil
	}

	return false, l.err("unexpected character " + strconv.QuoteRune(rune(ch)))
}

// Scan tokenizes the whole source.
func (l *Lexer) Scan() ([]Token, error) {
	for {
		more, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if !more {
			return l.tokens, nil
		}
	}
}
