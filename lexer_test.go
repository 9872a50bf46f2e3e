package nepl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func lexOK(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := Tokenize(src)
	require.NoError(t, err)
	return toks
}

func lexErr(t *testing.T, src string) *LexError {
	t.Helper()
	_, err := Tokenize(src)
	require.Error(t, err)
	var le *LexError
	require.True(t, errors.As(err, &le), "want *LexError, got %T: %v", err, err)
	return le
}

func tokenTypes(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestTokenizeBasics(t *testing.T) {
	toks := lexOK(t, `add 1 -2 "hi" ( ) [ ] >`)
	require.Equal(t,
		[]TokenType{IDENT, INT, INT, STRING, LROUND, RROUND, LSQUARE, RSQUARE, PIPE},
		tokenTypes(toks))
	require.Equal(t, "add", toks[0].Lexeme)
	require.Equal(t, int32(1), toks[1].Int)
	require.Equal(t, int32(-2), toks[2].Int)
	require.Equal(t, "hi", toks[3].Str)
}

func TestTokenizeOffsets(t *testing.T) {
	toks := lexOK(t, "add  12 x")
	require.Equal(t, 0, toks[0].Pos)
	require.Equal(t, 5, toks[1].Pos)
	require.Equal(t, 8, toks[2].Pos)
}

func TestTokenizeWhitespaceInsignificant(t *testing.T) {
	require.Empty(t, lexOK(t, " \t\r\n "))
	packed := lexOK(t, "add(1)[2]>3")
	require.Equal(t,
		[]TokenType{IDENT, LROUND, INT, RROUND, LSQUARE, INT, RSQUARE, PIPE, INT},
		tokenTypes(packed))
}

func TestTokenizeIdentifiers(t *testing.T) {
	toks := lexOK(t, "_x abc_42 Bit_Shr")
	require.Equal(t, []TokenType{IDENT, IDENT, IDENT}, tokenTypes(toks))
	require.Equal(t, "_x", toks[0].Lexeme)
	require.Equal(t, "abc_42", toks[1].Lexeme)
}

func TestTokenizeStringEscapes(t *testing.T) {
	// An escape takes the next byte verbatim: \" is a quote, \n is the
	// letter n, \\ is one backslash.
	toks := lexOK(t, `"a\"b" "x\\y" "\n" ""`)
	require.Equal(t, `a"b`, toks[0].Str)
	require.Equal(t, `x\y`, toks[1].Str)
	require.Equal(t, "n", toks[2].Str)
	require.Equal(t, "", toks[3].Str)
}

func TestTokenizeIntegerBounds(t *testing.T) {
	toks := lexOK(t, "2147483647 -2147483648")
	require.Equal(t, int32(2147483647), toks[0].Int)
	require.Equal(t, int32(-2147483648), toks[1].Int)

	le := lexErr(t, "2147483648")
	require.Contains(t, le.Msg, "32 bits")
	le = lexErr(t, "add -2147483649")
	require.Equal(t, 4, le.Pos)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	le := lexErr(t, `add "abc`)
	require.Equal(t, 4, le.Pos)
	require.Contains(t, le.Msg, "not terminated")

	// A trailing backslash leaves the escape open too.
	le = lexErr(t, `"abc\`)
	require.Contains(t, le.Msg, "not terminated")
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	le := lexErr(t, "add $ 1")
	require.Equal(t, 4, le.Pos)

	le = lexErr(t, "add - 1")
	require.Contains(t, le.Msg, "'-'")
}
