// errors.go: the error taxonomy of the NEPL compiler.
//
// Every phase of the pipeline fails fast: a compile call returns either one
// artifact or exactly one of the typed errors below. There is no multi-error
// accumulation and no recovery state. Callers that need to branch on the
// failure class use errors.As against the concrete pointer types.
//
// The message text of MissingStdlibError, and of the division/modulo and
// unknown-operator semantic errors produced elsewhere, is part of the public
// contract: embedders pattern-match on those substrings.
package nepl

import "fmt"

// SourceError wraps an I/O failure while reading source or stdlib contents.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string { return fmt.Sprintf("failed to read source: %v", e.Err) }

func (e *SourceError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports an emit format the toolchain does not know.
// It is raised before any compilation work begins.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported emit format: %s", e.Format)
}

// MissingStdlibError reports that the standard library root does not exist.
type MissingStdlibError struct {
	Path string
}

func (e *MissingStdlibError) Error() string {
	return fmt.Sprintf("standard library directory was not found at %s", e.Path)
}

// LexError is a lexical failure at a byte offset into the source.
type LexError struct {
	Pos int
	Msg string
}

func (e *LexError) Error() string { return fmt.Sprintf("lex error at byte %d: %s", e.Pos, e.Msg) }

// ParseError is a structural failure: the token stream does not form one
// well-shaped expression.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse error: %s", e.Msg) }

// SemanticError covers everything the program means but may not do: unknown
// operators, type mismatches, arity violations, division by zero, overflow
// in checked operators, and invalid domains.
type SemanticError struct {
	Msg string
}

func (e *SemanticError) Error() string { return fmt.Sprintf("semantic error: %s", e.Msg) }

func semanticf(format string, args ...any) *SemanticError {
	return &SemanticError{Msg: fmt.Sprintf(format, args...)}
}
