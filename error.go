package jinja2go

import (
	"fmt"

	"github.com/wangzhaode/jinja2go/lexer"
)

// ErrorKind discriminates between the two error kinds this engine
// raises.
type ErrorKind int

const (
	// SyntaxErrorKind is raised during compilation.
	SyntaxErrorKind ErrorKind = iota
	// RuntimeErrorKind is raised during rendering.
	RuntimeErrorKind
)

func (k ErrorKind) String() string {
	if k == SyntaxErrorKind {
		return "SyntaxError"
	}
	return "RuntimeError"
}

// Error is the single error type this engine raises, carrying the
// source position (line, column, byte offset) the failure occurred
// at.
type Error struct {
	Kind     ErrorKind
	Message  string
	Position lexer.Position
	wrapped  error
}

// NewSyntaxError builds a compile-time Error at pos.
func NewSyntaxError(pos lexer.Position, msg string) *Error {
	return &Error{Kind: SyntaxErrorKind, Message: msg, Position: pos}
}

// NewRuntimeError builds a render-time Error at pos.
func NewRuntimeError(pos lexer.Position, msg string) *Error {
	return &Error{Kind: RuntimeErrorKind, Message: msg, Position: pos}
}

// Wrap attaches an underlying cause, retrievable via errors.Unwrap.
func (e *Error) Wrap(cause error) *Error {
	e.wrapped = cause
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (line %d, column %d, offset %d)",
		e.Kind, e.Message, e.Position.Line, e.Position.Column, e.Position.Offset)
}

// Unwrap supports errors.Is/errors.As against the underlying cause.
func (e *Error) Unwrap() error { return e.wrapped }
