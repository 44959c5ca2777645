package jinja2go

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wangzhaode/jinja2go/lexer"
	"github.com/wangzhaode/jinja2go/value"
)

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "SyntaxError", SyntaxErrorKind.String())
	assert.Equal(t, "RuntimeError", RuntimeErrorKind.String())
}

func TestErrorWrapUnwrap(t *testing.T) {
	cause := errors.New("division by zero")
	pos := lexer.Position{Line: 2, Column: 5, Offset: 10}
	err := NewRuntimeError(pos, "eval failed").Wrap(cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "RuntimeError")
	assert.Contains(t, err.Error(), "line 2")
}

func TestRenderErrorIsRuntimeKind(t *testing.T) {
	tmpl, err := NewTemplate("{{ 1 / 0 }}", value.None())
	assert := assert.New(t)
	assert.NoError(err)

	_, rerr := tmpl.Render(value.None())
	assert.Error(rerr)
	jerr, ok := rerr.(*Error)
	assert.True(ok)
	assert.Equal(RuntimeErrorKind, jerr.Kind)
}
