// Package jinja2go is an embeddable Jinja2-style template engine for
// rendering chat histories into model-ready prompt strings.
//
// A template is compiled once with Compile (or NewTemplate) and
// rendered any number of times, concurrently, against different
// contexts:
//
//	tmpl, err := jinja2go.Compile(source, value.None())
//	out, err := tmpl.Render(value.FromInterface(map[string]interface{}{
//		"name": "Ada",
//	}))
//
// The engine implements a deliberately small subset of Jinja2: a
// lexer, a recursive-descent parser, and a tree-walking interpreter
// over a dynamically-typed value model (package value). Template
// inheritance, includes, imports, auto-escaping, sandboxing, and
// custom syntax delimiters are not implemented.
package jinja2go
