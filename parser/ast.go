// Package parser builds an abstract syntax tree from a token stream
// produced by the lexer, using a recursive-descent parser with
// Pratt-style expression parsing.
package parser

import "github.com/wangzhaode/jinja2go/lexer"

// Stmt is any statement AST node.
type Stmt interface {
	stmtNode()
	Pos() lexer.Position
}

// Expr is any expression AST node.
type Expr interface {
	exprNode()
	Pos() lexer.Position
}

type base struct{ pos lexer.Position }

func (b base) Pos() lexer.Position { return b.pos }

// ---- Statements ----

// Text is a verbatim literal text run.
type Text struct {
	base
	Value string
}

// Output is `{{ expr }}`.
type Output struct {
	base
	Expr Expr
}

// IfBranch is one `if`/`elif` arm.
type IfBranch struct {
	Cond Expr
	Body []Stmt
}

// If is `{% if %}...{% elif %}...{% else %}...{% endif %}`.
type If struct {
	base
	Branches []IfBranch
	Else     []Stmt
}

// For is `{% for target in iter [if filter] %}...{% else %}...{% endfor %}`.
type For struct {
	base
	Targets []string
	Iter    Expr
	Filter  Expr // optional
	Body    []Stmt
	Else    []Stmt
}

// Set is `{% set name = expr %}` (Body nil) or the block form
// `{% set name %}...{% endset %}` (Expr nil, Body set). When Attr is
// non-empty, this is the `{% set name.attr = expr %}` form used to
// write into a namespace() object without shadowing name in the
// current scope (the standard Jinja2 loop-scoped-write escape hatch).
type Set struct {
	base
	Targets []string
	Attr    string
	Expr    Expr
	Body    []Stmt
}

// MacroParam is one macro parameter, with an optional default.
type MacroParam struct {
	Name    string
	Default Expr // nil if required
}

// MacroDef is `{% macro name(params) %}...{% endmacro %}`.
type MacroDef struct {
	base
	Name   string
	Params []MacroParam
	Body   []Stmt
}

// Arg is a keyword argument in a call.
type Arg struct {
	Name  string
	Value Expr
}

// MacroCall is `{% call name(args) %}...{% endcall %}`, which exposes
// `caller()` inside the macro body.
type MacroCall struct {
	base
	Callee    Expr
	Args      []Expr
	Kwargs    []Arg
	CallerBody []Stmt // nil if this is not a {% call %} block
}

// Raw is the literal body of a `{% raw %}...{% endraw %}` block.
type Raw struct {
	base
	Value string
}

// Block is a sequence of statements treated as one node. The parser
// does not produce it (loop/if/macro bodies are plain []Stmt), and the
// interpreter does not execute it.
type Block struct {
	base
	Stmts []Stmt
}

func (*Text) stmtNode()      {}
func (*Output) stmtNode()    {}
func (*If) stmtNode()        {}
func (*For) stmtNode()       {}
func (*Set) stmtNode()       {}
func (*MacroDef) stmtNode()  {}
func (*MacroCall) stmtNode() {}
func (*Raw) stmtNode()       {}
func (*Block) stmtNode()     {}

// ---- Expressions ----

// NullLit is the `none`/`None` literal.
type NullLit struct{ base }

// BoolLit is `true`/`True`/`false`/`False`.
type BoolLit struct {
	base
	Value bool
}

// IntLit is an integer literal.
type IntLit struct {
	base
	Value int64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	base
	Value float64
}

// StrLit is a string literal.
type StrLit struct {
	base
	Value string
}

// Name is an identifier reference.
type Name struct {
	base
	Ident string
}

// GetAttr is `obj.field`.
type GetAttr struct {
	base
	Obj   Expr
	Field string
}

// GetItem is `obj[key]`.
type GetItem struct {
	base
	Obj Expr
	Key Expr
}

// Slice is `obj[start:stop:step]`.
type Slice struct {
	base
	Obj          Expr
	Start, Stop, Step Expr // any may be nil
}

// Unary is a unary operator expression (`-x`, `+x`, `not x`).
type Unary struct {
	base
	Op string
	X  Expr
}

// Binary is a binary operator expression.
type Binary struct {
	base
	Op   string
	Left, Right Expr
}

// Ternary is `x if cond else y`.
type Ternary struct {
	base
	Cond, Then, Else Expr
}

// Call is `callee(args, kwargs)`.
type Call struct {
	base
	Callee Expr
	Args   []Expr
	Kwargs []Arg
}

// Filter is one `| name(args)` pipeline stage.
type Filter struct {
	base
	Input  Expr
	Name   string
	Args   []Expr
	Kwargs []Arg
}

// Test is `expr is [not] name(args)`.
type Test struct {
	base
	Input    Expr
	Name     string
	Args     []Expr
	Negated  bool
}

// ListLit is a `[a, b, c]` literal.
type ListLit struct {
	base
	Items []Expr
}

// TupleLit is a `(a, b, c)` literal.
type TupleLit struct {
	base
	Items []Expr
}

// DictLit is a `{k: v, ...}` literal.
type DictLit struct {
	base
	Keys   []Expr
	Values []Expr
}

func (*NullLit) exprNode()  {}
func (*BoolLit) exprNode()  {}
func (*IntLit) exprNode()   {}
func (*FloatLit) exprNode() {}
func (*StrLit) exprNode()   {}
func (*Name) exprNode()     {}
func (*GetAttr) exprNode()  {}
func (*GetItem) exprNode()  {}
func (*Slice) exprNode()    {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*Ternary) exprNode()  {}
func (*Call) exprNode()     {}
func (*Filter) exprNode()   {}
func (*Test) exprNode()     {}
func (*ListLit) exprNode()  {}
func (*TupleLit) exprNode() {}
func (*DictLit) exprNode()  {}
