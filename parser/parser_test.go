package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlainText(t *testing.T) {
	stmts, err := Parse("hello")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	text, ok := stmts[0].(*Text)
	require.True(t, ok)
	assert.Equal(t, "hello", text.Value)
}

func TestParseOutputExpr(t *testing.T) {
	stmts, err := Parse("{{ name }}")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	out, ok := stmts[0].(*Output)
	require.True(t, ok)
	name, ok := out.Expr.(*Name)
	require.True(t, ok)
	assert.Equal(t, "name", name.Ident)
}

func TestArithmeticPrecedence(t *testing.T) {
	// a + b * c should parse as a + (b * c)
	stmts, err := Parse("{{ a + b * c }}")
	require.NoError(t, err)
	out := stmts[0].(*Output)
	bin, ok := out.Expr.(*Binary)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	rhs, ok := bin.Right.(*Binary)
	require.True(t, ok)
	assert.Equal(t, "*", rhs.Op)
}

func TestFilterBindsTighterThanArithmetic(t *testing.T) {
	// x + 1 | string parses as x + (1 | string)
	stmts, err := Parse("{{ x + 1 | string }}")
	require.NoError(t, err)
	out := stmts[0].(*Output)
	bin, ok := out.Expr.(*Binary)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	filt, ok := bin.Right.(*Filter)
	require.True(t, ok)
	assert.Equal(t, "string", filt.Name)
	lit, ok := filt.Input.(*IntLit)
	require.True(t, ok)
	assert.Equal(t, int64(1), lit.Value)
}

func TestPowRightAssociative(t *testing.T) {
	stmts, err := Parse("{{ 2 ** 3 ** 2 }}")
	require.NoError(t, err)
	out := stmts[0].(*Output)
	bin := out.Expr.(*Binary)
	assert.Equal(t, "**", bin.Op)
	assert.Equal(t, int64(2), bin.Left.(*IntLit).Value)
	rhs := bin.Right.(*Binary)
	assert.Equal(t, "**", rhs.Op)
	assert.Equal(t, int64(3), rhs.Left.(*IntLit).Value)
	assert.Equal(t, int64(2), rhs.Right.(*IntLit).Value)
}

func TestTernary(t *testing.T) {
	stmts, err := Parse("{{ 'a' if cond else 'b' }}")
	require.NoError(t, err)
	out := stmts[0].(*Output)
	tern, ok := out.Expr.(*Ternary)
	require.True(t, ok)
	assert.Equal(t, "a", tern.Then.(*StrLit).Value)
	assert.Equal(t, "cond", tern.Cond.(*Name).Ident)
	assert.Equal(t, "b", tern.Else.(*StrLit).Value)
}

func TestIfElifElse(t *testing.T) {
	stmts, err := Parse("{% if a %}A{% elif b %}B{% else %}C{% endif %}")
	require.NoError(t, err)
	ifNode, ok := stmts[0].(*If)
	require.True(t, ok)
	require.Len(t, ifNode.Branches, 2)
	require.Len(t, ifNode.Else, 1)
	assert.Equal(t, "A", ifNode.Branches[0].Body[0].(*Text).Value)
	assert.Equal(t, "B", ifNode.Branches[1].Body[0].(*Text).Value)
	assert.Equal(t, "C", ifNode.Else[0].(*Text).Value)
}

func TestForWithFilterAndElse(t *testing.T) {
	stmts, err := Parse("{% for x in xs if x %}{{ x }}{% else %}none{% endfor %}")
	require.NoError(t, err)
	forNode, ok := stmts[0].(*For)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, forNode.Targets)
	require.NotNil(t, forNode.Filter)
	require.Len(t, forNode.Else, 1)
}

func TestSetInlineAndBlockForm(t *testing.T) {
	stmts, err := Parse("{% set x = 1 %}{% set y %}body{% endset %}")
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	s1 := stmts[0].(*Set)
	assert.Equal(t, []string{"x"}, s1.Targets)
	require.NotNil(t, s1.Expr)

	s2 := stmts[1].(*Set)
	assert.Equal(t, []string{"y"}, s2.Targets)
	require.Len(t, s2.Body, 1)
	assert.Equal(t, "body", s2.Body[0].(*Text).Value)
}

func TestSetNamespaceAttr(t *testing.T) {
	stmts, err := Parse("{% set ns.count = ns.count + 1 %}")
	require.NoError(t, err)
	s, ok := stmts[0].(*Set)
	require.True(t, ok)
	assert.Equal(t, []string{"ns"}, s.Targets)
	assert.Equal(t, "count", s.Attr)
	require.NotNil(t, s.Expr)
}

func TestMacroDefWithDefaults(t *testing.T) {
	stmts, err := Parse("{% macro greet(name, greeting='Hi') %}{{ greeting }} {{ name }}{% endmacro %}")
	require.NoError(t, err)
	m, ok := stmts[0].(*MacroDef)
	require.True(t, ok)
	assert.Equal(t, "greet", m.Name)
	require.Len(t, m.Params, 2)
	assert.Equal(t, "name", m.Params[0].Name)
	assert.Nil(t, m.Params[0].Default)
	assert.Equal(t, "greeting", m.Params[1].Name)
	require.NotNil(t, m.Params[1].Default)
}

func TestCallBlockExposesCallerBody(t *testing.T) {
	stmts, err := Parse("{% call wrap() %}inner{% endcall %}")
	require.NoError(t, err)
	c, ok := stmts[0].(*MacroCall)
	require.True(t, ok)
	require.NotNil(t, c.CallerBody)
	assert.Equal(t, "inner", c.CallerBody[0].(*Text).Value)
}

func TestSliceAndIndex(t *testing.T) {
	stmts, err := Parse("{{ xs[1:3] }}{{ xs[0] }}")
	require.NoError(t, err)
	sl, ok := stmts[0].(*Output).Expr.(*Slice)
	require.True(t, ok)
	require.NotNil(t, sl.Start)
	require.NotNil(t, sl.Stop)

	idx, ok := stmts[1].(*Output).Expr.(*GetItem)
	require.True(t, ok)
	assert.Equal(t, int64(0), idx.Key.(*IntLit).Value)
}

func TestIsTestWithoutParens(t *testing.T) {
	stmts, err := Parse("{{ x is divisibleby 3 }}")
	require.NoError(t, err)
	test, ok := stmts[0].(*Output).Expr.(*Test)
	require.True(t, ok)
	assert.Equal(t, "divisibleby", test.Name)
	require.Len(t, test.Args, 1)
	assert.False(t, test.Negated)
}

func TestIsNotTest(t *testing.T) {
	stmts, err := Parse("{{ x is not none }}")
	require.NoError(t, err)
	test, ok := stmts[0].(*Output).Expr.(*Test)
	require.True(t, ok)
	assert.Equal(t, "none", test.Name)
	assert.True(t, test.Negated)
}

func TestAdjacentStringConcat(t *testing.T) {
	stmts, err := Parse(`{{ "a" "b" }}`)
	require.NoError(t, err)
	lit, ok := stmts[0].(*Output).Expr.(*StrLit)
	require.True(t, ok)
	assert.Equal(t, "ab", lit.Value)
}

func TestListAndDictLiterals(t *testing.T) {
	stmts, err := Parse(`{% set m = [1, 2, {role: "user"}] %}`)
	require.NoError(t, err)
	s := stmts[0].(*Set)
	list, ok := s.Expr.(*ListLit)
	require.True(t, ok)
	require.Len(t, list.Items, 3)
	dict, ok := list.Items[2].(*DictLit)
	require.True(t, ok)
	assert.Equal(t, "role", dict.Keys[0].(*StrLit).Value)
	assert.Equal(t, "user", dict.Values[0].(*StrLit).Value)
}

func TestRawTagUnparsed(t *testing.T) {
	stmts, err := Parse("{% raw %}{{ leave me alone }}{% endraw %}")
	require.NoError(t, err)
	raw, ok := stmts[0].(*Raw)
	require.True(t, ok)
	assert.Equal(t, "{{ leave me alone }}", raw.Value)
}

func TestSyntaxErrorHasPosition(t *testing.T) {
	_, err := Parse("{% if x %}body")
	require.Error(t, err)
	se, ok := err.(*SyntaxError)
	require.True(t, ok)
	assert.GreaterOrEqual(t, se.Pos.Line, 1)
}

func TestTupleUnpackTargets(t *testing.T) {
	stmts, err := Parse("{% for k, v in items %}{{ k }}={{ v }}{% endfor %}")
	require.NoError(t, err)
	forNode := stmts[0].(*For)
	assert.Equal(t, []string{"k", "v"}, forNode.Targets)
}
