package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, src string) []Token {
	l := New(src)
	var out []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		out = append(out, tok)
		if tok.Kind == KindEOF {
			return out
		}
	}
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexPlainText(t *testing.T) {
	toks := tokenize(t, "hello world")
	require.Len(t, toks, 2)
	assert.Equal(t, KindText, toks[0].Kind)
	assert.Equal(t, "hello world", toks[0].Text)
	assert.Equal(t, KindEOF, toks[1].Kind)
}

func TestLexExpression(t *testing.T) {
	toks := tokenize(t, "Hi {{ name }}!")
	assert.Equal(t, []Kind{KindText, KindExprStart, KindName, KindExprEnd, KindText, KindEOF}, kinds(toks))
	assert.Equal(t, "name", toks[2].Text)
}

func TestLexStatementAndKeywords(t *testing.T) {
	toks := tokenize(t, "{% if x %}y{% endif %}")
	assert.Equal(t, []Kind{
		KindStmtStart, KindName, KindName, KindStmtEnd,
		KindText,
		KindStmtStart, KindName, KindStmtEnd,
		KindEOF,
	}, kinds(toks))
	assert.True(t, IsKeyword("if"))
	assert.True(t, IsKeyword("endif"))
	assert.False(t, IsKeyword("block")) // non-goal keyword, must not be reserved
}

func TestLexComment(t *testing.T) {
	toks := tokenize(t, "a{# comment #}b")
	require.Len(t, toks, 3)
	assert.Equal(t, "a", toks[0].Text)
	assert.Equal(t, "b", toks[1].Text)
}

func TestWhitespaceTrimMarkers(t *testing.T) {
	toks := tokenize(t, "x\n  {%- if y -%}\n  z\n  {%- endif -%}\n  w")
	var texts []string
	for _, tok := range toks {
		if tok.Kind == KindText {
			texts = append(texts, tok.Text)
		}
	}
	// "x\n  " has its trailing whitespace trimmed by the "-" on {%-
	assert.Equal(t, "x", texts[0])
	// leading "\n  " before z and trailing "\n  " before endif both trimmed
	assert.Equal(t, "z", texts[1])
	assert.Equal(t, "w", texts[2])
}

func TestTrimMarkerRemovesAtMostOneNewline(t *testing.T) {
	toks := tokenize(t, "{%- if true -%}\n\nkept{% endif %}")
	var text string
	for _, tok := range toks {
		if tok.Kind == KindText {
			text = tok.Text
			break
		}
	}
	assert.Equal(t, "\nkept", text)
}

func TestLexStringEscapes(t *testing.T) {
	toks := tokenize(t, `{{ "a\nb\tA" }}`)
	require.True(t, len(toks) > 2)
	assert.Equal(t, KindString, toks[1].Kind)
	assert.Equal(t, "a\nb\tA", toks[1].Text)
}

func TestLexNumbers(t *testing.T) {
	toks := tokenize(t, "{{ 42 3.5 1e3 }}")
	assert.Equal(t, KindInt, toks[1].Kind)
	assert.Equal(t, int64(42), toks[1].Int)
	assert.Equal(t, KindFloat, toks[2].Kind)
	assert.Equal(t, 3.5, toks[2].Float)
	assert.Equal(t, KindFloat, toks[3].Kind)
	assert.Equal(t, 1000.0, toks[3].Float)
}

func TestLexMultiCharPunct(t *testing.T) {
	toks := tokenize(t, "{{ a ** b // c == d }}")
	var puncts []string
	for _, tok := range toks {
		if tok.Kind == KindPunct {
			puncts = append(puncts, tok.Text)
		}
	}
	assert.Equal(t, []string{"**", "//", "=="}, puncts)
}

func TestRawBlockPassesThroughLiterally(t *testing.T) {
	l := New("{% raw %}{{ not an expr }}{% endraw %}tail")
	for i := 0; i < 3; i++ { // STMT_START, NAME(raw), STMT_END
		_, err := l.Next()
		require.NoError(t, err)
	}
	raw, err := l.ReadRawUntilEndRaw()
	require.NoError(t, err)
	assert.Equal(t, "{{ not an expr }}", raw)

	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, KindText, tok.Kind)
	assert.Equal(t, "tail", tok.Text)
}
