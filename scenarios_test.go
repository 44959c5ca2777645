package jinja2go

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wangzhaode/jinja2go/value"
)

func render(t *testing.T, source string, contextJSON string) string {
	ctx, err := value.FromJSON([]byte(contextJSON))
	require.NoError(t, err)
	tmpl, err := NewTemplate(source, value.None())
	require.NoError(t, err)
	out, err := tmpl.Render(ctx)
	require.NoError(t, err)
	return out
}

func TestScenarioPlainText(t *testing.T) {
	assert.Equal(t, "hello, nothing to template here", render(t, "hello, nothing to template here", `{}`))
}

func TestScenarioSimpleOutput(t *testing.T) {
	assert.Equal(t, "Hi Ada!", render(t, "Hi {{ name }}!", `{"name":"Ada"}`))
}

func TestScenarioIfElse(t *testing.T) {
	assert.Equal(t, "B", render(t, "{% if x %}A{% else %}B{% endif %}", `{"x":false}`))
}

func TestScenarioForWithLoopVars(t *testing.T) {
	src := "{% for m in xs %}{{ loop.index }}:{{ m }}{% if not loop.last %},{% endif %}{% endfor %}"
	assert.Equal(t, "1:a,2:b,3:c", render(t, src, `{"xs":["a","b","c"]}`))
}

func TestScenarioChatTemplateSkeleton(t *testing.T) {
	src := "{% for m in messages %}<|{{ m.role }}|>\n{{ m.content }}\n{% endfor %}{% if add_generation_prompt %}<|assistant|>\n{% endif %}"
	ctx := `{"messages":[{"role":"user","content":"hi"}], "add_generation_prompt":true}`
	assert.Equal(t, "<|user|>\nhi\n<|assistant|>\n", render(t, src, ctx))
}

func TestScenarioFilterChainTojson(t *testing.T) {
	got := render(t, "{{ tools | tojson }}", `{"tools":[{"name":"f"}]}`)
	assert.Equal(t, `[{"name": "f"}]`, got)
}

func TestScenarioUnboundNameIsPermissive(t *testing.T) {
	got := render(t, "{{ nope is defined }}|{{ nope or 'x' }}", `{}`)
	assert.Equal(t, "False|x", got)
}

func TestScenarioWhitespaceTrim(t *testing.T) {
	src := "line1\n  {%- if true -%}\n  kept\n  {%- endif -%}\n  line2"
	assert.Equal(t, "line1keptline2", render(t, src, `{}`))
}

func TestInvariantDeterminismAcrossRenders(t *testing.T) {
	tmpl, err := NewTemplate("{{ a }}-{{ b|upper }}", value.None())
	require.NoError(t, err)
	ctx, _ := value.FromJSON([]byte(`{"a":1,"b":"x"}`))
	first, err := tmpl.Render(ctx)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		out, err := tmpl.Render(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, out)
	}
}

func TestInvariantConcurrentRenderIndependence(t *testing.T) {
	tmpl, err := NewTemplate("{% for i in range(n) %}{{ i }}{% endfor %}", value.None())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ctx, _ := value.FromJSON([]byte(`{"n":5}`))
			out, err := tmpl.Render(ctx)
			if err == nil {
				results[idx] = out
			}
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, "01234", r)
	}
}

func TestInvariantSyntaxErrorPositionInBounds(t *testing.T) {
	_, err := Compile("{% if x %}body", value.None())
	require.Error(t, err)
	jerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, SyntaxErrorKind, jerr.Kind)
	assert.GreaterOrEqual(t, jerr.Position.Line, 1)
}

func TestInvariantScopeShadowing(t *testing.T) {
	src := "{% set x = 'outer' %}{% for x in [1,2] %}{{ x }}{% endfor %}{{ x }}"
	assert.Equal(t, "12outer", render(t, src, `{}`))
}

func TestInvariantMapIterationOrderIsInsertionOrder(t *testing.T) {
	src := "{% for k in m %}{{ k }}{% endfor %}"
	assert.Equal(t, "zam", render(t, src, `{"m":{"z":1,"a":2,"m":3}}`))
}

func TestInvariantDefaultFilterSemantics(t *testing.T) {
	src := "{{ missing | default('fallback') }}|{{ present | default('fallback') }}"
	assert.Equal(t, "fallback|x", render(t, src, `{"present":"x"}`))
}

func TestNamespaceAssignmentInLoop(t *testing.T) {
	src := strings.Join([]string{
		"{% set ns = namespace(total=0) %}",
		"{% for i in [1, 2, 3] %}{% set ns.total = ns.total + i %}{% endfor %}",
		"{{ ns.total }}",
	}, "")
	assert.Equal(t, "6", render(t, src, `{}`))
}

func TestMacroCallBlock(t *testing.T) {
	src := strings.Join([]string{
		"{% macro wrap() %}<{{ caller() }}>{% endmacro %}",
		"{% call wrap() %}x{% endcall %}",
	}, "")
	assert.Equal(t, "<x>", render(t, src, `{}`))
}

func TestHostFunctionViaAddFunction(t *testing.T) {
	tmpl, err := NewTemplate("{{ shout(name) }}", value.None())
	require.NoError(t, err)
	tmpl.AddFunction("shout", func(args []value.Value, kwargs *value.OrderedMap) (value.Value, error) {
		s, _ := args[0].AsStr()
		return value.Str(strings.ToUpper(s) + "!"), nil
	})
	ctx, _ := value.FromJSON([]byte(`{"name":"ada"}`))
	out, err := tmpl.Render(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ADA!", out)
}

func TestApplyChatTemplate(t *testing.T) {
	src := "{% for m in messages %}<|{{ m.role }}|> {{ m.content }}\n{% endfor %}"
	tmpl, err := NewTemplate(src, value.None())
	require.NoError(t, err)
	messages := []value.Value{
		func() value.Value {
			m := value.NewOrderedMap()
			m.Set("role", value.Str("user"))
			m.Set("content", value.Str("hi"))
			return value.Map(m)
		}(),
	}
	out, err := tmpl.ApplyChatTemplate(messages, false, value.None(), nil)
	require.NoError(t, err)
	assert.Equal(t, "<|user|> hi\n", out)
}
