package jinja2go

import "github.com/wangzhaode/jinja2go/value"

// ApplyChatTemplate is the convenience wrapper described by the Host
// API: it assembles a root context of {messages, add_generation_prompt,
// tools, ...extra} (tools is left out when it is None, so `tools is
// defined` is then false), merges it over the Template's default context
// (via Render's usual merge rule), and renders. Grounded on the
// original project's `jinja::Template::apply_chat_template` signature:
// a message list, a generation-prompt flag, a tools value, and an
// open-ended extra context.
func (t *Template) ApplyChatTemplate(messages []value.Value, addGenerationPrompt bool, tools value.Value, extra map[string]value.Value) (string, error) {
	root := value.NewOrderedMap()
	root.Set("messages", value.Seq(messages))
	root.Set("add_generation_prompt", value.Bool(addGenerationPrompt))
	if !tools.IsNone() {
		root.Set("tools", tools)
	}
	for k, v := range extra {
		root.Set(k, v)
	}
	return t.Render(value.Map(root))
}
