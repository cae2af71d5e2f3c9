package blockfield

import (
	"context"
	"io"
	"testing"

	"github.com/a-h/templ"
)

var testKey = []byte("blockfield-test-key")

// activation records one initializer call.
type activation struct {
	def    Prefix
	prefix Prefix
	value  any
}

// recordingBlock is a text input whose initializer records every activation.
type recordingBlock struct {
	*TextInput
	calls *[]activation
}

func newRecordingBlock(calls *[]activation) recordingBlock {
	return recordingBlock{TextInput: NewTextInput("Text"), calls: calls}
}

func (b recordingBlock) Initializer(def Prefix) Initializer {
	return func(p *Page, value any, prefix Prefix) error {
		*b.calls = append(*b.calls, activation{def: def, prefix: prefix, value: value})
		return nil
	}
}

func activatedPrefixes(calls []activation) []Prefix {
	out := make([]Prefix, len(calls))
	for i, c := range calls {
		out[i] = c.prefix
	}
	return out
}

// mustTestRender renders a form holding a single field and boots it.
func mustTestRender(t *testing.T, name string, block Block, value any, opts ...PageOption) *TestPage {
	t.Helper()
	form := NewForm(testKey)
	form.Add(NewField(name, block))

	values := map[string]any{}
	if value != nil {
		values[name] = value
	}
	tp, err := TestRender(form, values, opts...)
	if err != nil {
		t.Fatalf("TestRender() error = %v", err)
	}
	return tp
}

func mustClick(t *testing.T, tp *TestPage, id Prefix) {
	t.Helper()
	if err := tp.Click(id); err != nil {
		t.Fatalf("Click(%s) error = %v", id, err)
	}
}

// contextBlock records a context value seen during render.
type contextBlock struct {
	*TextInput
	seen *any
}

func (b contextBlock) Render(value any, prefix Prefix) templ.Component {
	inner := b.TextInput.Render(value, prefix)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		*b.seen = ctx.Value(ctxKey{})
		return inner.Render(ctx, w)
	})
}
