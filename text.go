package blockfield

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
)

// TextInput is a single-line text leaf. It needs no runtime behaviour.
type TextInput struct {
	label string
	def   any
}

// NewTextInput creates a text input block.
func NewTextInput(label string, opts ...Option) *TextInput {
	o := buildOptions(append([]Option{WithLabel(label)}, opts...))
	return &TextInput{label: o.label, def: o.defaultOr("")}
}

// Default implements Block.
func (b *TextInput) Default() any { return b.def }

// Render implements Block.
func (b *TextInput) Render(value any, prefix Prefix) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		id := esc(prefix.String())
		return writef(w, `<label for="%s">%s</label> <input type="text" name="%s" id="%s" value="%s">`,
			id, esc(b.label), id, id, esc(asString(value)))
	})
}

// Declarations implements Block.
func (b *TextInput) Declarations(Prefix) templ.Component { return templ.NopComponent }

// Initializer implements Block.
func (b *TextInput) Initializer(Prefix) Initializer { return nil }

// ValueFromForm implements Block.
func (b *TextInput) ValueFromForm(form url.Values, prefix Prefix) (any, error) {
	return form.Get(prefix.String()), nil
}

// RichText is a multi-line HTML leaf. Submitted markup is sanitised with a
// user-generated-content policy before it is returned.
type RichText struct {
	label  string
	def    any
	policy *bluemonday.Policy
}

// NewRichText creates a rich text block.
func NewRichText(label string, opts ...Option) *RichText {
	o := buildOptions(append([]Option{WithLabel(label)}, opts...))
	return &RichText{
		label:  o.label,
		def:    o.defaultOr(""),
		policy: bluemonday.UGCPolicy(),
	}
}

// Default implements Block.
func (b *RichText) Default() any { return b.def }

// Render implements Block.
func (b *RichText) Render(value any, prefix Prefix) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		id := esc(prefix.String())
		return writef(w, `<label for="%s">%s</label> <textarea name="%s" id="%s" rows="6">%s</textarea>`,
			id, esc(b.label), id, id, esc(asString(value)))
	})
}

// Declarations implements Block.
func (b *RichText) Declarations(Prefix) templ.Component { return templ.NopComponent }

// Initializer implements Block.
func (b *RichText) Initializer(Prefix) Initializer { return nil }

// ValueFromForm implements Block.
func (b *RichText) ValueFromForm(form url.Values, prefix Prefix) (any, error) {
	return strings.TrimSpace(b.policy.Sanitize(form.Get(prefix.String()))), nil
}
