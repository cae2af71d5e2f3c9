package blockfield

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/pthm/blockfield/lib/address"
)

// Field binds a block type to one top-level form field.
//
// The field name is the instance prefix of the rendered block and "def-" +
// name its definition prefix, so two fields sharing a block type keep
// separate templates.
type Field struct {
	name   string
	block  Block
	def    Prefix
	prefix Prefix
}

// NewField creates a field. It panics if name is not a valid block name.
func NewField(name string, block Block) *Field {
	if err := address.ValidateName(name); err != nil {
		panic(fmt.Sprintf("blockfield: field %q: %v", name, err))
	}
	if block == nil {
		panic(fmt.Sprintf("blockfield: field %q has no block", name))
	}
	return &Field{
		name:   name,
		block:  block,
		def:    Prefix(address.Definitions).Child(name),
		prefix: Prefix(name),
	}
}

// Name returns the field name.
func (f *Field) Name() string {
	return f.name
}

// Block returns the field's block type.
func (f *Field) Block() Block {
	return f.block
}

// Prefix returns the instance prefix.
func (f *Field) Prefix() Prefix {
	return f.prefix
}

// Definition returns the definition prefix.
func (f *Field) Definition() Prefix {
	return f.def
}

// DataID returns the id of the script carrying the field's initial value.
func (f *Field) DataID() Prefix {
	return f.prefix.Child(SuffixData)
}

// Render produces the field's declarations followed by the rendered block.
func (f *Field) Render(value any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writef(w, `<div class="blockfield" id="%s">`, esc(f.prefix.Child(SuffixField).String())); err != nil {
			return err
		}
		if err := f.block.Declarations(f.def).Render(ctx, w); err != nil {
			return err
		}
		if err := f.block.Render(value, f.prefix).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// Activate runs the block's initializer for the rendered field. This is the
// single entry point a page bootstrap calls per top-level field.
func (f *Field) Activate(p *Page, value any) error {
	return p.Activate(f.block.Initializer(f.def), value, f.prefix)
}

// ValueFromForm reads the field's value from a submission.
func (f *Field) ValueFromForm(form url.Values) (any, error) {
	return f.block.ValueFromForm(form, f.prefix)
}
