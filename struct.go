package blockfield

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/pthm/blockfield/lib/address"
)

// StructField names one child of a StructBlock.
type StructField struct {
	Name  string
	Block Block
}

// StructBlock is a fixed-shape composite. Each field is addressed at
// prefix-name and activated independently; there is no ordering or dynamic
// membership.
type StructBlock struct {
	fields []StructField
	label  string
	def    any
}

// NewStructBlock creates a struct block. It panics on an empty, invalid or
// duplicate field name.
func NewStructBlock(fields []StructField, opts ...Option) *StructBlock {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if err := address.ValidateName(f.Name); err != nil {
			panic(fmt.Sprintf("blockfield: struct field %q: %v", f.Name, err))
		}
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("blockfield: duplicate struct field %q", f.Name))
		}
		if f.Block == nil {
			panic(fmt.Sprintf("blockfield: struct field %q has no block", f.Name))
		}
		seen[f.Name] = struct{}{}
	}
	o := buildOptions(opts)
	b := &StructBlock{fields: fields, label: o.label}
	b.def = o.defaultOr(nil)
	return b
}

// Fields returns the struct's field definitions.
func (b *StructBlock) Fields() []StructField {
	return b.fields
}

// Default implements Block. Without an explicit default every field takes
// its own block's default.
func (b *StructBlock) Default() any {
	if b.def != nil {
		return b.def
	}
	out := make(map[string]any, len(b.fields))
	for _, f := range b.fields {
		out[f.Name] = f.Block.Default()
	}
	return out
}

func (b *StructBlock) fieldValue(values map[string]any, f StructField) any {
	if v, ok := values[f.Name]; ok {
		return v
	}
	return f.Block.Default()
}

// Render implements Block.
func (b *StructBlock) Render(value any, prefix Prefix) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		values := asMap(value)
		if b.label != "" {
			if err := writef(w, `<label>%s</label>`, esc(b.label)); err != nil {
				return err
			}
		}
		if err := writef(w, `<ul class="block-struct">`); err != nil {
			return err
		}
		for _, f := range b.fields {
			if _, err := io.WriteString(w, `<li>`); err != nil {
				return err
			}
			if err := f.Block.Render(b.fieldValue(values, f), prefix.Child(f.Name)).Render(ctx, w); err != nil {
				return err
			}
			if _, err := io.WriteString(w, `</li>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}

// Declarations implements Block.
func (b *StructBlock) Declarations(def Prefix) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, f := range b.fields {
			if err := f.Block.Declarations(def.Child(f.Name)).Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// Initializer implements Block. It returns nil when no field needs runtime
// behaviour. Every field is activated before the initializer returns, even
// when an earlier one fails.
func (b *StructBlock) Initializer(def Prefix) Initializer {
	type child struct {
		field StructField
		init  Initializer
	}
	var children []child
	for _, f := range b.fields {
		if init := f.Block.Initializer(def.Child(f.Name)); init != nil {
			children = append(children, child{field: f, init: init})
		}
	}
	if len(children) == 0 {
		return nil
	}

	return func(p *Page, value any, prefix Prefix) error {
		values := asMap(value)
		var errs []error
		for _, c := range children {
			if err := p.Activate(c.init, b.fieldValue(values, c.field), prefix.Child(c.field.Name)); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", c.field.Name, err))
			}
		}
		return errors.Join(errs...)
	}
}

// ValueFromForm implements Block.
func (b *StructBlock) ValueFromForm(form url.Values, prefix Prefix) (any, error) {
	out := make(map[string]any, len(b.fields))
	for _, f := range b.fields {
		v, err := f.Block.ValueFromForm(form, prefix.Child(f.Name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		out[f.Name] = v
	}
	return out, nil
}
