package blockfield

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"
	"go.uber.org/zap"
)

// Picker opens whatever selection UI a chooser uses and reports the chosen
// value. ok is false when the user dismissed the picker.
type Picker func(current string) (chosen string, ok bool, err error)

// Chooser is a leaf that stores a chosen reference (an image or page id, for
// example) in a hidden field and offers a button that opens a Picker.
type Chooser struct {
	label  string
	def    any
	picker Picker
}

// NewChooser creates a chooser block. Without WithPicker the choose button
// is inert.
func NewChooser(label string, opts ...Option) *Chooser {
	o := buildOptions(append([]Option{WithLabel(label)}, opts...))
	return &Chooser{
		label:  o.label,
		def:    o.defaultOr(""),
		picker: o.picker,
	}
}

// Default implements Block.
func (b *Chooser) Default() any { return b.def }

// Render implements Block.
func (b *Chooser) Render(value any, prefix Prefix) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writef(w, `<label>%s</label> `, esc(b.label)); err != nil {
			return err
		}
		if err := hiddenInput(w, prefix, asString(value)); err != nil {
			return err
		}
		return writef(w, ` <input type="button" id="%s" value="Choose a thing">`, esc(prefix.Child(SuffixButton).String()))
	})
}

// Declarations implements Block.
func (b *Chooser) Declarations(Prefix) templ.Component { return templ.NopComponent }

// Initializer implements Block. The returned initializer binds the choose
// button; a chosen value is written into the chooser's own hidden field.
func (b *Chooser) Initializer(def Prefix) Initializer {
	return func(p *Page, _ any, prefix Prefix) error {
		return p.Locator().On(prefix.Child(SuffixButton), EventClick, func() error {
			if b.picker == nil {
				return nil
			}
			current, err := p.Locator().Value(prefix)
			if err != nil {
				return err
			}
			chosen, ok, err := b.picker(current)
			if err != nil || !ok {
				return err
			}
			p.Logger().Debug("chooser value picked",
				zap.String("definition", def.String()),
				zap.String("prefix", prefix.String()))
			return p.Locator().SetValue(prefix, chosen)
		})
	}
}

// ValueFromForm implements Block.
func (b *Chooser) ValueFromForm(form url.Values, prefix Prefix) (any, error) {
	return form.Get(prefix.String()), nil
}
