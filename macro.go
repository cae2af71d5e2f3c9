package blockfield

import (
	"github.com/pthm/blockfield/lib/address"
)

// Macro binds a template containing the Placeholder token to an optional
// initializer.
//
// Pasting substitutes the target prefix for every placeholder, splices the
// resulting markup into the document and then, once the new elements can be
// resolved, runs the initializer on the prefix. A macro must not be pasted
// twice with the same prefix; the document rejects the duplicate ids.
type Macro struct {
	name     string
	template string
	init     Initializer
}

// NewMacro creates a macro named name (used in diagnostics only).
func NewMacro(name, template string, init Initializer) *Macro {
	return &Macro{
		name:     name,
		template: template,
		init:     init,
	}
}

// Name returns the macro name.
func (m *Macro) Name() string {
	return m.name
}

// Expand returns the template text with prefix substituted.
func (m *Macro) Expand(prefix Prefix) (string, error) {
	if err := address.Validate(prefix); err != nil {
		return "", err
	}
	return address.Expand(m.template, prefix), nil
}

// Paste appends an instance at prefix to the end of container.
func (m *Macro) Paste(p *Page, container, prefix Prefix, value any) error {
	return m.PasteAt(p, container, SwapBeforeEnd, prefix, value)
}

// PasteAt splices an instance at prefix relative to target and activates it
// with value.
func (m *Macro) PasteAt(p *Page, target Prefix, mode SwapMode, prefix Prefix, value any) error {
	markup, err := m.Expand(prefix)
	if err != nil {
		return err
	}
	if err := p.Locator().Insert(target, mode, markup); err != nil {
		return err
	}
	return p.Activate(m.init, value, prefix)
}
