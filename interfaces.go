package blockfield

import (
	"net/url"

	"github.com/a-h/templ"
)

// Locator resolves prefixes to the elements they address and performs the
// few document mutations the runtime needs. *dom.Document satisfies it; a
// browser binding would implement the same contract over the real DOM.
//
// The runtime never edits markup text outside a Locator or a Macro.
type Locator interface {
	// Value returns the current value of the control at p.
	Value(p Prefix) (string, error)

	// SetValue writes the value of the control at p.
	SetValue(p Prefix, value string) error

	// Text returns the raw text content of the element at p. Template and
	// data scripts are read through Text.
	Text(p Prefix) (string, error)

	// Hide hides the element at p without removing it.
	Hide(p Prefix) error

	// Insert parses markup and splices it relative to target.
	Insert(target Prefix, mode SwapMode, markup string) error

	// On registers h for the named event on the element at p.
	On(p Prefix, event string, h Handler) error
}

// Initializer activates a block instance that has already been rendered into
// the document at prefix. value is the instance's initial value, or the block
// type's default when the instance was freshly inserted; it may be nil.
//
// Initializers are synchronous and must only touch the region at prefix and
// its descendants.
type Initializer func(p *Page, value any, prefix Prefix) error

// Block is a block type: it renders instances, declares the templates its
// runtime needs, activates rendered instances, and reads submitted values
// back.
//
// Definition prefixes (def) name a block type's position in the composition
// tree and key its templates. Instance prefixes name a rendered instance.
type Block interface {
	// Default is the value used for freshly inserted instances.
	Default() any

	// Render produces the markup of one instance.
	Render(value any, prefix Prefix) templ.Component

	// Declarations produces the templates and nested declarations needed at
	// runtime. Blocks without runtime templates render nothing.
	Declarations(def Prefix) templ.Component

	// Initializer returns the activation function for instances of this
	// block, or nil when instances need no runtime behaviour.
	Initializer(def Prefix) Initializer

	// ValueFromForm reads the value of the instance at prefix from a
	// submission.
	ValueFromForm(form url.Values, prefix Prefix) (any, error)
}
