package blockfield

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pthm/blockfield/lib/address"
)

// TemplateSource provides template text keyed by definition prefix and, for
// heterogeneous blocks, child type name.
type TemplateSource interface {
	Template(def Prefix, child string) (string, error)
}

// Page is the activation environment of one rendered document: the Locator
// every initializer works against, where templates come from, and the logger.
type Page struct {
	loc       Locator
	templates TemplateSource
	log       *zap.Logger
}

// PageOption configures a Page.
type PageOption func(*Page)

// WithLogger sets the logger used by the runtime. The default discards.
func WithLogger(log *zap.Logger) PageOption {
	return func(p *Page) {
		if log != nil {
			p.log = log
		}
	}
}

// WithTemplates overrides where templates are read from. By default they are
// read from the text of declaration scripts in the document.
func WithTemplates(src TemplateSource) PageOption {
	return func(p *Page) {
		p.templates = src
	}
}

// NewPage creates an activation environment over loc.
func NewPage(loc Locator, opts ...PageOption) *Page {
	p := &Page{
		loc: loc,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.templates == nil {
		p.templates = scriptTemplates{loc: loc}
	}
	return p
}

// Locator returns the document the page activates against.
func (p *Page) Locator() Locator {
	return p.loc
}

// Logger returns the page logger.
func (p *Page) Logger() *zap.Logger {
	return p.log
}

// Template returns the template declared for def (and child, if non-empty).
func (p *Page) Template(def Prefix, child string) (string, error) {
	return p.templates.Template(def, child)
}

// Activate runs init for the instance at prefix. A nil initializer is a
// no-op, matching blocks that need no runtime behaviour.
func (p *Page) Activate(init Initializer, value any, prefix Prefix) error {
	if init == nil {
		return nil
	}
	return init(p, value, prefix)
}

// scriptTemplates reads templates from <script type="text/template"> bodies.
type scriptTemplates struct {
	loc Locator
}

func (s scriptTemplates) Template(def Prefix, child string) (string, error) {
	id := address.TemplateID(def, child)
	text, err := s.loc.Text(id)
	if err != nil {
		return "", fmt.Errorf("%w: #%s: %v", ErrTemplateNotFound, id, err)
	}
	return text, nil
}
