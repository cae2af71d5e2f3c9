package blockfield

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/a-h/templ"
	"go.uber.org/zap"
)

// Form is the composition root of a block-editing page: the ordered set of
// top-level fields, the encoder that carries their initial values into the
// rendered document, and the bootstrap that activates them.
type Form struct {
	mu        sync.RWMutex
	encoder   *Encoder
	sensitive bool
	fields    []*Field
	byName    map[string]*Field
	log       *zap.Logger

	// OnError is called when a field fails to activate during Boot.
	// Other fields still activate. The default logs the failure.
	OnError func(f *Field, err error)
}

// FormOption configures a Form.
type FormOption func(*Form)

// WithFormLogger sets the form logger. The default discards.
func WithFormLogger(log *zap.Logger) FormOption {
	return func(f *Form) {
		if log != nil {
			f.log = log
		}
	}
}

// WithSensitiveValues encrypts embedded initial values instead of signing
// them.
func WithSensitiveValues() FormOption {
	return func(f *Form) {
		f.sensitive = true
	}
}

// NewForm creates a form whose embedded values are protected with key.
func NewForm(key []byte, opts ...FormOption) *Form {
	enc, err := NewEncoder(key)
	if err != nil {
		panic(fmt.Sprintf("blockfield: failed to create encoder: %v", err))
	}

	f := &Form{
		encoder: enc,
		byName:  make(map[string]*Field),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.OnError = func(field *Field, err error) {
		f.log.Error("field activation failed",
			zap.String("field", field.Name()),
			zap.Error(err))
	}
	return f
}

// Encoder returns the form's encoder.
func (f *Form) Encoder() *Encoder {
	return f.encoder
}

// Add registers fields with the form. Panics on a field name collision.
func (f *Form) Add(fields ...*Field) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, field := range fields {
		if _, exists := f.byName[field.Name()]; exists {
			panic(fmt.Sprintf("blockfield: field name collision for %q", field.Name()))
		}
		f.byName[field.Name()] = field
		f.fields = append(f.fields, field)
	}
}

// Fields returns the registered fields in registration order.
func (f *Form) Fields() []*Field {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]*Field(nil), f.fields...)
}

// Field returns a registered field by name.
func (f *Form) Field(name string) (*Field, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	field, ok := f.byName[name]
	return field, ok
}

// Render produces the form markup. values maps field names to initial
// values; missing fields render their block's default.
func (f *Form) Render(values map[string]any) templ.Component {
	fields := f.Fields()
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<form method="post" class="blockfield-form">`); err != nil {
			return err
		}
		for _, field := range fields {
			value, ok := values[field.Name()]
			if !ok {
				value = field.Block().Default()
			}
			if err := field.Render(value).Render(ctx, w); err != nil {
				return err
			}
			payload, err := f.encoder.Encode(value, f.sensitive)
			if err != nil {
				return fmt.Errorf("blockfield: encode %s: %w", field.Name(), err)
			}
			if err := writef(w, `<script type="application/x-blockfield" id="%s">%s</script>`,
				esc(field.DataID().String()), payload); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</form>`)
		return err
	})
}

// Document wraps Render in a complete HTML page.
func (f *Form) Document(title string, values map[string]any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writef(w, `<!DOCTYPE html><html><head><meta charset="utf-8"><title>%s</title></head><body>`, esc(title)); err != nil {
			return err
		}
		if err := f.Render(values).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// Boot activates every field of a rendered form: each field's initial value
// is decoded from its data script and passed to the block's initializer.
// A failing field is reported through OnError and does not prevent the
// remaining fields from activating; the joined failures are returned.
func (f *Form) Boot(p *Page) error {
	var errs []error
	for _, field := range f.Fields() {
		if err := f.bootField(p, field); err != nil {
			err = fmt.Errorf("%s: %w", field.Name(), err)
			if f.OnError != nil {
				f.OnError(field, err)
			}
			errs = append(errs, err)
			continue
		}
		f.log.Debug("field activated", zap.String("field", field.Name()))
	}
	return errors.Join(errs...)
}

func (f *Form) bootField(p *Page, field *Field) error {
	payload, err := p.Locator().Text(field.DataID())
	if err != nil {
		return err
	}
	value, err := f.encoder.DecodeValue(payload, f.sensitive)
	if err != nil {
		return wrapEncodingError(err)
	}
	return field.Activate(p, value)
}

// Parse reads every field's value from a submission.
func (f *Form) Parse(form url.Values) (map[string]any, error) {
	out := make(map[string]any)
	for _, field := range f.Fields() {
		v, err := field.ValueFromForm(form)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field.Name(), err)
		}
		out[field.Name()] = v
	}
	return out, nil
}

// ParseField reads a single field's value from a submission.
func (f *Form) ParseField(name string, form url.Values) (any, error) {
	field, ok := f.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return field.ValueFromForm(form)
}
