package blockfield

// Option configures a block type.
type Option func(*options)

type options struct {
	label      string
	def        any
	hasDefault bool
	picker     Picker
	policy     InsertPolicy
}

// WithLabel sets the label rendered with the block.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithDefault sets the value given to freshly inserted instances.
func WithDefault(v any) Option {
	return func(o *options) {
		o.def = v
		o.hasDefault = true
	}
}

// WithPicker sets the picker a Chooser opens when its button is clicked.
func WithPicker(p Picker) Option {
	return func(o *options) {
		o.picker = p
	}
}

// WithInsertPolicy selects which insert triggers a StreamBlock offers.
func WithInsertPolicy(p InsertPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) defaultOr(v any) any {
	if o.hasDefault {
		return o.def
	}
	return v
}
