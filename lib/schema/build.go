package schema

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pthm/blockfield"
)

// Options configures how a schema is built into blocks.
type Options struct {
	// Pickers resolves the picker names used by chooser blocks. A chooser
	// naming a picker that is not registered is an error; a chooser with no
	// picker name is inert.
	Pickers map[string]blockfield.Picker

	// Logger receives build diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// ParsePolicy converts a configured insert policy name.
func ParsePolicy(s string) (blockfield.InsertPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "relative":
		return blockfield.InsertRelative, nil
	case "append", "append_only", "append-only":
		return blockfield.InsertAppendOnly, nil
	default:
		return 0, fmt.Errorf("%w: unknown insert policy %q", ErrInvalidSchema, s)
	}
}

// BuildFields builds every top-level field of the file.
func (f *File) BuildFields(opts Options) ([]*blockfield.Field, error) {
	out := make([]*blockfield.Field, 0, len(f.Fields))
	for _, fc := range f.Fields {
		block, err := Build(fc.Block, opts)
		if err != nil {
			return nil, fmt.Errorf("schema: %s: field %s: %w", f.Source, fc.Name, err)
		}
		out = append(out, blockfield.NewField(fc.Name, block))
	}
	opts.logger().Debug("schema built",
		zap.String("source", f.Source),
		zap.Int("fields", len(out)))
	return out, nil
}

// Form builds a form holding every field of the file.
func (f *File) Form(key []byte, opts Options, formOpts ...blockfield.FormOption) (*blockfield.Form, error) {
	fields, err := f.BuildFields(opts)
	if err != nil {
		return nil, err
	}
	form := blockfield.NewForm(key, append([]blockfield.FormOption{blockfield.WithFormLogger(opts.Logger)}, formOpts...)...)
	form.Add(fields...)
	return form, nil
}

// Build constructs the block described by cfg. cfg must have been
// validated.
func Build(cfg BlockConfig, opts Options) (blockfield.Block, error) {
	common := []blockfield.Option{}
	if cfg.Label != "" {
		common = append(common, blockfield.WithLabel(cfg.Label))
	}
	if cfg.Default != nil {
		common = append(common, blockfield.WithDefault(cfg.Default))
	}

	switch cfg.Kind {
	case KindText:
		return blockfield.NewTextInput(cfg.Label, common...), nil

	case KindRichText:
		return blockfield.NewRichText(cfg.Label, common...), nil

	case KindChooser:
		if cfg.Picker != "" {
			picker, ok := opts.Pickers[cfg.Picker]
			if !ok {
				return nil, fmt.Errorf("%w: picker %q is not registered", ErrInvalidSchema, cfg.Picker)
			}
			common = append(common, blockfield.WithPicker(picker))
		}
		return blockfield.NewChooser(cfg.Label, common...), nil

	case KindStruct:
		fields := make([]blockfield.StructField, 0, len(cfg.Fields))
		for _, fc := range cfg.Fields {
			child, err := Build(fc.Block, opts)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fc.Name, err)
			}
			fields = append(fields, blockfield.StructField{Name: fc.Name, Block: child})
		}
		return blockfield.NewStructBlock(fields, common...), nil

	case KindList:
		if cfg.Item == nil {
			return nil, fmt.Errorf("%w: list has no item", ErrInvalidSchema)
		}
		child, err := Build(*cfg.Item, opts)
		if err != nil {
			return nil, fmt.Errorf("item: %w", err)
		}
		return blockfield.NewListBlock(child, common...), nil

	case KindStream:
		policy, err := ParsePolicy(cfg.InsertPolicy)
		if err != nil {
			return nil, err
		}
		children := make([]blockfield.StreamChild, 0, len(cfg.Children))
		for _, fc := range cfg.Children {
			child, err := Build(fc.Block, opts)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fc.Name, err)
			}
			children = append(children, blockfield.StreamChild{Name: fc.Name, Label: fc.Label, Block: child})
		}
		common = append(common, blockfield.WithInsertPolicy(policy))
		return blockfield.NewStreamBlock(children, common...), nil
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidSchema, cfg.Kind)
}
