// Package schema loads block form definitions from YAML or JSON files and
// builds them into blockfield fields.
//
// A schema file lists the top-level fields of a form, each with a nested
// block definition, and optionally the initial values to render:
//
//	fields:
//	  - name: body
//	    block:
//	      kind: stream
//	      insert_policy: relative
//	      children:
//	        - name: heading
//	          block: {kind: text, label: Heading}
//	        - name: image
//	          block: {kind: chooser, picker: images}
//	values:
//	  body:
//	    - {type: heading, value: Hello}
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm/blockfield/lib/address"
)

// Block kinds.
const (
	KindText     = "text"
	KindRichText = "richtext"
	KindChooser  = "chooser"
	KindStruct   = "struct"
	KindList     = "list"
	KindStream   = "stream"
)

// File is a parsed schema file.
type File struct {
	Source string         `json:"-" yaml:"-"`
	Fields []FieldConfig  `json:"fields" yaml:"fields"`
	Values map[string]any `json:"values" yaml:"values"`
}

// FieldConfig names a block: a top-level form field, a struct field or a
// stream child type.
type FieldConfig struct {
	Name  string      `json:"name" yaml:"name"`
	Label string      `json:"label" yaml:"label"`
	Block BlockConfig `json:"block" yaml:"block"`
}

// BlockConfig describes one block type.
type BlockConfig struct {
	Kind    string `json:"kind" yaml:"kind"`
	Label   string `json:"label" yaml:"label"`
	Default any    `json:"default" yaml:"default"`

	// Picker names the picker a chooser opens, resolved through
	// Options.Pickers.
	Picker string `json:"picker" yaml:"picker"`

	// InsertPolicy is "relative" (default) or "append" for streams.
	InsertPolicy string `json:"insert_policy" yaml:"insert_policy"`

	// Fields are the children of a struct.
	Fields []FieldConfig `json:"fields" yaml:"fields"`

	// Item is the member block of a list.
	Item *BlockConfig `json:"item" yaml:"item"`

	// Children are the member types of a stream.
	Children []FieldConfig `json:"children" yaml:"children"`
}

// ErrInvalidSchema is returned for schema files that parse but do not
// describe a valid form.
var ErrInvalidSchema = errors.New("schema: invalid schema")

// Parse decodes a schema document. Unknown keys are rejected. JSON input is
// accepted as YAML.
func Parse(data []byte, source string) (*File, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("schema: file %s is empty", source)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("schema: parse %s: %w", source, err)
	}
	f.Source = source

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads and parses the schema at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads and parses the schema at path within fsys.
func LoadFS(fsys fs.FS, path string) (*File, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Validate checks names, kinds and nesting of every block in the file.
func (f *File) Validate() error {
	if len(f.Fields) == 0 {
		return fmt.Errorf("%w: %s defines no fields", ErrInvalidSchema, f.Source)
	}
	if err := validateNamed(f.Fields, "fields"); err != nil {
		return fmt.Errorf("%s: %w", f.Source, err)
	}
	for name := range f.Values {
		if !hasField(f.Fields, name) {
			return fmt.Errorf("%w: %s: value given for unknown field %q", ErrInvalidSchema, f.Source, name)
		}
	}
	return nil
}

// Field returns the top-level field named name.
func (f *File) Field(name string) (FieldConfig, bool) {
	for _, fc := range f.Fields {
		if fc.Name == name {
			return fc, true
		}
	}
	return FieldConfig{}, false
}

func hasField(fields []FieldConfig, name string) bool {
	for _, fc := range fields {
		if fc.Name == name {
			return true
		}
	}
	return false
}

func validateNamed(fields []FieldConfig, path string) error {
	seen := make(map[string]struct{}, len(fields))
	for i, fc := range fields {
		name := strings.TrimSpace(fc.Name)
		if name == "" {
			return fmt.Errorf("%w: %s[%d] has no name", ErrInvalidSchema, path, i)
		}
		if err := address.ValidateName(name); err != nil {
			return fmt.Errorf("%w: %s[%d]: %v", ErrInvalidSchema, path, i, err)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s defines %q twice", ErrInvalidSchema, path, name)
		}
		seen[name] = struct{}{}
		if err := validateBlock(fc.Block, path+"."+name); err != nil {
			return err
		}
	}
	return nil
}

func validateBlock(b BlockConfig, path string) error {
	switch b.Kind {
	case KindText, KindRichText, KindChooser:
		return nil
	case KindStruct:
		if len(b.Fields) == 0 {
			return fmt.Errorf("%w: struct %s has no fields", ErrInvalidSchema, path)
		}
		return validateNamed(b.Fields, path)
	case KindList:
		if b.Item == nil {
			return fmt.Errorf("%w: list %s has no item", ErrInvalidSchema, path)
		}
		return validateBlock(*b.Item, path+".item")
	case KindStream:
		if len(b.Children) == 0 {
			return fmt.Errorf("%w: stream %s has no children", ErrInvalidSchema, path)
		}
		if _, err := ParsePolicy(b.InsertPolicy); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return validateNamed(b.Children, path)
	case "":
		return fmt.Errorf("%w: %s has no kind", ErrInvalidSchema, path)
	default:
		return fmt.Errorf("%w: %s has unknown kind %q", ErrInvalidSchema, path, b.Kind)
	}
}
