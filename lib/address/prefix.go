// Package address implements the prefix addressing scheme shared by the
// server-side renderer and the in-page runtime.
//
// Every addressable region of a block form is named by a Prefix. Child
// regions are always derived by plain concatenation:
//
//	parent + "-" + suffix
//
// where suffix is a struct field name, a member number, or one of the fixed
// tokens declared below. The server parses submissions using the same rule,
// so the derivation must stay bit-exact.
package address

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Placeholder is the literal sentinel written into templates wherever the
// target prefix is substituted at paste time.
const Placeholder = "__PREFIX__"

// Fixed suffix tokens.
const (
	Value     = "value"
	Type      = "type"
	Count     = "count"
	Order     = "order"
	Deleted   = "deleted"
	Container = "container"
	List      = "list"
	Add       = "add"
	Delete    = "delete"
	Menu      = "menu"
	Data      = "data"
	Template  = "template"
	Item      = "item"
	Child     = "child"
	Field     = "field"
	Button    = "button"
	Before    = "before"
	After     = "after"
)

// Definitions is the root prefix under which block definitions and their
// templates are addressed.
const Definitions = "def"

// reserved lists the tokens the runtime appends to block addresses. A block
// named after one of them would share an element id with a generated control.
var reserved = map[string]bool{
	Value: true, Type: true, Count: true, Order: true, Deleted: true,
	Container: true, List: true, Add: true, Delete: true, Menu: true,
	Data: true, Template: true, Item: true, Child: true, Field: true,
	Button: true, Before: true, After: true, Definitions: true,
}

// ErrInvalidPrefix is returned when a prefix cannot be used as substitution
// input or as an element address.
var ErrInvalidPrefix = errors.New("address: invalid prefix")

// Prefix is the unique address of one widget instance's region and its
// persisted fields.
type Prefix string

// String returns the prefix as plain text.
func (p Prefix) String() string {
	return string(p)
}

// Child derives the address of a sub-region.
func (p Prefix) Child(suffix string) Prefix {
	return Prefix(string(p) + "-" + suffix)
}

// Join derives a nested address by applying Child for each part in turn.
func (p Prefix) Join(parts ...string) Prefix {
	out := p
	for _, part := range parts {
		out = out.Child(part)
	}
	return out
}

// Index derives the address of the n-th allocated sequence member.
func (p Prefix) Index(n int) Prefix {
	return p.Child(strconv.Itoa(n))
}

// IsTemplate reports whether the prefix still carries the placeholder.
func (p Prefix) IsTemplate() bool {
	return strings.Contains(string(p), Placeholder)
}

// Validate checks that p is safe to substitute into a template. Prefixes are
// restricted to ASCII letters, digits, '-' and '_' so that they can be used
// verbatim as element ids and form field names.
func Validate(p Prefix) error {
	if p == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPrefix)
	}
	if p.IsTemplate() {
		return fmt.Errorf("%w: %q contains the template placeholder", ErrInvalidPrefix, p)
	}
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return fmt.Errorf("%w: %q has unsupported character %q", ErrInvalidPrefix, p, c)
		}
	}
	return nil
}

// ValidateName checks that name can be used as a block or field name. Names
// follow the prefix charset without '-', so that a name is always exactly one
// address segment, and must not be one of the reserved tokens.
func ValidateName(name string) error {
	if err := Validate(Prefix(name)); err != nil {
		return err
	}
	if strings.Contains(name, "-") {
		return fmt.Errorf("%w: name %q contains '-'", ErrInvalidPrefix, name)
	}
	if reserved[name] {
		return fmt.Errorf("%w: name %q is reserved", ErrInvalidPrefix, name)
	}
	return nil
}

// Expand substitutes every occurrence of the placeholder in template with p.
func Expand(template string, p Prefix) string {
	return strings.ReplaceAll(template, Placeholder, string(p))
}

// TemplateID returns the element id carrying the template for a definition.
// An empty child names the single template of a homogeneous block.
func TemplateID(def Prefix, child string) Prefix {
	if child == "" {
		return def.Child(Template)
	}
	return def.Join(Template, child)
}
