package blockfield

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strconv"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/pthm/blockfield/lib/address"
)

// ChildKind is the type tag persisted at member-type. It selects which
// registered child block a stream member holds.
type ChildKind string

// InsertPolicy selects which insert triggers a StreamBlock offers.
type InsertPolicy int

const (
	// InsertRelative offers one "add at end" trigger per child type plus,
	// on every member, one "insert before" and one "insert after" trigger
	// per child type. It is the default.
	InsertRelative InsertPolicy = iota

	// InsertAppendOnly offers only the "add at end" trigger per child type.
	InsertAppendOnly
)

// String returns the policy name.
func (p InsertPolicy) String() string {
	switch p {
	case InsertRelative:
		return "relative"
	case InsertAppendOnly:
		return "append"
	default:
		return "InsertPolicy(" + strconv.Itoa(int(p)) + ")"
	}
}

// StreamChild registers one child block type of a StreamBlock.
type StreamChild struct {
	Name  string
	Label string
	Block Block
}

// StreamBlock is a sequence whose members may hold any of a fixed set of
// named child block types. Each member stores its type tag at member-type
// and its value at member-value.
//
// Trigger addresses:
//
//	prefix-add-NAME        append a NAME member
//	member-before-NAME     insert a NAME member before member (InsertRelative)
//	member-after-NAME      insert a NAME member after member (InsertRelative)
//	member-delete          delete member
type StreamBlock struct {
	children []StreamChild
	kinds    map[ChildKind]int
	label    string
	def      any
	policy   InsertPolicy
}

// NewStreamBlock creates a stream block. It panics on an empty, invalid or
// duplicate child name.
func NewStreamBlock(children []StreamChild, opts ...Option) *StreamBlock {
	children = slices.Clone(children)
	kinds := make(map[ChildKind]int, len(children))
	for i, c := range children {
		if err := address.ValidateName(c.Name); err != nil {
			panic(fmt.Sprintf("blockfield: stream child %q: %v", c.Name, err))
		}
		if _, dup := kinds[ChildKind(c.Name)]; dup {
			panic(fmt.Sprintf("blockfield: duplicate stream child %q", c.Name))
		}
		if c.Block == nil {
			panic(fmt.Sprintf("blockfield: stream child %q has no block", c.Name))
		}
		if children[i].Label == "" {
			children[i].Label = c.Name
		}
		kinds[ChildKind(c.Name)] = i
	}
	o := buildOptions(opts)
	return &StreamBlock{
		children: children,
		kinds:    kinds,
		label:    o.label,
		def:      o.defaultOr([]any{}),
		policy:   o.policy,
	}
}

// Children returns the registered child types in declaration order.
func (b *StreamBlock) Children() []StreamChild {
	return b.children
}

// Policy returns the insert policy.
func (b *StreamBlock) Policy() InsertPolicy {
	return b.policy
}

// lookup resolves a type tag. The boolean is false for tags the block does
// not register; callers must handle that branch explicitly.
func (b *StreamBlock) lookup(kind ChildKind) (StreamChild, bool) {
	i, ok := b.kinds[kind]
	if !ok {
		return StreamChild{}, false
	}
	return b.children[i], true
}

// Default implements Block.
func (b *StreamBlock) Default() any { return b.def }

// Render implements Block. Items whose type is not registered are rendered
// as empty members so that member positions match the value.
func (b *StreamBlock) Render(value any, prefix Prefix) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		items := asStreamItems(value)
		if err := writef(w, `<div class="block-stream"><label>%s</label>`, esc(b.label)); err != nil {
			return err
		}
		if err := hiddenInput(w, prefix.Child(SuffixCount), strconv.Itoa(len(items))); err != nil {
			return err
		}
		if err := writef(w, `<ul id="%s">`, esc(prefix.Child(SuffixList).String())); err != nil {
			return err
		}
		for i, item := range items {
			if err := b.renderMember(ctx, w, ChildKind(item.Type), item.Value, prefix.Index(i), strconv.Itoa(i)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</ul><div class="block-stream-add">`); err != nil {
			return err
		}
		for _, c := range b.children {
			if err := button(w, prefix.Join(SuffixAdd, c.Name), "Add "+c.Label); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div></div>`)
		return err
	})
}

func (b *StreamBlock) renderMember(ctx context.Context, w io.Writer, kind ChildKind, value any, mp Prefix, order string) error {
	if err := writef(w, `<li id="%s" class="block-stream-member">`, esc(mp.Child(SuffixContainer).String())); err != nil {
		return err
	}
	if err := hiddenInput(w, mp.Child(SuffixDeleted), ""); err != nil {
		return err
	}
	if err := hiddenInput(w, mp.Child(SuffixOrder), order); err != nil {
		return err
	}
	if err := hiddenInput(w, mp.Child(SuffixType), string(kind)); err != nil {
		return err
	}
	if err := button(w, mp.Child(SuffixDelete), "Delete"); err != nil {
		return err
	}
	if b.policy == InsertRelative {
		if err := writef(w, `<div id="%s" class="block-stream-menu"></div>`, esc(mp.Child(SuffixMenu).String())); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, `<div class="block-stream-value">`); err != nil {
		return err
	}
	if child, ok := b.lookup(kind); ok {
		if err := child.Block.Render(value, mp.Child(SuffixValue)).Render(ctx, w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</div></li>`)
	return err
}

// Declarations implements Block. One member template per child type is
// declared at def-template-NAME; child declarations live under
// def-child-NAME. With InsertRelative the per-member insert menu is declared
// at def-menu-template.
func (b *StreamBlock) Declarations(def Prefix) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range b.children {
			if err := c.Block.Declarations(def.Join(address.Child, c.Name)).Render(ctx, w); err != nil {
				return err
			}
			err := templateScript(ctx, w, address.TemplateID(def, c.Name), func(ctx context.Context, w io.Writer) error {
				return b.renderMember(ctx, w, ChildKind(c.Name), c.Block.Default(), Prefix(Placeholder), "")
			})
			if err != nil {
				return err
			}
		}
		if b.policy != InsertRelative {
			return nil
		}
		return templateScript(ctx, w, address.TemplateID(def.Child(SuffixMenu), ""), func(ctx context.Context, w io.Writer) error {
			member := Prefix(Placeholder)
			if _, err := io.WriteString(w, `<span class="block-stream-insert">`); err != nil {
				return err
			}
			for _, c := range b.children {
				if err := button(w, member.Join(SuffixBefore, c.Name), "Insert "+c.Label+" before"); err != nil {
					return err
				}
				if err := button(w, member.Join(SuffixAfter, c.Name), "Insert "+c.Label+" after"); err != nil {
					return err
				}
			}
			_, err := io.WriteString(w, `</span>`)
			return err
		})
	})
}

// Initializer implements Block.
//
// Each member's child initializer is resolved from the type tag stored in
// the member. Members carrying an unregistered tag are tolerated: their
// value region is left uninitialized and siblings activate normally.
func (b *StreamBlock) Initializer(def Prefix) Initializer {
	inits := make(map[ChildKind]Initializer, len(b.children))
	for _, c := range b.children {
		inits[ChildKind(c.Name)] = c.Block.Initializer(def.Join(address.Child, c.Name))
	}

	return func(p *Page, value any, prefix Prefix) error {
		templates := make(map[ChildKind]*Macro, len(b.children))
		for _, c := range b.children {
			tmpl, err := p.Template(def, c.Name)
			if err != nil {
				return err
			}
			templates[ChildKind(c.Name)] = NewMacro(c.Name, tmpl, nil)
		}

		var menu *Macro
		if b.policy == InsertRelative {
			tmpl, err := p.Template(def.Child(SuffixMenu), "")
			if err != nil {
				return err
			}
			menu = NewMacro("menu", tmpl, b.menuInitializer(templates))
		}

		items := asStreamItems(value)
		activate := func(m *Member, value any, existing bool) error {
			kind, err := p.Locator().Value(m.Field(SuffixType))
			if err != nil {
				return err
			}
			child, ok := b.lookup(ChildKind(kind))
			if !ok {
				p.Logger().Debug("stream member has unregistered type; value left uninitialized",
					zap.String("definition", def.String()),
					zap.String("member", m.Prefix().String()),
					zap.String("type", kind))
				return nil
			}
			if !existing {
				value = child.Block.Default()
			}
			return p.Activate(inits[ChildKind(kind)], value, m.Field(SuffixValue))
		}

		seq, err := NewSequence(p, prefix, SequenceHooks{
			Init: func(m *Member) error {
				if err := p.Locator().On(m.Field(SuffixDelete), EventClick, m.Delete); err != nil {
					return err
				}
				if menu == nil {
					return nil
				}
				return menu.Paste(p, m.Field(SuffixMenu), m.Prefix(), m)
			},
			Existing: func(m *Member, index int) error {
				var v any
				if index < len(items) {
					v = items[index].Value
				}
				return activate(m, v, true)
			},
			New: func(m *Member) error {
				return activate(m, nil, false)
			},
		})
		if seq == nil {
			return err
		}

		var errs []error
		errs = append(errs, err)
		for _, c := range b.children {
			t := templates[ChildKind(c.Name)]
			bindErr := p.Locator().On(prefix.Join(SuffixAdd, c.Name), EventClick, func() error {
				_, err := seq.Append(t)
				return err
			})
			errs = append(errs, bindErr)
		}
		return errors.Join(errs...)
	}
}

// menuInitializer binds the insert-before and insert-after triggers of one
// member's pasted menu. The menu is pasted with the member's prefix and the
// member itself as value.
func (b *StreamBlock) menuInitializer(templates map[ChildKind]*Macro) Initializer {
	return func(p *Page, value any, prefix Prefix) error {
		m, ok := value.(*Member)
		if !ok {
			return fmt.Errorf("blockfield: stream menu at %s activated without a member", prefix)
		}
		for _, c := range b.children {
			t := templates[ChildKind(c.Name)]
			if err := p.Locator().On(prefix.Join(SuffixBefore, c.Name), EventClick, func() error {
				_, err := m.InsertBefore(t)
				return err
			}); err != nil {
				return err
			}
			if err := p.Locator().On(prefix.Join(SuffixAfter, c.Name), EventClick, func() error {
				_, err := m.InsertAfter(t)
				return err
			}); err != nil {
				return err
			}
		}
		return nil
	}
}

// ValueFromForm implements Block. Deleted members and members with an
// unregistered type are dropped.
func (b *StreamBlock) ValueFromForm(form url.Values, prefix Prefix) (any, error) {
	members, err := liveMembersFromForm(form, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]StreamItem, 0, len(members))
	for _, mp := range members {
		kind := form.Get(mp.Child(SuffixType).String())
		child, ok := b.lookup(ChildKind(kind))
		if !ok {
			continue
		}
		v, err := child.Block.ValueFromForm(form, mp.Child(SuffixValue))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", mp, err)
		}
		out = append(out, StreamItem{Type: kind, Value: v})
	}
	return out, nil
}
