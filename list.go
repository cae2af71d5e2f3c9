package blockfield

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/pthm/blockfield/lib/address"
)

// ListBlock is a sequence whose members all share one child block type. The
// child of member prefix-N is addressed at prefix-N-value.
type ListBlock struct {
	child Block
	label string
	def   any
}

// NewListBlock creates a list block of child.
func NewListBlock(child Block, opts ...Option) *ListBlock {
	if child == nil {
		panic("blockfield: list block has no child block")
	}
	o := buildOptions(opts)
	return &ListBlock{
		child: child,
		label: o.label,
		def:   o.defaultOr([]any{}),
	}
}

// Child returns the member block type.
func (b *ListBlock) Child() Block {
	return b.child
}

// Default implements Block.
func (b *ListBlock) Default() any { return b.def }

// Render implements Block.
func (b *ListBlock) Render(value any, prefix Prefix) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		values := asList(value)
		if err := writef(w, `<div class="block-list"><label>%s</label>`, esc(b.label)); err != nil {
			return err
		}
		if err := hiddenInput(w, prefix.Child(SuffixCount), strconv.Itoa(len(values))); err != nil {
			return err
		}
		if err := writef(w, `<ul id="%s">`, esc(prefix.Child(SuffixList).String())); err != nil {
			return err
		}
		for i, v := range values {
			if err := b.renderMember(ctx, w, v, prefix.Index(i), strconv.Itoa(i)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</ul>`); err != nil {
			return err
		}
		if err := button(w, prefix.Child(SuffixAdd), "Add"); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func (b *ListBlock) renderMember(ctx context.Context, w io.Writer, value any, mp Prefix, order string) error {
	if err := writef(w, `<li id="%s" class="block-list-member">`, esc(mp.Child(SuffixContainer).String())); err != nil {
		return err
	}
	if err := hiddenInput(w, mp.Child(SuffixDeleted), ""); err != nil {
		return err
	}
	if err := hiddenInput(w, mp.Child(SuffixOrder), order); err != nil {
		return err
	}
	if err := button(w, mp.Child(SuffixDelete), "Delete"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `<div class="block-list-value">`); err != nil {
		return err
	}
	if err := b.child.Render(value, mp.Child(SuffixValue)).Render(ctx, w); err != nil {
		return err
	}
	_, err := io.WriteString(w, `</div></li>`)
	return err
}

// Declarations implements Block. The member template is declared at
// def-template; the child's own declarations live under def-item.
func (b *ListBlock) Declarations(def Prefix) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		err := templateScript(ctx, w, address.TemplateID(def, ""), func(ctx context.Context, w io.Writer) error {
			return b.renderMember(ctx, w, b.child.Default(), Prefix(Placeholder), "")
		})
		if err != nil {
			return err
		}
		return b.child.Declarations(def.Child(address.Item)).Render(ctx, w)
	})
}

// Initializer implements Block.
//
// Pre-existing members activate the child with their value from the list's
// initial value; members added through the add button activate it with the
// child's default.
func (b *ListBlock) Initializer(def Prefix) Initializer {
	childInit := b.child.Initializer(def.Child(address.Item))

	return func(p *Page, value any, prefix Prefix) error {
		tmpl, err := p.Template(def, "")
		if err != nil {
			return err
		}
		member := NewMacro(def.String(), tmpl, nil)
		values := asList(value)

		seq, err := NewSequence(p, prefix, SequenceHooks{
			Init: func(m *Member) error {
				return p.Locator().On(m.Field(SuffixDelete), EventClick, m.Delete)
			},
			Existing: func(m *Member, index int) error {
				v := b.child.Default()
				if index < len(values) {
					v = values[index]
				}
				return p.Activate(childInit, v, m.Field(SuffixValue))
			},
			New: func(m *Member) error {
				return p.Activate(childInit, b.child.Default(), m.Field(SuffixValue))
			},
		})
		if seq == nil {
			return err
		}

		bindErr := p.Locator().On(prefix.Child(SuffixAdd), EventClick, func() error {
			_, err := seq.Append(member)
			return err
		})
		return errors.Join(err, bindErr)
	}
}

// ValueFromForm implements Block. Deleted members are dropped and the rest
// are returned in their submitted order.
func (b *ListBlock) ValueFromForm(form url.Values, prefix Prefix) (any, error) {
	members, err := liveMembersFromForm(form, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(members))
	for _, mp := range members {
		v, err := b.child.ValueFromForm(form, mp.Child(SuffixValue))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", mp, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// liveMembersFromForm returns the prefixes of the non-deleted members of the
// sequence submitted at prefix, sorted by their order fields.
func liveMembersFromForm(form url.Values, prefix Prefix) ([]Prefix, error) {
	countKey := prefix.Child(SuffixCount).String()
	raw := strings.TrimSpace(form.Get(countKey))
	if raw == "" {
		return nil, nil
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: %s=%q", ErrMalformedField, countKey, raw)
	}
	// every submitted member carries at least its order field
	if count > len(form) || count > MaxSequenceCount {
		return nil, fmt.Errorf("%w: %s=%d exceeds submitted fields", ErrMalformedField, countKey, count)
	}

	type entry struct {
		prefix Prefix
		order  int
	}
	var live []entry
	for i := 0; i < count; i++ {
		mp := prefix.Index(i)
		if isDeletedFlag(form.Get(mp.Child(SuffixDeleted).String())) {
			continue
		}
		orderKey := mp.Child(SuffixOrder).String()
		if _, ok := form[orderKey]; !ok {
			// allocated but never submitted, e.g. a failed paste
			continue
		}
		order, err := strconv.Atoi(strings.TrimSpace(form.Get(orderKey)))
		if err != nil || order < 0 {
			return nil, fmt.Errorf("%w: %s=%q", ErrMalformedField, orderKey, form.Get(orderKey))
		}
		live = append(live, entry{prefix: mp, order: order})
	}
	slices.SortStableFunc(live, func(a, b entry) int { return cmp.Compare(a.order, b.order) })

	out := make([]Prefix, len(live))
	for i, e := range live {
		out[i] = e.prefix
	}
	return out, nil
}
