package blockfield

import (
	"cmp"
	"context"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/pthm/blockfield/lib/dom"
)

// TestPage is a booted form loaded into a headless document.
//
// Provides convenience methods for driving triggers and asserting on the
// persisted hidden fields, the live order of sequences and the parsed
// submission.
type TestPage struct {
	Form *Form
	Doc  *dom.Document
	Page *Page
	HTML string
}

// TestRender renders form with values, loads the result into a headless
// document and boots it.
//
//	tp, err := blockfield.TestRender(form, map[string]any{"content": items})
//	if err := tp.Click("content-add-heading"); err != nil {
//	    t.Fatal(err)
//	}
//	got, _ := tp.Submit()
func TestRender(form *Form, values map[string]any, opts ...PageOption) (*TestPage, error) {
	return TestRenderWithContext(context.Background(), form, values, opts...)
}

// TestRenderWithContext renders with a custom context.
func TestRenderWithContext(ctx context.Context, form *Form, values map[string]any, opts ...PageOption) (*TestPage, error) {
	html, err := RenderString(ctx, form.Document("test", values))
	if err != nil {
		return nil, err
	}
	doc, err := dom.ParseString(html)
	if err != nil {
		return nil, err
	}
	page := NewPage(doc, opts...)
	if err := form.Boot(page); err != nil {
		return nil, err
	}
	return &TestPage{
		Form: form,
		Doc:  doc,
		Page: page,
		HTML: html,
	}, nil
}

// Click dispatches a click on the trigger at id.
func (tp *TestPage) Click(id Prefix) error {
	return tp.Doc.Click(id)
}

// Value returns the current value of the control at id, or "" if missing.
func (tp *TestPage) Value(id Prefix) string {
	v, err := tp.Doc.Value(id)
	if err != nil {
		return ""
	}
	return v
}

// Has reports whether an element exists at id.
func (tp *TestPage) Has(id Prefix) bool {
	return tp.Doc.Has(id)
}

// Hidden reports whether the element at id is hidden.
func (tp *TestPage) Hidden(id Prefix) bool {
	hidden, err := tp.Doc.Hidden(id)
	return err == nil && hidden
}

// Values returns the form values a browser would submit.
func (tp *TestPage) Values() url.Values {
	return tp.Doc.FormValues()
}

// Submit parses the current document state through the form.
func (tp *TestPage) Submit() (map[string]any, error) {
	return tp.Form.Parse(tp.Values())
}

// HTMLContains checks if the current document contains a substring.
func (tp *TestPage) HTMLContains(substr string) bool {
	return strings.Contains(tp.Doc.String(), substr)
}

// Count returns the persisted allocation counter of the sequence at prefix.
func (tp *TestPage) Count(prefix Prefix) int {
	n, _ := strconv.Atoi(tp.Value(prefix.Child(SuffixCount)))
	return n
}

// LiveOrder returns the prefixes of the non-deleted members of the sequence
// at prefix, sorted by their persisted order.
func (tp *TestPage) LiveOrder(prefix Prefix) []Prefix {
	type entry struct {
		prefix Prefix
		order  int
	}
	var live []entry
	for i := 0; i < tp.Count(prefix); i++ {
		mp := prefix.Index(i)
		if !tp.Has(mp.Child(SuffixContainer)) || isDeletedFlag(tp.Value(mp.Child(SuffixDeleted))) {
			continue
		}
		order, err := strconv.Atoi(tp.Value(mp.Child(SuffixOrder)))
		if err != nil {
			order = -1
		}
		live = append(live, entry{prefix: mp, order: order})
	}
	slices.SortStableFunc(live, func(a, b entry) int { return cmp.Compare(a.order, b.order) })
	out := make([]Prefix, len(live))
	for i, e := range live {
		out[i] = e.prefix
	}
	return out
}

// Orders returns the persisted order values of the live members of the
// sequence at prefix, in allocation order.
func (tp *TestPage) Orders(prefix Prefix) []int {
	var out []int
	for i := 0; i < tp.Count(prefix); i++ {
		mp := prefix.Index(i)
		if !tp.Has(mp.Child(SuffixContainer)) || isDeletedFlag(tp.Value(mp.Child(SuffixDeleted))) {
			continue
		}
		n, _ := strconv.Atoi(tp.Value(mp.Child(SuffixOrder)))
		out = append(out, n)
	}
	return out
}

// DOMOrder returns the ids of the visible member containers of the sequence
// at prefix in document order.
func (tp *TestPage) DOMOrder(prefix Prefix) []Prefix {
	ids, err := tp.Doc.ChildIDs(prefix.Child(SuffixList))
	if err != nil {
		return nil
	}
	var out []Prefix
	for _, id := range ids {
		if tp.Hidden(id) {
			continue
		}
		out = append(out, Prefix(strings.TrimSuffix(id.String(), "-"+SuffixContainer)))
	}
	return out
}
