// Package dom provides a headless HTML document for driving block editors
// outside a browser.
//
// A Document indexes every element carrying an id attribute so regions can be
// resolved by their address.Prefix, splices parsed markup relative to an
// addressed element, keeps per-element event handlers, and serialises its
// form controls the way a browser would on submission.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pthm/blockfield/lib/address"
)

// Sentinel errors for document operations.
var (
	ErrNotFound        = errors.New("dom: element not found")
	ErrDuplicateID     = errors.New("dom: duplicate element id")
	ErrNotInteractive  = errors.New("dom: element is hidden")
	ErrUnsupportedSwap = errors.New("dom: unsupported swap mode")
)

// Handler reacts to an event dispatched on an element. Handlers run to
// completion on the document's event loop.
type Handler func() error

type event struct {
	target address.Prefix
	name   string
}

// Document is an in-memory HTML document.
//
// Mutating methods are not safe for concurrent use. Events are serialised by
// Dispatch: a dispatch issued while another is running is queued and fired by
// the running loop once the current handler returns.
type Document struct {
	root     *html.Node
	ids      map[address.Prefix]*html.Node
	handlers map[address.Prefix]map[string][]Handler

	mu      sync.Mutex
	running bool
	queue   []event
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	d := &Document{
		root:     root,
		ids:      make(map[address.Prefix]*html.Node),
		handlers: make(map[address.Prefix]map[string][]Handler),
	}
	if err := d.checkIDs(root); err != nil {
		return nil, err
	}
	d.index(root)
	return d, nil
}

// ParseString reads a full HTML document from s.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Has reports whether an element with the given id exists.
func (d *Document) Has(id address.Prefix) bool {
	_, ok := d.ids[id]
	return ok
}

func (d *Document) element(id address.Prefix) (*html.Node, error) {
	n, ok := d.ids[id]
	if !ok {
		return nil, fmt.Errorf("%w: #%s", ErrNotFound, id)
	}
	return n, nil
}

// Value returns the current value of a form control. Textareas yield their
// text; selects yield the first selected option; every other element yields
// its value attribute.
func (d *Document) Value(id address.Prefix) (string, error) {
	n, err := d.element(id)
	if err != nil {
		return "", err
	}
	switch n.DataAtom {
	case atom.Textarea:
		return textContent(n), nil
	case atom.Select:
		values := selectedOptions(n)
		if len(values) == 0 {
			return "", nil
		}
		return values[0], nil
	}
	v, _ := attr(n, "value")
	return v, nil
}

// SetValue writes the value of a form control.
func (d *Document) SetValue(id address.Prefix, value string) error {
	n, err := d.element(id)
	if err != nil {
		return err
	}
	if n.DataAtom == atom.Textarea {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			n.RemoveChild(c)
			c = next
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
		return nil
	}
	setAttr(n, "value", value)
	return nil
}

// Text returns the concatenated text content of an element. Script bodies are
// returned verbatim.
func (d *Document) Text(id address.Prefix) (string, error) {
	n, err := d.element(id)
	if err != nil {
		return "", err
	}
	return textContent(n), nil
}

// Attr returns an attribute of an element.
func (d *Document) Attr(id address.Prefix, key string) (string, bool, error) {
	n, err := d.element(id)
	if err != nil {
		return "", false, err
	}
	v, ok := attr(n, key)
	return v, ok, nil
}

// SetAttr writes an attribute of an element.
func (d *Document) SetAttr(id address.Prefix, key, value string) error {
	n, err := d.element(id)
	if err != nil {
		return err
	}
	setAttr(n, key, value)
	return nil
}

// Hide marks an element hidden. Hidden elements stay in the document and
// their form controls are still submitted.
func (d *Document) Hide(id address.Prefix) error {
	n, err := d.element(id)
	if err != nil {
		return err
	}
	setAttr(n, "hidden", "")
	return nil
}

// Hidden reports whether the element or any of its ancestors is hidden.
func (d *Document) Hidden(id address.Prefix) (bool, error) {
	n, err := d.element(id)
	if err != nil {
		return false, err
	}
	for p := n; p != nil; p = p.Parent {
		if _, ok := attr(p, "hidden"); ok && p.Type == html.ElementNode {
			return true, nil
		}
	}
	return false, nil
}

// ChildIDs returns the ids of the element children of id, in document order.
// Children without an id are skipped.
func (d *Document) ChildIDs(id address.Prefix) ([]address.Prefix, error) {
	n, err := d.element(id)
	if err != nil {
		return nil, err
	}
	var out []address.Prefix
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if v, ok := attr(c, "id"); ok && v != "" {
			out = append(out, address.Prefix(v))
		}
	}
	return out, nil
}

// Insert parses markup and splices the resulting nodes relative to target.
// Ids introduced by markup must not already exist in the document.
func (d *Document) Insert(target address.Prefix, mode SwapMode, markup string) error {
	n, err := d.element(target)
	if err != nil {
		return err
	}

	var parent *html.Node
	switch mode {
	case SwapBeforeEnd, SwapAfterBegin:
		parent = n
	case SwapBeforeBegin, SwapAfterEnd:
		parent = n.Parent
		if parent == nil {
			return fmt.Errorf("%w: #%s has no parent", ErrNotFound, target)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedSwap, mode)
	}

	nodes, err := html.ParseFragment(strings.NewReader(markup), fragmentContext(parent))
	if err != nil {
		return err
	}
	for _, node := range nodes {
		if err := d.checkIDs(node); err != nil {
			return err
		}
	}

	switch mode {
	case SwapBeforeEnd:
		for _, node := range nodes {
			n.AppendChild(node)
		}
	case SwapAfterBegin:
		ref := n.FirstChild
		for _, node := range nodes {
			n.InsertBefore(node, ref)
		}
	case SwapBeforeBegin:
		for _, node := range nodes {
			parent.InsertBefore(node, n)
		}
	case SwapAfterEnd:
		ref := n.NextSibling
		for _, node := range nodes {
			parent.InsertBefore(node, ref)
		}
	}
	for _, node := range nodes {
		d.index(node)
	}
	return nil
}

// On registers h for the named event on element id.
func (d *Document) On(id address.Prefix, name string, h Handler) error {
	if _, err := d.element(id); err != nil {
		return err
	}
	byName, ok := d.handlers[id]
	if !ok {
		byName = make(map[string][]Handler)
		d.handlers[id] = byName
	}
	byName[name] = append(byName[name], h)
	return nil
}

// Dispatch fires the named event on element id. Handlers registered for the
// element run in registration order; the first failing handler stops the
// event. Hidden elements cannot receive events.
func (d *Document) Dispatch(id address.Prefix, name string) error {
	d.mu.Lock()
	d.queue = append(d.queue, event{target: id, name: name})
	if d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = true

	var errs []error
	for len(d.queue) > 0 {
		ev := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()
		err := d.fire(ev)
		d.mu.Lock()
		if err != nil {
			errs = append(errs, err)
		}
	}
	d.running = false
	d.mu.Unlock()
	return errors.Join(errs...)
}

// Click dispatches a click event.
func (d *Document) Click(id address.Prefix) error {
	return d.Dispatch(id, EventClick)
}

func (d *Document) fire(ev event) error {
	hidden, err := d.Hidden(ev.target)
	if err != nil {
		return err
	}
	if hidden {
		return fmt.Errorf("%w: #%s", ErrNotInteractive, ev.target)
	}
	for _, h := range d.handlers[ev.target][ev.name] {
		if err := h(); err != nil {
			return err
		}
	}
	return nil
}

// FormValues serialises named form controls in document order, following
// browser submission rules for checkboxes, radios and buttons.
func (d *Document) FormValues() url.Values {
	values := url.Values{}
	walk(d.root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		name, ok := attr(n, "name")
		if !ok || name == "" {
			return
		}
		if _, disabled := attr(n, "disabled"); disabled {
			return
		}
		switch n.DataAtom {
		case atom.Input:
			kind, _ := attr(n, "type")
			switch strings.ToLower(kind) {
			case "button", "submit", "reset", "image", "file":
				return
			case "checkbox", "radio":
				if _, checked := attr(n, "checked"); !checked {
					return
				}
				v, ok := attr(n, "value")
				if !ok {
					v = "on"
				}
				values.Add(name, v)
				return
			}
			v, _ := attr(n, "value")
			values.Add(name, v)
		case atom.Textarea:
			values.Add(name, textContent(n))
		case atom.Select:
			for _, v := range selectedOptions(n) {
				values.Add(name, v)
			}
		}
	})
	return values
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning an empty string on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (d *Document) checkIDs(root *html.Node) error {
	seen := make(map[string]struct{})
	var err error
	walk(root, func(n *html.Node) {
		if err != nil || n.Type != html.ElementNode {
			return
		}
		id, ok := attr(n, "id")
		if !ok || id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			err = fmt.Errorf("%w: #%s", ErrDuplicateID, id)
			return
		}
		if _, exists := d.ids[address.Prefix(id)]; exists {
			err = fmt.Errorf("%w: #%s", ErrDuplicateID, id)
			return
		}
		seen[id] = struct{}{}
	})
	return err
}

func (d *Document) index(root *html.Node) {
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if id, ok := attr(n, "id"); ok && id != "" {
			d.ids[address.Prefix(id)] = n
		}
	})
}

func fragmentContext(parent *html.Node) *html.Node {
	if parent.Type == html.ElementNode {
		return parent
	}
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

func selectedOptions(sel *html.Node) []string {
	var all, selected []string
	walk(sel, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.Option {
			return
		}
		v, ok := attr(n, "value")
		if !ok {
			v = strings.TrimSpace(textContent(n))
		}
		all = append(all, v)
		if _, ok := attr(n, "selected"); ok {
			selected = append(selected, v)
		}
	})
	if len(selected) == 0 && len(all) > 0 {
		if _, multiple := attr(sel, "multiple"); !multiple {
			return all[:1]
		}
	}
	return selected
}
