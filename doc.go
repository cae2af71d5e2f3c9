// Package blockfield provides composable block form fields for content
// editing pages: structs, lists, streams and leaf widgets that render on the
// server and are edited in the page without a reload.
//
// Every block instance owns a region of the document addressed by a Prefix.
// Hidden form fields inside that region carry everything the server needs to
// rebuild the value on submission, so the in-page runtime only has to keep
// those fields consistent while members are added, inserted and deleted.
//
// # Core Concepts
//
// A Block is a block type. It renders instances, declares the templates its
// runtime needs and returns an Initializer that activates a rendered
// instance:
//
//	speaker := blockfield.NewStructBlock([]blockfield.StructField{
//	    {Name: "name", Block: blockfield.NewTextInput("Name")},
//	    {Name: "image", Block: blockfield.NewChooser("Image", blockfield.WithPicker(pick))},
//	})
//	content := blockfield.NewStreamBlock([]blockfield.StreamChild{
//	    {Name: "heading", Block: blockfield.NewTextInput("Heading")},
//	    {Name: "speakers", Block: blockfield.NewListBlock(speaker)},
//	})
//
// Child addresses are derived by concatenation: a struct field lives at
// prefix-name, a sequence member at prefix-N and its value at
// prefix-N-value, a stream member's type tag at prefix-N-type.
//
// # Sequences
//
// ListBlock and StreamBlock are built on Sequence, which keeps a dense index
// over a sparse, soft-deleted, growing set of members:
//
//   - prefix-count is a monotonic allocation counter; new members are
//     addressed prefix-COUNT, so prefixes are never reused
//   - member-order holds the member's position among live members, always
//     0..N-1 in visual order
//   - member-deleted is set to "1" on deletion; the member is hidden but
//     keeps its fields
//
// Members fire a common Init hook and exactly one of Existing (rendered
// before activation) or New (created by an insert) when they become live.
//
// # Macros
//
// A Macro pastes a template: every Placeholder is replaced with a fresh
// prefix, the markup is spliced into the document and the bound initializer
// runs on the new prefix.
//
// # Pages and Forms
//
// A Page is the activation environment over a Locator (the document). A
// Form groups top-level Fields, renders them together with their encoded
// initial values, boots them on a Page and parses submissions back:
//
//	form := blockfield.NewForm(key)
//	form.Add(blockfield.NewField("content", content))
//	form.Document("Edit page", values).Render(ctx, w)
//
//	doc, _ := dom.Parse(r)
//	_ = form.Boot(blockfield.NewPage(doc))
//	_ = doc.Click("content-add-heading")
//	value, _ := form.Parse(doc.FormValues())
//
// Everything runs on the document's event loop; nothing here blocks or
// spawns goroutines.
package blockfield
