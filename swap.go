package blockfield

import "github.com/pthm/blockfield/lib/dom"

// SwapMode defines where pasted markup is spliced relative to its target.
//
// The four modes correspond to the four sequence insert positions:
//
//	Append       -> SwapBeforeEnd on the member list
//	Prepend      -> SwapAfterBegin on the member list
//	InsertBefore -> SwapBeforeBegin on the member container
//	InsertAfter  -> SwapAfterEnd on the member container
type SwapMode = dom.SwapMode

const (
	// SwapBeforeEnd appends inside the target, after its last child.
	SwapBeforeEnd = dom.SwapBeforeEnd

	// SwapAfterBegin prepends inside the target, before its first child.
	SwapAfterBegin = dom.SwapAfterBegin

	// SwapBeforeBegin inserts the markup as the target's previous sibling.
	SwapBeforeBegin = dom.SwapBeforeBegin

	// SwapAfterEnd inserts the markup as the target's next sibling.
	SwapAfterEnd = dom.SwapAfterEnd
)

// EventClick is the event bound by add, delete and insert triggers.
const EventClick = dom.EventClick

// Handler reacts to an event dispatched on an addressed element.
type Handler = dom.Handler
