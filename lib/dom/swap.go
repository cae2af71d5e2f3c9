package dom

// SwapMode names where Insert splices new markup relative to its target.
// The values are the insertAdjacentHTML positions.
type SwapMode string

const (
	// SwapBeforeEnd appends inside the target, after its last child.
	SwapBeforeEnd SwapMode = "beforeend"

	// SwapAfterBegin prepends inside the target, before its first child.
	SwapAfterBegin SwapMode = "afterbegin"

	// SwapBeforeBegin inserts as the target's previous sibling.
	SwapBeforeBegin SwapMode = "beforebegin"

	// SwapAfterEnd inserts as the target's next sibling.
	SwapAfterEnd SwapMode = "afterend"
)

// EventClick is the event name fired by Click.
const EventClick = "click"
