package blockfield

import "github.com/pthm/blockfield/lib/address"

// Prefix is the unique address of one widget instance's region.
type Prefix = address.Prefix

// Placeholder is the sentinel substituted with the target prefix at paste time.
const Placeholder = address.Placeholder

// Suffix tokens used when deriving child addresses.
const (
	SuffixValue     = address.Value
	SuffixType      = address.Type
	SuffixCount     = address.Count
	SuffixOrder     = address.Order
	SuffixDeleted   = address.Deleted
	SuffixContainer = address.Container
	SuffixList      = address.List
	SuffixAdd       = address.Add
	SuffixDelete    = address.Delete
	SuffixMenu      = address.Menu
	SuffixData      = address.Data
	SuffixField     = address.Field
	SuffixButton    = address.Button
	SuffixBefore    = address.Before
	SuffixAfter     = address.After
)
