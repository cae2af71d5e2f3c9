package blockfield

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// MaxSequenceCount bounds the allocation counter of a sequence. A persisted
// counter above it is treated as malformed.
const MaxSequenceCount = 10000

// SequenceHooks are the member initialization callbacks of a Sequence.
//
// Every member fires Init exactly once when it becomes live, followed by
// exactly one of Existing (members rendered before activation) or New
// (members created by an insert operation). Any hook may be nil.
type SequenceHooks struct {
	// Init performs wiring that does not depend on how the member came to
	// exist, such as binding its delete control.
	Init func(m *Member) error

	// Existing activates a pre-existing member at its dense position.
	Existing func(m *Member, index int) error

	// New activates a freshly inserted member.
	New func(m *Member) error
}

// Member is one slot of a Sequence. Members are soft-deleted: a deleted
// member keeps its prefix and hidden fields but leaves the live order.
type Member struct {
	seq       *Sequence
	prefix    Prefix
	index     int
	deleted   bool
	activated bool
}

// Prefix returns the member's address.
func (m *Member) Prefix() Prefix {
	return m.prefix
}

// Field returns the address of one of the member's sub-regions.
func (m *Member) Field(suffix string) Prefix {
	return m.prefix.Child(suffix)
}

// Index returns the member's position among live members. Deleted members
// keep their last index.
func (m *Member) Index() int {
	return m.index
}

// Deleted reports whether the member has been soft-deleted.
func (m *Member) Deleted() bool {
	return m.deleted
}

// Sequence returns the owning sequence.
func (m *Member) Sequence() *Sequence {
	return m.seq
}

// Delete soft-deletes the member.
func (m *Member) Delete() error {
	return m.seq.Delete(m)
}

// InsertBefore creates a new member from t directly before this one.
func (m *Member) InsertBefore(t *Macro) (*Member, error) {
	return m.seq.InsertBefore(m, t)
}

// InsertAfter creates a new member from t directly after this one.
func (m *Member) InsertAfter(t *Macro) (*Member, error) {
	return m.seq.InsertAfter(m, t)
}

// Sequence is the ordered, mutable collection of members rendered at one
// prefix.
//
// It persists three kinds of hidden fields: a monotonic allocation counter at
// prefix-count, and per member a dense live position at member-order and a
// soft-delete flag at member-deleted. Live members always carry the orders
// 0..Len()-1 in visual order. New members are addressed prefix-N where N is
// the allocation counter before the insert, so prefixes are never reused.
//
// A Sequence is driven from the document's event loop and is not safe for
// concurrent use.
type Sequence struct {
	page   *Page
	prefix Prefix
	hooks  SequenceHooks
	count  int
	live   []*Member
	slots  map[Prefix]*Member
}

// NewSequence activates the sequence rendered at prefix.
//
// Persisted members are read in allocation order; deleted ones are recorded
// but stay out of the live order, and live ones are sorted by their stored
// order and renumbered densely. Hooks then fire for each live member in
// ascending index order.
//
// Structural faults (a missing or malformed counter or order field) return a
// nil sequence. Hook failures do not stop sibling members from activating:
// the sequence is returned together with the joined hook errors.
func NewSequence(p *Page, prefix Prefix, hooks SequenceHooks) (*Sequence, error) {
	s := &Sequence{
		page:   p,
		prefix: prefix,
		hooks:  hooks,
		slots:  make(map[Prefix]*Member),
	}

	count, err := s.readInt(prefix.Child(SuffixCount))
	if err != nil {
		return nil, err
	}
	if count > MaxSequenceCount {
		return nil, fmt.Errorf("%w: %s=%d exceeds %d", ErrMalformedField, prefix.Child(SuffixCount), count, MaxSequenceCount)
	}
	s.count = count

	type stored struct {
		member *Member
		order  int
	}
	var found []stored
	for i := 0; i < count; i++ {
		mp := prefix.Index(i)
		m := &Member{seq: s, prefix: mp}
		s.slots[mp] = m

		deleted, err := s.readDeleted(mp)
		if err != nil {
			return nil, err
		}
		if deleted {
			m.deleted = true
			if order, err := s.readInt(mp.Child(SuffixOrder)); err == nil {
				m.index = order
			}
			if err := s.loc().Hide(mp.Child(SuffixContainer)); err != nil && !IsNotFound(err) {
				return nil, err
			}
			continue
		}

		order, err := s.readInt(mp.Child(SuffixOrder))
		if err != nil {
			return nil, err
		}
		found = append(found, stored{member: m, order: order})
	}

	slices.SortStableFunc(found, func(a, b stored) int {
		return cmp.Compare(a.order, b.order)
	})
	s.live = make([]*Member, 0, len(found))
	for _, f := range found {
		s.live = append(s.live, f.member)
	}
	for i, f := range found {
		f.member.index = i
		if f.order != i {
			if err := s.writeOrder(f.member); err != nil {
				return nil, err
			}
		}
	}

	var errs []error
	for i, m := range s.live {
		if err := s.activate(m, true, i); err != nil {
			s.page.Logger().Error("sequence member activation failed",
				zap.String("sequence", prefix.String()),
				zap.String("member", m.prefix.String()),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return s, errors.Join(errs...)
}

// Prefix returns the sequence address.
func (s *Sequence) Prefix() Prefix {
	return s.prefix
}

// Count returns the number of members ever allocated, deleted ones included.
// It is the suffix of the next member prefix, not the live length.
func (s *Sequence) Count() int {
	return s.count
}

// Len returns the number of live members.
func (s *Sequence) Len() int {
	return len(s.live)
}

// Members returns the live members in order.
func (s *Sequence) Members() []*Member {
	return slices.Clone(s.live)
}

// Member returns the live member at index i.
func (s *Sequence) Member(i int) (*Member, bool) {
	if i < 0 || i >= len(s.live) {
		return nil, false
	}
	return s.live[i], true
}

// Lookup returns the member allocated at prefix, live or deleted.
func (s *Sequence) Lookup(prefix Prefix) (*Member, bool) {
	m, ok := s.slots[prefix]
	return m, ok
}

// Append creates a member from t at the end of the sequence.
func (s *Sequence) Append(t *Macro) (*Member, error) {
	return s.insert(t, len(s.live), s.prefix.Child(SuffixList), SwapBeforeEnd)
}

// Prepend creates a member from t at the start of the sequence.
func (s *Sequence) Prepend(t *Macro) (*Member, error) {
	return s.insert(t, 0, s.prefix.Child(SuffixList), SwapAfterBegin)
}

// InsertBefore creates a member from t at m's position, shifting m and every
// later member down by one. Inserting before the first member prepends.
func (s *Sequence) InsertBefore(m *Member, t *Macro) (*Member, error) {
	if err := s.checkLive(m); err != nil {
		return nil, err
	}
	if m.index == 0 {
		return s.Prepend(t)
	}
	return s.insert(t, m.index, m.Field(SuffixContainer), SwapBeforeBegin)
}

// InsertAfter creates a member from t directly after m. Inserting after the
// last member appends.
func (s *Sequence) InsertAfter(m *Member, t *Macro) (*Member, error) {
	if err := s.checkLive(m); err != nil {
		return nil, err
	}
	if m.index == len(s.live)-1 {
		return s.Append(t)
	}
	return s.insert(t, m.index+1, m.Field(SuffixContainer), SwapAfterEnd)
}

// Delete soft-deletes m: later members move up by one, the deleted flag is
// persisted and the member's container is hidden. Deletion is terminal.
func (s *Sequence) Delete(m *Member) error {
	if err := s.checkLive(m); err != nil {
		return err
	}
	k := m.index
	s.live = slices.Delete(s.live, k, k+1)
	m.deleted = true

	if err := s.loc().SetValue(m.Field(SuffixDeleted), "1"); err != nil {
		return err
	}
	if err := s.loc().Hide(m.Field(SuffixContainer)); err != nil {
		return err
	}
	if err := s.renumber(k); err != nil {
		return err
	}

	s.page.Logger().Debug("sequence member deleted",
		zap.String("sequence", s.prefix.String()),
		zap.String("member", m.prefix.String()),
		zap.Int("index", k),
		zap.Int("live", len(s.live)))
	return nil
}

// insert allocates the next prefix, pastes t relative to target and splices
// the new member into the live order at position at. The counter is
// persisted before pasting, so a failed paste still consumes its prefix.
func (s *Sequence) insert(t *Macro, at int, target Prefix, mode SwapMode) (*Member, error) {
	if s.count >= MaxSequenceCount {
		return nil, fmt.Errorf("%w: %s", ErrSequenceFull, s.prefix)
	}
	prefix := s.prefix.Index(s.count)
	s.count++
	if err := s.loc().SetValue(s.prefix.Child(SuffixCount), strconv.Itoa(s.count)); err != nil {
		return nil, err
	}
	if err := t.PasteAt(s.page, target, mode, prefix, nil); err != nil {
		return nil, err
	}

	m := &Member{seq: s, prefix: prefix, index: at}
	s.slots[prefix] = m
	s.live = slices.Insert(s.live, at, m)
	if err := s.renumber(at); err != nil {
		return nil, err
	}

	s.page.Logger().Debug("sequence member inserted",
		zap.String("sequence", s.prefix.String()),
		zap.String("member", prefix.String()),
		zap.String("template", t.Name()),
		zap.Int("index", at),
		zap.Int("count", s.count))

	if err := s.activate(m, false, at); err != nil {
		return m, err
	}
	return m, nil
}

// activate fires the common hook and exactly one variant hook.
func (s *Sequence) activate(m *Member, existing bool, index int) error {
	if m.activated {
		return fmt.Errorf("blockfield: member %s activated twice", m.prefix)
	}
	m.activated = true

	if s.hooks.Init != nil {
		if err := s.hooks.Init(m); err != nil {
			return err
		}
	}
	if existing {
		if s.hooks.Existing != nil {
			return s.hooks.Existing(m, index)
		}
		return nil
	}
	if s.hooks.New != nil {
		return s.hooks.New(m)
	}
	return nil
}

// renumber rewrites the index and persisted order of live members from
// position from onwards.
func (s *Sequence) renumber(from int) error {
	for i := from; i < len(s.live); i++ {
		m := s.live[i]
		m.index = i
		if err := s.writeOrder(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sequence) checkLive(m *Member) error {
	if m == nil {
		return ErrNotLive
	}
	if m.seq != s {
		return fmt.Errorf("%w: %s", ErrForeignMember, m.prefix)
	}
	if m.deleted || m.index < 0 || m.index >= len(s.live) || s.live[m.index] != m {
		return fmt.Errorf("%w: %s", ErrNotLive, m.prefix)
	}
	return nil
}

func (s *Sequence) writeOrder(m *Member) error {
	return s.loc().SetValue(m.Field(SuffixOrder), strconv.Itoa(m.index))
}

func (s *Sequence) readInt(p Prefix) (int, error) {
	raw, err := s.loc().Value(p)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformedField, p, raw)
	}
	return n, nil
}

// readDeleted treats a missing deleted field as live.
func (s *Sequence) readDeleted(mp Prefix) (bool, error) {
	raw, err := s.loc().Value(mp.Child(SuffixDeleted))
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return isDeletedFlag(raw), nil
}

func (s *Sequence) loc() Locator {
	return s.page.Locator()
}

func isDeletedFlag(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "", "0", "false":
		return false
	default:
		return true
	}
}
