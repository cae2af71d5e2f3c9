package blockfield

import (
	"errors"

	"github.com/pthm/blockfield/lib/address"
	"github.com/pthm/blockfield/lib/dom"
	"github.com/pthm/blockfield/lib/encoding"
)

// Sentinel errors for block operations.
var (
	ErrInvalidPrefix    = address.ErrInvalidPrefix
	ErrElementNotFound  = dom.ErrNotFound
	ErrDuplicateID      = dom.ErrDuplicateID
	ErrTemplateNotFound = errors.New("blockfield: template not found")
	ErrNotLive          = errors.New("blockfield: sequence member is not live")
	ErrForeignMember    = errors.New("blockfield: member belongs to another sequence")
	ErrMalformedField   = errors.New("blockfield: malformed persisted field")
	ErrSequenceFull     = errors.New("blockfield: sequence allocation limit reached")
	ErrUnknownField     = errors.New("blockfield: unknown field")
	ErrInvalidPayload   = errors.New("blockfield: invalid value payload")
)

// IsNotFound checks if err reports a missing element or template.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrElementNotFound) || errors.Is(err, ErrTemplateNotFound)
}

// IsMemberError checks if err reports an operation on a member the sequence
// cannot act on.
func IsMemberError(err error) bool {
	return errors.Is(err, ErrNotLive) || errors.Is(err, ErrForeignMember)
}

// wrapEncodingError maps encoding failures onto ErrInvalidPayload while
// keeping the underlying cause.
func wrapEncodingError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, encoding.ErrInvalidFormat) ||
		errors.Is(err, encoding.ErrSignatureInvalid) ||
		errors.Is(err, encoding.ErrDecryptFailed) {
		return errors.Join(ErrInvalidPayload, err)
	}
	return err
}
