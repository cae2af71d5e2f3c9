package blockfield

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pthm/blockfield/lib/encoding"
)

func TestSentinelErrors(t *testing.T) {
	// Verify sentinel errors are distinct
	errs := []error{
		ErrInvalidPrefix,
		ErrElementNotFound,
		ErrDuplicateID,
		ErrTemplateNotFound,
		ErrNotLive,
		ErrForeignMember,
		ErrMalformedField,
		ErrSequenceFull,
		ErrUnknownField,
		ErrInvalidPayload,
	}

	for i, err1 := range errs {
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestErrorMessages(t *testing.T) {
	// Errors declared by this package carry the "blockfield:" prefix
	errs := []error{
		ErrTemplateNotFound,
		ErrNotLive,
		ErrForeignMember,
		ErrMalformedField,
		ErrSequenceFull,
		ErrUnknownField,
		ErrInvalidPayload,
	}

	for _, err := range errs {
		if !strings.HasPrefix(err.Error(), "blockfield:") {
			t.Errorf("Error %q should start with 'blockfield:'", err.Error())
		}
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrElementNotFound", ErrElementNotFound, true},
		{"ErrTemplateNotFound", ErrTemplateNotFound, true},
		{"wrapped ErrElementNotFound", fmt.Errorf("wrapped: %w", ErrElementNotFound), true},
		{"other error", errors.New("other error"), false},
		{"ErrNotLive", ErrNotLive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsNotFound(tt.err)
			if result != tt.expect {
				t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, result, tt.expect)
			}
		})
	}
}

func TestIsMemberError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrNotLive", ErrNotLive, true},
		{"ErrForeignMember", ErrForeignMember, true},
		{"wrapped ErrNotLive", fmt.Errorf("wrapped: %w", ErrNotLive), true},
		{"ErrMalformedField", ErrMalformedField, false},
		{"other error", errors.New("other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsMemberError(tt.err)
			if result != tt.expect {
				t.Errorf("IsMemberError(%v) = %v, want %v", tt.err, result, tt.expect)
			}
		})
	}
}

func TestWrapEncodingError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		isPayload bool
	}{
		{"nil error", nil, false},
		{"encoding.ErrInvalidFormat", encoding.ErrInvalidFormat, true},
		{"encoding.ErrSignatureInvalid", encoding.ErrSignatureInvalid, true},
		{"encoding.ErrDecryptFailed", encoding.ErrDecryptFailed, true},
		{"other error passthrough", errors.New("other"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := wrapEncodingError(tt.err)

			if tt.err == nil {
				if result != nil {
					t.Errorf("wrapEncodingError(nil) = %v, want nil", result)
				}
				return
			}
			if !errors.Is(result, tt.err) {
				t.Errorf("wrapEncodingError(%v) lost the cause: %v", tt.err, result)
			}
			if got := errors.Is(result, ErrInvalidPayload); got != tt.isPayload {
				t.Errorf("errors.Is(%v, ErrInvalidPayload) = %v, want %v", result, got, tt.isPayload)
			}
		})
	}
}
