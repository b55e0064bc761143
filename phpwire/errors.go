package phpwire

import (
	"errors"
	"fmt"
)

// Session framing errors
var (
	ErrInvalidSessionKey      = errors.New("phpwire: session key contains '|'")
	ErrNotAssociative         = errors.New("phpwire: session list element is not a two-element pair")
	ErrUnsupportedSessionRoot = errors.New("phpwire: session root must be a map or a list of pairs")
)

// ErrCyclicValue reports a self-referential value handed to a
// renderer with no reference syntax, such as JSON.
var ErrCyclicValue = errors.New("phpwire: cyclic value has no JSON representation")

// UnsupportedTypeError reports a Go value with no wire representation
// and no field-list capability.
type UnsupportedTypeError struct {
	GoType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("phpwire: cannot serialize %s", e.GoType)
}

// UnknownTypeError reports an unrecognized type tag byte during
// decoding.
type UnknownTypeError struct {
	Tag    byte
	Offset int
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("phpwire: unknown type tag %q at offset %d", e.Tag, e.Offset)
}

// InvalidReferenceError reports a back-reference whose index is
// outside the range of values produced so far.
type InvalidReferenceError struct {
	Index    int
	Produced int
	Offset   int
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("phpwire: reference to value %d at offset %d, only %d produced", e.Index, e.Offset, e.Produced)
}

// NoSuchFieldError reports an object field that the resolved target
// type does not expose.
type NoSuchFieldError struct {
	Class string
	Field string
}

func (e *NoSuchFieldError) Error() string {
	return fmt.Sprintf("phpwire: class %q has no settable field %q", e.Class, e.Field)
}

// SyntaxError reports malformed or truncated wire text.
type SyntaxError struct {
	Offset int
	Msg    string
	Err    error // underlying cursor or parse error, may be nil
}

func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("phpwire: %s at offset %d: %v", e.Msg, e.Offset, e.Err)
	}
	return fmt.Sprintf("phpwire: %s at offset %d", e.Msg, e.Offset)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// DepthError reports input or a value nested beyond the configured
// recursion limit.
type DepthError struct {
	Depth int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("phpwire: nesting depth exceeds %d", e.Depth)
}
