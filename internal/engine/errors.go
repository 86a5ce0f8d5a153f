package engine

import (
	"errors"
	"fmt"
)

// Error represents an input validation failure detected by an evaluator.
//
// Evaluation errors are deterministic: retrying the same call fails the same
// way. None of them leave partial results behind.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Position is the offending position (INVALID_POSITION).
	Position int64

	// Label identifies the offending rule (UNSUPPORTED_RULE).
	Label string
}

// ErrorCode categorizes evaluation errors.
type ErrorCode string

const (
	// ErrCodeInvalidPosition indicates a negative position.
	ErrCodeInvalidPosition ErrorCode = "INVALID_POSITION"

	// ErrCodeInvalidArgument indicates a negative count or skip length.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeUnsupportedRule indicates a rule the Overlay evaluator cannot
	// turn into a cyclic pattern.
	ErrCodeUnsupportedRule ErrorCode = "UNSUPPORTED_RULE"

	// ErrCodeUnknownStrategy indicates an evaluator name New does not know.
	ErrCodeUnknownStrategy ErrorCode = "UNKNOWN_STRATEGY"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeInvalidPosition:
		return fmt.Sprintf("%s: %s (position=%d)", e.Code, e.Message, e.Position)
	case ErrCodeUnsupportedRule:
		return fmt.Sprintf("%s: %s (label=%q)", e.Code, e.Message, e.Label)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidPosition reports whether err is an invalid position error.
// Uses errors.As to handle wrapped errors.
func IsInvalidPosition(err error) bool {
	return hasCode(err, ErrCodeInvalidPosition)
}

// IsInvalidArgument reports whether err is an invalid argument error.
func IsInvalidArgument(err error) bool {
	return hasCode(err, ErrCodeInvalidArgument)
}

// IsUnsupportedRule reports whether err is an unsupported rule error.
func IsUnsupportedRule(err error) bool {
	return hasCode(err, ErrCodeUnsupportedRule)
}

func hasCode(err error, code ErrorCode) bool {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

// NewInvalidPositionError creates an Error for a negative position.
func NewInvalidPositionError(position int64) *Error {
	return &Error{
		Code:     ErrCodeInvalidPosition,
		Message:  "position must be non-negative",
		Position: position,
	}
}

// NewInvalidArgumentError creates an Error for a bad count or skip length.
func NewInvalidArgumentError(name string, value int64) *Error {
	return &Error{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("%s must be non-negative, got %d", name, value),
	}
}

func newUnsupportedRuleError(label string) *Error {
	return &Error{
		Code:    ErrCodeUnsupportedRule,
		Message: "overlay evaluation requires divisor rules",
		Label:   label,
	}
}
