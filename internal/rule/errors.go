package rule

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes rule construction errors.
type ErrorCode string

const (
	// ErrCodeInvalidRule indicates an empty label, a nil predicate or a
	// non-positive divisor.
	ErrCodeInvalidRule ErrorCode = "INVALID_RULE"

	// ErrCodeDuplicateLabel indicates two rules in one set share a label.
	ErrCodeDuplicateLabel ErrorCode = "DUPLICATE_LABEL"

	// ErrCodeUnknownLabel indicates Without was asked to remove a label the
	// set does not contain.
	ErrCodeUnknownLabel ErrorCode = "UNKNOWN_LABEL"
)

// Error is returned by rule and set construction.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Label is the offending label, if any.
	Label string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s: %s (label=%q)", e.Code, e.Message, e.Label)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidRule reports whether err is an invalid rule error.
func IsInvalidRule(err error) bool {
	return hasCode(err, ErrCodeInvalidRule)
}

// IsDuplicateLabel reports whether err is a duplicate label error.
func IsDuplicateLabel(err error) bool {
	return hasCode(err, ErrCodeDuplicateLabel)
}

// IsUnknownLabel reports whether err is an unknown label error.
func IsUnknownLabel(err error) bool {
	return hasCode(err, ErrCodeUnknownLabel)
}

func hasCode(err error, code ErrorCode) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

func newInvalidRuleError(label, message string) *Error {
	return &Error{Code: ErrCodeInvalidRule, Message: message, Label: label}
}

func newDuplicateLabelError(label string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateLabel,
		Message: "label is registered more than once",
		Label:   label,
	}
}

func newUnknownLabelError(label string) *Error {
	return &Error{
		Code:    ErrCodeUnknownLabel,
		Message: "no rule with this label",
		Label:   label,
	}
}
