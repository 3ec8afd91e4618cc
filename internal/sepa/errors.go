package sepa

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch indicates a batch without payment instructions.
var ErrEmptyBatch = errors.New("sepa: batch contains no payment instructions")

// ValidationError reports a structural precondition failure. Field uses
// dotted paths ("debtor.iban", "payments[2].amount") so callers can point
// at the offending record.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sepa: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// PrecisionError reports an amount that cannot be represented in euro
// cents without loss. Such amounts are rejected, never rounded.
type PrecisionError struct {
	Field string
	Value string
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("sepa: amount %s %q has more than two fractional digits", e.Field, e.Value)
}

func validationErr(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
