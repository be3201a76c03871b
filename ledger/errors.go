package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is matched by every InvalidAmountError.
var ErrInvalidAmount = errors.New("invalid amount")

// InvalidAmountError is returned when an amount that must be positive is not.
// Operations returning it have not mutated anything.
type InvalidAmountError struct {
	Field  string
	Amount decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	field := e.Field
	if field == "" {
		field = "amount"
	}
	return fmt.Sprintf("invalid %s %s: must be greater than zero", field, e.Amount.String())
}

// Is makes errors.Is(err, ErrInvalidAmount) succeed.
func (e *InvalidAmountError) Is(target error) bool {
	return target == ErrInvalidAmount
}

// FieldError describes a single invalid field of a record.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ValidationErrors wraps multiple validation errors
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors occurred", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}
