package fincal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Failure kinds. Every error returned by a Ledger operation matches exactly
// one of them with errors.Is.
var (
	// ErrValidation reports bad or missing user input.
	ErrValidation = errors.New("invalid input")
	// ErrInvariant reports an operation that would break a ledger invariant.
	ErrInvariant = errors.New("invariant violation")
	// ErrNotFound reports a reference to a record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrOverAllocation is a soft warning: the allocation exceeds the
	// available balance and needs an explicit confirmation.
	ErrOverAllocation = errors.New("allocation exceeds available balance")
)

// Specific failures.
var (
	ErrInvalidAmount           = kindError{ErrValidation, "amount must be greater than 0"}
	ErrInvalidStatus           = kindError{ErrValidation, "invalid obligation status"}
	ErrInvalidAdjustment       = kindError{ErrValidation, "invalid adjustment"}
	ErrDuplicateName           = kindError{ErrInvariant, "a fund with that name already exists"}
	ErrInsufficientFundBalance = kindError{ErrInvariant, "insufficient fund balance"}
	ErrNegativeBalanceRejected = kindError{ErrInvariant, "adjustment would leave fund negative"}
	ErrNonZeroBalance          = kindError{ErrInvariant, "only funds with a zero balance can be deleted"}
	ErrFundInUse               = kindError{ErrInvariant, "fund has allocations"}
)

// kindError is a specific failure that also matches its kind.
type kindError struct {
	kind error
	msg  string
}

func (e kindError) Error() string { return e.msg }

func (e kindError) Is(target error) bool { return target == e.kind }

// OverAllocationError details a soft over-allocation warning.
type OverAllocationError struct {
	Available decimal.Decimal
	Amount    decimal.Decimal
	Currency  string
}

func (e *OverAllocationError) Error() string {
	return fmt.Sprintf("allocating %s but only %s is available", M(e.Amount, e.Currency), M(e.Available, e.Currency))
}

func (e *OverAllocationError) Is(target error) bool { return target == ErrOverAllocation }

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q %w", kind, id, ErrNotFound)
}
