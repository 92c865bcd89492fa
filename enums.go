package fincal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the payoff status of an obligation.
type Status int

const (
	// Pending obligations are not yet fully covered by allocations.
	Pending Status = iota
	// Covered obligations have allocations matching their amount.
	Covered
	// Paid obligations have been settled. The status is sticky.
	Paid
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Covered:
		return "covered"
	case Paid:
		return "paid"
	default:
		return "unknown"
	}
}

// ParseStatus parses a status, it also accepts the legacy spanish names.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "pendiente":
		return Pending, nil
	case "covered", "cubierta":
		return Covered, nil
	case "paid", "pagada":
		return Paid, nil
	default:
		return 0, fmt.Errorf("%w: unknown obligation status %q", ErrInvalidStatus, s)
	}
}

func (s Status) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// TxType is the kind of a transaction.
type TxType int

const (
	Income TxType = iota
	Expense
)

func (t TxType) String() string {
	switch t {
	case Income:
		return "income"
	case Expense:
		return "expense"
	default:
		return "unknown"
	}
}

// ParseTxType parses a transaction type.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	default:
		return 0, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, s)
	}
}

func (t TxType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

// Direction tells where allocated money goes.
type Direction int

const (
	// ToFund moves money from the available balance into a fund.
	ToFund Direction = iota
	// ToObligation earmarks money from the available balance for an obligation.
	ToObligation
	// Release returns money from a fund to the available balance.
	Release
)

func (d Direction) String() string {
	switch d {
	case ToFund:
		return "toFund"
	case ToObligation:
		return "toObligation"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// ParseDirection parses an allocation direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.TrimSpace(s) {
	case "toFund":
		return ToFund, nil
	case "toObligation":
		return ToObligation, nil
	case "release":
		return Release, nil
	default:
		return 0, fmt.Errorf("%w: unknown allocation direction %q", ErrValidation, s)
	}
}

func (d Direction) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// Outgoing reports whether the allocation takes money out of the available balance.
func (d Direction) Outgoing() bool { return d == ToFund || d == ToObligation }
