package fincal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentEvent describes a payment being registered against an obligation.
type PaymentEvent struct {
	Obligation Obligation      // as it was before the payment
	Amount     decimal.Decimal // paid now
	Before     Coverage        // allocation coverage before the payment
	TotalPaid  decimal.Decimal // every payment linked to the obligation, this one included
}

// PaymentPolicy decides the status of an obligation after a payment.
//
// A policy never returns anything but Paid for an obligation that was
// already paid.
type PaymentPolicy interface {
	Status(ev PaymentEvent) Status
	String() string
}

// LegacyPayment marks the obligation paid when the payment covers what the
// allocations left uncovered, and pending otherwise. Earlier partial payments
// are not taken into account.
type LegacyPayment struct{}

func (LegacyPayment) Status(ev PaymentEvent) Status {
	if ev.Obligation.Status == Paid {
		return Paid
	}
	if ev.Amount.GreaterThanOrEqual(ev.Obligation.Amount) || ev.Amount.GreaterThanOrEqual(ev.Before.Remaining) {
		return Paid
	}
	return Pending
}

func (LegacyPayment) String() string { return "legacy" }

// CumulativePayment marks the obligation paid once all its payments add up to
// its amount, or when the payment covers what the allocations left
// uncovered. Otherwise the status is left alone.
type CumulativePayment struct{}

func (CumulativePayment) Status(ev PaymentEvent) Status {
	if ev.Obligation.Status == Paid {
		return Paid
	}
	if ev.TotalPaid.GreaterThanOrEqual(ev.Obligation.Amount) || ev.Amount.GreaterThanOrEqual(ev.Before.Remaining) {
		return Paid
	}
	return ev.Obligation.Status
}

func (CumulativePayment) String() string { return "cumulative" }

// ParsePaymentPolicy returns the policy named "legacy" or "cumulative". The
// empty name is the legacy policy.
func ParsePaymentPolicy(name string) (PaymentPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "legacy":
		return LegacyPayment{}, nil
	case "cumulative":
		return CumulativePayment{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown payment policy %q", ErrValidation, name)
	}
}
