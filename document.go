package fincal

import (
	"slices"
	"strings"

	"github.com/etnz/fincal/date"
	"github.com/shopspring/decimal"
)

// CalendarTimes configures the hour of the day used when projecting records
// into calendar events, per record category, and the event duration.
type CalendarTimes struct {
	ObligationHour  int
	TransactionHour int
	AllocationHour  int
	PaymentHour     int
	DurationMinutes int
}

// DefaultCalendarTimes of a fresh ledger.
func DefaultCalendarTimes() CalendarTimes {
	return CalendarTimes{
		ObligationHour:  8,
		TransactionHour: 9,
		AllocationHour:  10,
		PaymentHour:     11,
		DurationMinutes: 30,
	}
}

// Settings of the ledger.
type Settings struct {
	Currency      string
	StartBalance  decimal.Decimal // balance at the epoch of the ledger
	CalendarTimes CalendarTimes
	Extra         map[string]any
}

// Fund is a savings envelope. Its balance is never negative.
type Fund struct {
	ID      string
	Name    string
	Balance decimal.Decimal
	Extra   map[string]any
}

// Obligation is a scheduled bill or debt.
//
// Its status is stored, but allocation changes keep it reconciled with the
// coverage unless it is Paid.
type Obligation struct {
	ID        string
	Name      string
	DueDate   date.Date
	Amount    decimal.Decimal
	Status    Status
	Note      string
	EventHour *int // nil means the configured obligation hour
	Extra     map[string]any
}

// PaymentNote tags the expense transactions created by RegisterPayment.
const PaymentNote = "PAYMENT_EVENT"

// Transaction is an income or an expense. Amount is always positive, the
// sign is implied by the type.
type Transaction struct {
	ID           string
	Date         date.Date
	Type         TxType
	Name         string
	Amount       decimal.Decimal
	Category     string
	Note         string
	EventHour    *int
	ObligationID string // set on payments
	FundID       string // set on payments drawn from a fund
	Extra        map[string]any
}

// IsPayment reports whether the transaction records an obligation payment.
func (t Transaction) IsPayment() bool { return t.Note == PaymentNote }

// Signed returns the amount signed by the transaction type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Allocation moves money between the available balance and a fund or an
// obligation. Exactly one of FundID and ObligationID is set: ObligationID for
// ToObligation, FundID otherwise.
type Allocation struct {
	ID           string
	Date         date.Date
	Amount       decimal.Decimal
	Direction    Direction
	FundID       string
	ObligationID string
	Note         string
	EventHour    *int
	Extra        map[string]any
}

// FundAdjustment logs a manual correction of a fund balance.
type FundAdjustment struct {
	ID     string
	Date   date.Date
	FundID string
	Amount decimal.Decimal // signed, never zero
	Reason string
	Extra  map[string]any
}

// Document is the whole persisted ledger.
type Document struct {
	Settings        Settings
	Funds           []Fund
	Obligations     []Obligation
	Transactions    []Transaction
	Allocations     []Allocation
	FundAdjustments []FundAdjustment
	Extra           map[string]any // unknown top-level members
}

// DefaultFunds are the envelopes seeded in a fresh ledger.
func DefaultFunds() []Fund {
	return []Fund{
		{ID: "f_ahorro", Name: "Ahorro", Balance: decimal.Zero},
		{ID: "f_tarjetas", Name: "Tarjetas", Balance: decimal.Zero},
		{ID: "f_varios", Name: "Gastos varios", Balance: decimal.Zero},
	}
}

// NewDocument returns a freshly defaulted document.
func NewDocument() *Document {
	return &Document{
		Settings: Settings{
			Currency:      DefaultCurrency,
			StartBalance:  decimal.Zero,
			CalendarTimes: DefaultCalendarTimes(),
		},
		Funds:           DefaultFunds(),
		Obligations:     []Obligation{},
		Transactions:    []Transaction{},
		Allocations:     []Allocation{},
		FundAdjustments: []FundAdjustment{},
	}
}

// Fund returns the fund with that id, or nil.
func (d *Document) Fund(id string) *Fund {
	for i := range d.Funds {
		if d.Funds[i].ID == id {
			return &d.Funds[i]
		}
	}
	return nil
}

// Obligation returns the obligation with that id, or nil.
func (d *Document) Obligation(id string) *Obligation {
	for i := range d.Obligations {
		if d.Obligations[i].ID == id {
			return &d.Obligations[i]
		}
	}
	return nil
}

// Transaction returns the transaction with that id, or nil.
func (d *Document) Transaction(id string) *Transaction {
	for i := range d.Transactions {
		if d.Transactions[i].ID == id {
			return &d.Transactions[i]
		}
	}
	return nil
}

// Allocation returns the allocation with that id, or nil.
func (d *Document) Allocation(id string) *Allocation {
	for i := range d.Allocations {
		if d.Allocations[i].ID == id {
			return &d.Allocations[i]
		}
	}
	return nil
}

// Months returns the months holding at least one transaction, allocation,
// adjustment or obligation due date, oldest first.
func (d *Document) Months() []date.Month {
	seen := make(map[string]date.Month)
	add := func(on date.Date) {
		if !on.IsZero() {
			m := on.MonthOf()
			seen[m.Key()] = m
		}
	}
	for _, t := range d.Transactions {
		add(t.Date)
	}
	for _, a := range d.Allocations {
		add(a.Date)
	}
	for _, a := range d.FundAdjustments {
		add(a.Date)
	}
	for _, o := range d.Obligations {
		add(o.DueDate)
	}
	months := make([]date.Month, 0, len(seen))
	for _, m := range seen {
		months = append(months, m)
	}
	slices.SortFunc(months, func(a, b date.Month) int { return strings.Compare(a.Key(), b.Key()) })
	return months
}

// hourOr returns *h when set, def otherwise.
func hourOr(h *int, def int) int {
	if h != nil {
		return *h
	}
	return def
}
