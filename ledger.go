package fincal

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/fincal/date"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Ledger applies validated operations to a Document.
//
// Every operation validates all its inputs before writing anything: when it
// returns an error the document is untouched. The caller is responsible for
// saving the document afterwards, see Store.Update.
type Ledger struct {
	doc    *Document
	calc   Calculator
	policy PaymentPolicy
	log    logrus.FieldLogger
	today  func() date.Date
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithCalculator replaces the default Recompute calculator.
func WithCalculator(c Calculator) Option { return func(l *Ledger) { l.calc = c } }

// WithPaymentPolicy replaces the default LegacyPayment policy.
func WithPaymentPolicy(p PaymentPolicy) Option { return func(l *Ledger) { l.policy = p } }

// WithLogger sets the logger that records every committed operation.
func WithLogger(log logrus.FieldLogger) Option { return func(l *Ledger) { l.log = log } }

// WithClock sets the function returning the current date.
func WithClock(today func() date.Date) Option { return func(l *Ledger) { l.today = today } }

// NewLedger returns a Ledger operating on doc.
func NewLedger(doc *Document, opts ...Option) *Ledger {
	l := &Ledger{
		doc:    doc,
		calc:   Recompute{},
		policy: LegacyPayment{},
		log:    logrus.StandardLogger(),
		today:  date.Today,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Document returns the document being edited.
func (l *Ledger) Document() *Document { return l.doc }

// Calculator returns the calculator used to evaluate preconditions.
func (l *Ledger) Calculator() Calculator { return l.calc }

// Policy returns the payment policy.
func (l *Ledger) Policy() PaymentPolicy { return l.policy }

// Today returns the ledger's current date.
func (l *Ledger) Today() date.Date { return l.today() }

// Currency of the ledger amounts.
func (l *Ledger) Currency() string { return l.doc.Settings.Currency }

func (l *Ledger) orToday(on date.Date) date.Date {
	if on.IsZero() {
		return l.today()
	}
	return on
}

func (l *Ledger) money(v decimal.Decimal) Money { return M(v, l.doc.Settings.Currency) }

func positive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w, got %s", ErrInvalidAmount, amount)
	}
	return nil
}

func validHour(h *int) error {
	if h != nil && (*h < 0 || *h > 23) {
		return fmt.Errorf("%w: event hour must be between 0 and 23, got %d", ErrValidation, *h)
	}
	return nil
}

// NewTransaction is the input of AddTransaction.
type NewTransaction struct {
	Date      date.Date // zero means today
	Type      TxType
	Name      string
	Amount    decimal.Decimal
	Category  string
	Note      string
	EventHour *int
}

// AddTransaction records an income or an expense.
func (l *Ledger) AddTransaction(in NewTransaction) (Transaction, error) {
	if err := positive(in.Amount); err != nil {
		return Transaction{}, err
	}
	name := clampText(in.Name)
	if name == "" {
		return Transaction{}, fmt.Errorf("%w: transaction name is required", ErrValidation)
	}
	if in.Type != Income && in.Type != Expense {
		return Transaction{}, fmt.Errorf("%w: unknown transaction type %d", ErrValidation, in.Type)
	}
	if err := validHour(in.EventHour); err != nil {
		return Transaction{}, err
	}
	t := Transaction{
		ID:        NewID("tx"),
		Date:      l.orToday(in.Date),
		Type:      in.Type,
		Name:      name,
		Amount:    in.Amount,
		Category:  clampText(in.Category),
		Note:      clampText(in.Note),
		EventHour: in.EventHour,
	}
	l.doc.Transactions = append(l.doc.Transactions, t)
	l.log.WithFields(logrus.Fields{"id": t.ID, "type": t.Type, "amount": t.Amount, "date": t.Date}).Info("transaction added")
	return t, nil
}

// AddFund creates an empty fund. Fund names are unique regardless of case.
func (l *Ledger) AddFund(name string) (Fund, error) {
	name = clampText(name)
	if name == "" {
		return Fund{}, fmt.Errorf("%w: fund name is required", ErrValidation)
	}
	for _, f := range l.doc.Funds {
		if sameName(f.Name, name) {
			return Fund{}, fmt.Errorf("%w: %q", ErrDuplicateName, f.Name)
		}
	}
	f := Fund{ID: NewID("f"), Name: name, Balance: decimal.Zero}
	l.doc.Funds = append(l.doc.Funds, f)
	l.log.WithFields(logrus.Fields{"id": f.ID, "name": f.Name}).Info("fund added")
	return f, nil
}

// NewObligation is the input of AddObligation.
type NewObligation struct {
	Name      string
	DueDate   date.Date // zero means today
	Amount    decimal.Decimal
	Note      string
	EventHour *int
}

// AddObligation schedules a pending obligation.
func (l *Ledger) AddObligation(in NewObligation) (Obligation, error) {
	if err := positive(in.Amount); err != nil {
		return Obligation{}, err
	}
	name := clampText(in.Name)
	if name == "" {
		return Obligation{}, fmt.Errorf("%w: obligation name is required", ErrValidation)
	}
	if err := validHour(in.EventHour); err != nil {
		return Obligation{}, err
	}
	o := Obligation{
		ID:        NewID("obl"),
		Name:      name,
		DueDate:   l.orToday(in.DueDate),
		Amount:    in.Amount,
		Status:    Pending,
		Note:      clampText(in.Note),
		EventHour: in.EventHour,
	}
	l.doc.Obligations = append(l.doc.Obligations, o)
	l.log.WithFields(logrus.Fields{"id": o.ID, "amount": o.Amount, "due": o.DueDate}).Info("obligation added")
	return o, nil
}

// AllocationRequest is the input of Allocate.
type AllocationRequest struct {
	Date      date.Date // zero means today
	Amount    decimal.Decimal
	Direction Direction // ToFund or ToObligation
	TargetID  string    // fund or obligation id, depending on Direction
	Note      string
	EventHour *int
	// Force confirms an allocation exceeding the available balance.
	Force bool
}

// Allocate moves money from the available balance into a fund or towards an
// obligation.
//
// When the amount exceeds the balance available on the allocation date and
// Force is not set, it returns an *OverAllocationError (matching
// ErrOverAllocation) and nothing is recorded. Retrying with Force commits it.
func (l *Ledger) Allocate(req AllocationRequest) (Allocation, error) {
	if err := positive(req.Amount); err != nil {
		return Allocation{}, err
	}
	if err := validHour(req.EventHour); err != nil {
		return Allocation{}, err
	}
	on := l.orToday(req.Date)
	a := Allocation{
		ID:        NewID("al"),
		Date:      on,
		Amount:    req.Amount,
		Direction: req.Direction,
		Note:      clampText(req.Note),
		EventHour: req.EventHour,
	}
	var fund *Fund
	var obl *Obligation
	switch req.Direction {
	case ToFund:
		if fund = l.doc.Fund(req.TargetID); fund == nil {
			return Allocation{}, notFound("fund", req.TargetID)
		}
		a.FundID = fund.ID
	case ToObligation:
		if obl = l.doc.Obligation(req.TargetID); obl == nil {
			return Allocation{}, notFound("obligation", req.TargetID)
		}
		a.ObligationID = obl.ID
	default:
		return Allocation{}, fmt.Errorf("%w: cannot allocate with direction %s, use Release", ErrValidation, req.Direction)
	}

	available := l.calc.AvailableBalance(l.doc, &on)
	if req.Amount.GreaterThan(available) && !req.Force {
		return Allocation{}, &OverAllocationError{Available: available, Amount: req.Amount, Currency: l.Currency()}
	}

	l.doc.Allocations = append(l.doc.Allocations, a)
	if fund != nil {
		fund.Balance = fund.Balance.Add(a.Amount)
	}
	if obl != nil {
		l.reconcile(obl)
	}
	l.log.WithFields(logrus.Fields{"id": a.ID, "direction": a.Direction, "target": req.TargetID, "amount": a.Amount, "forced": req.Force && req.Amount.GreaterThan(available)}).Info("allocation added")
	return a, nil
}

// ReleaseRequest is the input of Release.
type ReleaseRequest struct {
	Date      date.Date // zero means today
	FundID    string
	Amount    decimal.Decimal
	Note      string
	EventHour *int
}

// Release returns money from a fund to the available balance.
func (l *Ledger) Release(req ReleaseRequest) (Allocation, error) {
	if err := positive(req.Amount); err != nil {
		return Allocation{}, err
	}
	if err := validHour(req.EventHour); err != nil {
		return Allocation{}, err
	}
	fund := l.doc.Fund(req.FundID)
	if fund == nil {
		return Allocation{}, notFound("fund", req.FundID)
	}
	if fund.Balance.LessThan(req.Amount) {
		return Allocation{}, fmt.Errorf("%w: fund %q holds %s, cannot release %s", ErrInsufficientFundBalance, fund.Name, l.money(fund.Balance), l.money(req.Amount))
	}
	a := Allocation{
		ID:        NewID("al"),
		Date:      l.orToday(req.Date),
		Amount:    req.Amount,
		Direction: Release,
		FundID:    fund.ID,
		Note:      clampText(req.Note),
		EventHour: req.EventHour,
	}
	fund.Balance = fund.Balance.Sub(a.Amount)
	l.doc.Allocations = append(l.doc.Allocations, a)
	l.log.WithFields(logrus.Fields{"id": a.ID, "fund": fund.ID, "amount": a.Amount}).Info("fund released")
	return a, nil
}

// Payment is the input of RegisterPayment.
type Payment struct {
	ObligationID string
	Amount       decimal.Decimal
	FundID       string    // optional fund the money is drawn from
	Date         date.Date // zero means today
	EventHour    *int
}

// RegisterPayment records the payment of an obligation as an expense, drawing
// the money from a fund when one is given. The new status of the obligation is
// decided by the ledger's PaymentPolicy.
func (l *Ledger) RegisterPayment(p Payment) (Transaction, error) {
	if err := positive(p.Amount); err != nil {
		return Transaction{}, err
	}
	if err := validHour(p.EventHour); err != nil {
		return Transaction{}, err
	}
	obl := l.doc.Obligation(p.ObligationID)
	if obl == nil {
		return Transaction{}, notFound("obligation", p.ObligationID)
	}
	var fund *Fund
	if p.FundID != "" {
		if fund = l.doc.Fund(p.FundID); fund == nil {
			return Transaction{}, notFound("fund", p.FundID)
		}
		if fund.Balance.LessThan(p.Amount) {
			return Transaction{}, fmt.Errorf("%w: fund %q holds %s, cannot pay %s", ErrInsufficientFundBalance, fund.Name, l.money(fund.Balance), l.money(p.Amount))
		}
	}

	ev := PaymentEvent{
		Obligation: *obl,
		Amount:     p.Amount,
		Before:     l.calc.Coverage(l.doc, obl.ID),
		TotalPaid:  p.Amount,
	}
	for _, t := range l.doc.Transactions {
		if t.IsPayment() && t.ObligationID == obl.ID {
			ev.TotalPaid = ev.TotalPaid.Add(t.Amount)
		}
	}

	t := Transaction{
		ID:           NewID("tx"),
		Date:         l.orToday(p.Date),
		Type:         Expense,
		Name:         clampText("Pago: " + obl.Name),
		Amount:       p.Amount,
		Category:     "Pago",
		Note:         PaymentNote,
		EventHour:    p.EventHour,
		ObligationID: obl.ID,
	}
	if fund != nil {
		fund.Balance = fund.Balance.Sub(p.Amount)
		t.FundID = fund.ID
	}
	l.doc.Transactions = append(l.doc.Transactions, t)
	obl.Status = l.policy.Status(ev)
	l.log.WithFields(logrus.Fields{"id": t.ID, "obligation": obl.ID, "fund": t.FundID, "amount": t.Amount, "status": obl.Status, "policy": l.policy}).Info("payment registered")
	return t, nil
}

// AdjustFund corrects a fund balance by delta and logs the adjustment.
func (l *Ledger) AdjustFund(fundID string, delta decimal.Decimal, reason string) (FundAdjustment, error) {
	if delta.IsZero() {
		return FundAdjustment{}, fmt.Errorf("%w: adjustment cannot be 0", ErrInvalidAdjustment)
	}
	reason = clampText(reason)
	if reason == "" {
		return FundAdjustment{}, fmt.Errorf("%w: a reason is required", ErrInvalidAdjustment)
	}
	fund := l.doc.Fund(fundID)
	if fund == nil {
		return FundAdjustment{}, notFound("fund", fundID)
	}
	if fund.Balance.Add(delta).IsNegative() {
		return FundAdjustment{}, fmt.Errorf("%w: fund %q holds %s, adjustment is %s", ErrNegativeBalanceRejected, fund.Name, l.money(fund.Balance), l.money(delta))
	}
	adj := FundAdjustment{
		ID:     NewID("fadj"),
		Date:   l.today(),
		FundID: fund.ID,
		Amount: delta,
		Reason: reason,
	}
	fund.Balance = fund.Balance.Add(delta)
	l.doc.FundAdjustments = append(l.doc.FundAdjustments, adj)
	l.log.WithFields(logrus.Fields{"id": adj.ID, "fund": fund.ID, "delta": delta, "balance": fund.Balance}).Info("fund adjusted")
	return adj, nil
}

// ChangeObligationStatus overrides the status of an obligation. It bypasses
// the coverage reconciliation.
func (l *Ledger) ChangeObligationStatus(id string, status Status) error {
	if status != Pending && status != Covered && status != Paid {
		return fmt.Errorf("%w: %d", ErrInvalidStatus, status)
	}
	obl := l.doc.Obligation(id)
	if obl == nil {
		return notFound("obligation", id)
	}
	obl.Status = status
	l.log.WithFields(logrus.Fields{"id": id, "status": status}).Info("obligation status changed")
	return nil
}

// DeleteTransaction removes a transaction. A fund a payment was drawn from is
// not refunded.
func (l *Ledger) DeleteTransaction(id string) error {
	i := slices.IndexFunc(l.doc.Transactions, func(t Transaction) bool { return t.ID == id })
	if i < 0 {
		return notFound("transaction", id)
	}
	l.doc.Transactions = slices.Delete(l.doc.Transactions, i, i+1)
	l.log.WithField("id", id).Info("transaction deleted")
	return nil
}

// DeleteAllocation removes an allocation and reverts its effect on the fund
// or obligation it targets.
func (l *Ledger) DeleteAllocation(id string) error {
	i := slices.IndexFunc(l.doc.Allocations, func(a Allocation) bool { return a.ID == id })
	if i < 0 {
		return notFound("allocation", id)
	}
	a := l.doc.Allocations[i]
	l.doc.Allocations = slices.Delete(l.doc.Allocations, i, i+1)
	switch a.Direction {
	case ToFund:
		if f := l.doc.Fund(a.FundID); f != nil {
			f.Balance = decimal.Max(decimal.Zero, f.Balance.Sub(a.Amount))
		}
	case Release:
		if f := l.doc.Fund(a.FundID); f != nil {
			f.Balance = f.Balance.Add(a.Amount)
		}
	case ToObligation:
		if o := l.doc.Obligation(a.ObligationID); o != nil {
			l.reconcile(o)
		}
	}
	l.log.WithFields(logrus.Fields{"id": id, "direction": a.Direction, "amount": a.Amount}).Info("allocation deleted")
	return nil
}

// DeleteObligation removes an obligation together with the allocations
// covering it. It returns the number of allocations removed.
func (l *Ledger) DeleteObligation(id string) (int, error) {
	i := slices.IndexFunc(l.doc.Obligations, func(o Obligation) bool { return o.ID == id })
	if i < 0 {
		return 0, notFound("obligation", id)
	}
	l.doc.Obligations = slices.Delete(l.doc.Obligations, i, i+1)
	before := len(l.doc.Allocations)
	l.doc.Allocations = slices.DeleteFunc(l.doc.Allocations, func(a Allocation) bool {
		return a.Direction == ToObligation && a.ObligationID == id
	})
	removed := before - len(l.doc.Allocations)
	l.log.WithFields(logrus.Fields{"id": id, "allocations": removed}).Info("obligation deleted")
	return removed, nil
}

// DeleteFund removes an empty fund that no allocation references.
func (l *Ledger) DeleteFund(id string) error {
	i := slices.IndexFunc(l.doc.Funds, func(f Fund) bool { return f.ID == id })
	if i < 0 {
		return notFound("fund", id)
	}
	f := l.doc.Funds[i]
	if !nearZero(f.Balance) {
		return fmt.Errorf("%w: fund %q holds %s", ErrNonZeroBalance, f.Name, l.money(f.Balance))
	}
	for _, a := range l.doc.Allocations {
		if a.Direction != ToObligation && a.FundID == id {
			return fmt.Errorf("%w: fund %q is referenced by allocation %s", ErrFundInUse, f.Name, a.ID)
		}
	}
	l.doc.Funds = slices.Delete(l.doc.Funds, i, i+1)
	l.log.WithField("id", id).Info("fund deleted")
	return nil
}

// UpdateCalendarTimes replaces the calendar settings.
func (l *Ledger) UpdateCalendarTimes(times CalendarTimes) error {
	for name, h := range map[string]int{
		"obligation":  times.ObligationHour,
		"transaction": times.TransactionHour,
		"allocation":  times.AllocationHour,
		"payment":     times.PaymentHour,
	} {
		if h < 0 || h > 23 {
			return fmt.Errorf("%w: %s hour must be between 0 and 23, got %d", ErrValidation, name, h)
		}
	}
	if times.DurationMinutes < 5 || times.DurationMinutes > 240 {
		return fmt.Errorf("%w: event duration must be between 5 and 240 minutes, got %d", ErrValidation, times.DurationMinutes)
	}
	l.doc.Settings.CalendarTimes = times
	l.log.WithField("times", times).Info("calendar times updated")
	return nil
}

// SetStartBalance sets the balance at the epoch of the ledger.
func (l *Ledger) SetStartBalance(balance decimal.Decimal) {
	l.doc.Settings.StartBalance = balance
	l.log.WithField("startBalance", balance).Info("start balance updated")
}

// SetCurrency sets the currency amounts are presented in. Amounts are not
// converted.
func (l *Ledger) SetCurrency(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := ValidateCurrency(code); err != nil {
		return err
	}
	l.doc.Settings.Currency = code
	l.log.WithField("currency", code).Info("currency updated")
	return nil
}

// reconcile sets the status of an obligation from its coverage, unless it is
// paid.
func (l *Ledger) reconcile(o *Obligation) {
	if o.Status == Paid {
		return
	}
	if l.calc.Coverage(l.doc, o.ID).Remaining.IsPositive() {
		o.Status = Pending
	} else {
		o.Status = Covered
	}
}
