package fincal

import (
	"cmp"
	"slices"

	"github.com/etnz/fincal/date"
	"github.com/shopspring/decimal"
)

// Calculator derives balances and aggregates from the raw records of a
// Document. Implementations never modify the document.
type Calculator interface {
	// AvailableBalance is the money not committed to any fund or obligation,
	// counting only records dated on or before asOf when asOf is not nil.
	AvailableBalance(doc *Document, asOf *date.Date) decimal.Decimal
	// Coverage of an obligation by its allocations.
	Coverage(doc *Document, obligationID string) Coverage
	// DailyActivity sums the records of a single day.
	DailyActivity(doc *Document, on date.Date) Activity
	// MonthlyTotals aggregates the records of a month.
	MonthlyTotals(doc *Document, month date.Month) Totals
}

// Coverage is the part of an obligation amount matched by allocations.
type Coverage struct {
	Covered   decimal.Decimal
	Remaining decimal.Decimal // never negative
}

// Activity sums one day of records.
type Activity struct {
	Income         decimal.Decimal
	Expense        decimal.Decimal
	AllocationsOut decimal.Decimal // toFund and toObligation
	AllocationsIn  decimal.Decimal // release
}

// IsZero reports whether nothing happened.
func (a Activity) IsZero() bool {
	return a.Income.IsZero() && a.Expense.IsZero() && a.AllocationsOut.IsZero() && a.AllocationsIn.IsZero()
}

// Delta is the change of the available balance over the day.
func (a Activity) Delta() decimal.Decimal {
	return a.Income.Sub(a.Expense).Sub(a.AllocationsOut).Add(a.AllocationsIn)
}

// Totals aggregates one month of records.
type Totals struct {
	Income             decimal.Decimal
	Expense            decimal.Decimal
	Allocated          decimal.Decimal // toFund and toObligation
	ObligationsTotal   decimal.Decimal // obligations due in the month
	ObligationsCovered decimal.Decimal // clamped to each obligation amount
	ObligationsPaid    decimal.Decimal
}

// Net is income minus expense.
func (t Totals) Net() decimal.Decimal { return t.Income.Sub(t.Expense) }

// SavingsRate is the net as a percentage of the income, 0 without income.
func (t Totals) SavingsRate() decimal.Decimal { return percent(t.Net(), t.Income) }

// CoverageRate is the covered share of the obligations due, in percent.
func (t Totals) CoverageRate() decimal.Decimal { return percent(t.ObligationsCovered, t.ObligationsTotal) }

// PaidRate is the paid share of the obligations due, in percent.
func (t Totals) PaidRate() decimal.Decimal { return percent(t.ObligationsPaid, t.ObligationsTotal) }

func percent(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(decimal.NewFromInt(100)).Div(total)
}

// Recompute is the Calculator that walks every record on every call. Ledgers
// are small enough that there is nothing to invalidate.
type Recompute struct{}

var _ Calculator = Recompute{}

func (Recompute) AvailableBalance(doc *Document, asOf *date.Date) decimal.Decimal {
	included := func(on date.Date) bool { return asOf == nil || !on.After(*asOf) }

	balance := doc.Settings.StartBalance
	for _, t := range doc.Transactions {
		if included(t.Date) {
			balance = balance.Add(t.Signed())
		}
	}
	for _, a := range doc.Allocations {
		if !included(a.Date) {
			continue
		}
		if a.Direction.Outgoing() {
			balance = balance.Sub(a.Amount)
		} else {
			balance = balance.Add(a.Amount)
		}
	}
	return balance
}

func (Recompute) Coverage(doc *Document, obligationID string) Coverage {
	o := doc.Obligation(obligationID)
	if o == nil {
		return Coverage{Covered: decimal.Zero, Remaining: decimal.Zero}
	}
	covered := decimal.Zero
	for _, a := range doc.Allocations {
		if a.Direction == ToObligation && a.ObligationID == obligationID {
			covered = covered.Add(a.Amount)
		}
	}
	return Coverage{
		Covered:   covered,
		Remaining: decimal.Max(decimal.Zero, o.Amount.Sub(covered)),
	}
}

func (Recompute) DailyActivity(doc *Document, on date.Date) Activity {
	act := Activity{Income: decimal.Zero, Expense: decimal.Zero, AllocationsOut: decimal.Zero, AllocationsIn: decimal.Zero}
	for _, t := range doc.Transactions {
		if t.Date != on {
			continue
		}
		switch t.Type {
		case Income:
			act.Income = act.Income.Add(t.Amount)
		case Expense:
			act.Expense = act.Expense.Add(t.Amount)
		}
	}
	for _, a := range doc.Allocations {
		if a.Date != on {
			continue
		}
		if a.Direction.Outgoing() {
			act.AllocationsOut = act.AllocationsOut.Add(a.Amount)
		} else {
			act.AllocationsIn = act.AllocationsIn.Add(a.Amount)
		}
	}
	return act
}

func (r Recompute) MonthlyTotals(doc *Document, month date.Month) Totals {
	t := Totals{
		Income:             decimal.Zero,
		Expense:            decimal.Zero,
		Allocated:          decimal.Zero,
		ObligationsTotal:   decimal.Zero,
		ObligationsCovered: decimal.Zero,
		ObligationsPaid:    decimal.Zero,
	}
	for _, tx := range doc.Transactions {
		if !month.Contains(tx.Date) {
			continue
		}
		switch tx.Type {
		case Income:
			t.Income = t.Income.Add(tx.Amount)
		case Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	for _, a := range doc.Allocations {
		if month.Contains(a.Date) && a.Direction.Outgoing() {
			t.Allocated = t.Allocated.Add(a.Amount)
		}
	}
	for _, o := range doc.Obligations {
		if !month.Contains(o.DueDate) {
			continue
		}
		t.ObligationsTotal = t.ObligationsTotal.Add(o.Amount)
		cov := r.Coverage(doc, o.ID)
		t.ObligationsCovered = t.ObligationsCovered.Add(decimal.Min(o.Amount, cov.Covered))
		if o.Status == Paid {
			t.ObligationsPaid = t.ObligationsPaid.Add(o.Amount)
		}
	}
	return t
}

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// Uncategorized names the category of expenses recorded without one.
const Uncategorized = "Sin categoría"

// ExpensesByCategory sums the expenses of the month per category, largest
// first. Ties are ordered by category name.
func ExpensesByCategory(doc *Document, month date.Month) []CategoryTotal {
	byCat := make(map[string]decimal.Decimal)
	for _, t := range doc.Transactions {
		if t.Type != Expense || !month.Contains(t.Date) {
			continue
		}
		cat := t.Category
		if cat == "" {
			cat = Uncategorized
		}
		byCat[cat] = byCat[cat].Add(t.Amount)
	}
	rows := make([]CategoryTotal, 0, len(byCat))
	for cat, amount := range byCat {
		rows = append(rows, CategoryTotal{Category: cat, Amount: amount})
	}
	slices.SortFunc(rows, func(a, b CategoryTotal) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return rows
}

// DayLine is one day of the month view.
type DayLine struct {
	Date      date.Date
	Activity  Activity
	Available decimal.Decimal // running available balance at the end of the day
	Today     bool
}

// MonthView lists the days of the month that have activity, plus today when
// it falls in the month, with the running available balance.
//
// The running balance opens with the available balance at the end of the
// previous month, so that it matches AvailableBalance on every listed day.
func MonthView(calc Calculator, doc *Document, month date.Month, today date.Date) []DayLine {
	eve := month.First().Add(-1)
	running := calc.AvailableBalance(doc, &eve)

	var lines []DayLine
	for day := range month.Days() {
		act := calc.DailyActivity(doc, day)
		running = running.Add(act.Delta())
		if act.IsZero() && day != today {
			continue
		}
		lines = append(lines, DayLine{Date: day, Activity: act, Available: running, Today: day == today})
	}
	return lines
}

// Signal is the traffic light of an obligation.
type Signal int

const (
	// Uncovered obligations have nothing allocated yet.
	Uncovered Signal = iota
	// Partial obligations are partly covered.
	Partial
	// FullyCovered obligations are covered but not paid.
	FullyCovered
	// Settled obligations are paid.
	Settled
)

func (s Signal) String() string {
	switch s {
	case Uncovered:
		return "uncovered"
	case Partial:
		return "partial"
	case FullyCovered:
		return "covered"
	case Settled:
		return "paid"
	default:
		return "unknown"
	}
}

// Emoji renders the signal as a colored marker.
func (s Signal) Emoji() string {
	switch s {
	case Settled:
		return "✅"
	case FullyCovered:
		return "🟢"
	case Partial:
		return "🟡"
	default:
		return "🔴"
	}
}

// SignalOf returns the traffic light of an obligation.
func SignalOf(calc Calculator, doc *Document, o Obligation) Signal {
	if o.Status == Paid {
		return Settled
	}
	cov := calc.Coverage(doc, o.ID)
	switch {
	case !cov.Remaining.IsPositive():
		return FullyCovered
	case cov.Covered.IsPositive():
		return Partial
	default:
		return Uncovered
	}
}

// ObligationLine is an obligation with its coverage.
type ObligationLine struct {
	Obligation Obligation
	Coverage   Coverage
	Signal     Signal
}

// ObligationsDue lists the obligations due in the month by due date.
func ObligationsDue(calc Calculator, doc *Document, month date.Month) []ObligationLine {
	var lines []ObligationLine
	for _, o := range doc.Obligations {
		if !month.Contains(o.DueDate) {
			continue
		}
		lines = append(lines, ObligationLine{
			Obligation: o,
			Coverage:   calc.Coverage(doc, o.ID),
			Signal:     SignalOf(calc, doc, o),
		})
	}
	slices.SortStableFunc(lines, func(a, b ObligationLine) int {
		return cmp.Compare(a.Obligation.DueDate.String(), b.Obligation.DueDate.String())
	})
	return lines
}
