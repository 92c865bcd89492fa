package fincal

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/etnz/fincal/date"
)

// TagPrefix marks calendar events owned by the ledger. A calendar sync can
// remove every event whose notes contain it before writing the new ones.
const TagPrefix = "FC:"

// EventKind is the kind of record an event was projected from.
type EventKind int

const (
	TransactionEvent EventKind = iota
	AllocationEvent
	ObligationEvent
)

func (k EventKind) tag() string {
	switch k {
	case TransactionEvent:
		return "TX"
	case AllocationEvent:
		return "AL"
	default:
		return "OBL"
	}
}

// Event is a read-only calendar projection of a record.
type Event struct {
	Tag      string // stable, derived from the record id, like "FC:TX:tx_42"
	Kind     EventKind
	RecordID string
	Date     date.Date
	Hour     int
	Duration time.Duration
	Title    string
	Notes    string
}

// Start of the event in loc.
func (e Event) Start(loc *time.Location) time.Time { return e.Date.At(e.Hour, loc) }

// End of the event in loc.
func (e Event) End(loc *time.Location) time.Time { return e.Start(loc).Add(e.Duration) }

// Events projects the transactions, allocations and obligations of the month
// into calendar events, in that order.
//
// The hour of an event is the record's own event hour when set, the hour
// configured for its category otherwise.
func Events(calc Calculator, doc *Document, month date.Month) []Event {
	times := doc.Settings.CalendarTimes
	cur := doc.Settings.Currency
	duration := time.Duration(times.DurationMinutes) * time.Minute
	newEvent := func(kind EventKind, id string, on date.Date, hour int) Event {
		return Event{
			Tag:      fmt.Sprintf("%s%s:%s", TagPrefix, kind.tag(), id),
			Kind:     kind,
			RecordID: id,
			Date:     on,
			Hour:     hour,
			Duration: duration,
		}
	}

	var events []Event
	for _, t := range doc.Transactions {
		if !month.Contains(t.Date) {
			continue
		}
		def := times.TransactionHour
		if t.IsPayment() {
			def = times.PaymentHour
		}
		ev := newEvent(TransactionEvent, t.ID, t.Date, hourOr(t.EventHour, def))
		icon := "💸"
		if t.Type == Income {
			icon = "💰"
		}
		ev.Title = fmt.Sprintf("%s %s (%s)", icon, t.Name, M(t.Signed(), cur))
		ev.Notes = notes(ev.Tag,
			"Tipo:"+t.Type.String(),
			"Monto:"+t.Amount.String(),
			"Fecha:"+t.Date.String())
		events = append(events, ev)
	}

	for _, a := range doc.Allocations {
		if !month.Contains(a.Date) {
			continue
		}
		ev := newEvent(AllocationEvent, a.ID, a.Date, hourOr(a.EventHour, times.AllocationHour))
		label := allocationLabel(doc, a)
		if a.Direction == Release {
			ev.Title = fmt.Sprintf("🔓 Liberado %s (%s)", label, M(a.Amount, cur).SignedString())
		} else {
			ev.Title = fmt.Sprintf("🧷 Apartado %s (%s)", label, M(a.Amount.Neg(), cur))
		}
		ev.Notes = notes(ev.Tag,
			"Monto:"+a.Amount.String(),
			"Fecha:"+a.Date.String(),
			label)
		events = append(events, ev)
	}

	for _, line := range ObligationsDue(calc, doc, month) {
		o := line.Obligation
		ev := newEvent(ObligationEvent, o.ID, o.DueDate, hourOr(o.EventHour, times.ObligationHour))
		icon := "🧾"
		if o.Status == Paid {
			icon = "✅"
		}
		ev.Title = fmt.Sprintf("%s %s (%s) %s", icon, o.Name, M(o.Amount.Neg(), cur), line.Signal.Emoji())
		ev.Notes = notes(ev.Tag,
			"Estado:"+o.Status.String(),
			"Cubierto:"+line.Coverage.Covered.String(),
			"Faltante:"+line.Coverage.Remaining.String(),
			"Fecha:"+o.DueDate.String())
		events = append(events, ev)
	}
	return events
}

// allocationLabel names the target of an allocation, "?" when it is gone.
func allocationLabel(doc *Document, a Allocation) string {
	if a.Direction == ToObligation {
		name := "?"
		if o := doc.Obligation(a.ObligationID); o != nil {
			name = o.Name
		}
		return "Obligación: " + name
	}
	name := "?"
	if f := doc.Fund(a.FundID); f != nil {
		name = f.Name
	}
	return "Fondo: " + name
}

func notes(lines ...string) string { return strings.Join(lines, "\n") }

// EncodeICS writes events as an iCalendar (RFC 5545) feed. Event times are
// floating local times, as a phone calendar would show them.
func EncodeICS(w io.Writer, events []Event, stamp time.Time) error {
	cal := ics.NewCalendar()
	cal.SetProductId("-//etnz//fincal//ES")
	cal.SetCalscale("GREGORIAN")
	for _, ev := range events {
		start := ev.Start(time.UTC)
		e := cal.AddEvent(ev.Tag + "@fincal")
		e.SetDtStampTime(stamp)
		e.SetProperty(ics.ComponentPropertyDtStart, start.Format(floatingTime))
		e.SetProperty(ics.ComponentPropertyDtEnd, start.Add(ev.Duration).Format(floatingTime))
		e.SetSummary(ev.Title)
		e.SetDescription(ev.Notes)
	}
	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("could not write calendar: %w", err)
	}
	return nil
}

// floatingTime is the iCalendar date-time form without a time zone.
const floatingTime = "20060102T150405"
