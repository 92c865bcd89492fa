package fincal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// The persisted document is a single JSON object. Members are written in a
// fixed order so that the file stays diff friendly.

func (c CalendarTimes) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("obligationHour", c.ObligationHour)
	w.Append("transactionHour", c.TransactionHour)
	w.Append("allocationHour", c.AllocationHour)
	w.Append("paymentHour", c.PaymentHour)
	w.Append("durationMinutes", c.DurationMinutes)
	return w.MarshalJSON()
}

func (s Settings) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("currency", s.Currency)
	w.Append("startBalance", s.StartBalance)
	w.Append("calendarTimes", s.CalendarTimes)
	w.Extra(s.Extra)
	return w.MarshalJSON()
}

func (f Fund) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", f.ID)
	w.Append("name", f.Name)
	w.Append("balance", f.Balance)
	w.Extra(f.Extra)
	return w.MarshalJSON()
}

func (o Obligation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", o.ID)
	w.Append("name", o.Name)
	w.Append("dueDate", o.DueDate)
	w.Append("amount", o.Amount)
	w.Append("status", o.Status)
	w.Append("note", o.Note)
	w.Optional("eventHour", o.EventHour)
	w.Extra(o.Extra)
	return w.MarshalJSON()
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("date", t.Date)
	w.Append("type", t.Type)
	w.Append("name", t.Name)
	w.Append("amount", t.Amount)
	w.Append("category", t.Category)
	w.Append("note", t.Note)
	w.Optional("eventHour", t.EventHour)
	w.Optional("obligationId", t.ObligationID)
	w.Optional("fundId", t.FundID)
	w.Extra(t.Extra)
	return w.MarshalJSON()
}

func (a Allocation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", a.ID)
	w.Append("date", a.Date)
	w.Append("amount", a.Amount)
	w.Append("direction", a.Direction)
	w.Optional("toFundId", a.FundID)
	w.Optional("toObligationId", a.ObligationID)
	w.Append("note", a.Note)
	w.Optional("eventHour", a.EventHour)
	w.Extra(a.Extra)
	return w.MarshalJSON()
}

func (a FundAdjustment) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", a.ID)
	w.Append("date", a.Date)
	w.Append("fundId", a.FundID)
	w.Append("amount", a.Amount)
	w.Append("reason", a.Reason)
	w.Extra(a.Extra)
	return w.MarshalJSON()
}

func (d Document) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("settings", d.Settings)
	w.Append("funds", nonNil(d.Funds))
	w.Append("obligations", nonNil(d.Obligations))
	w.Append("transactions", nonNil(d.Transactions))
	w.Append("allocations", nonNil(d.Allocations))
	w.Append("fundAdjustments", nonNil(d.FundAdjustments))
	w.Extra(d.Extra)
	return w.MarshalJSON()
}

// nonNil makes sure empty lists are written as [] instead of null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

// Encode writes the document as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("could not encode ledger document: %w", err)
	}
	return nil
}

// Marshal returns the encoded document.
func Marshal(doc *Document) ([]byte, error) {
	var b bytes.Buffer
	if err := Encode(&b, doc); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Decode parses a JSON document and normalizes it. It only fails when the
// input is not JSON at all; structural problems are repaired by Normalize.
func Decode(r io.Reader) (*Document, error) {
	raw, err := decodeRaw(r)
	if err != nil {
		return nil, err
	}
	return Normalize(raw), nil
}

// Unmarshal is Decode on a byte slice.
func Unmarshal(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// decodeRaw decodes any JSON value keeping numbers exact.
func decodeRaw(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("could not parse ledger document: %w", err)
	}
	// Trailing garbage makes the document corrupt too.
	if dec.More() {
		return nil, fmt.Errorf("could not parse ledger document: unexpected data after the document")
	}
	return raw, nil
}
