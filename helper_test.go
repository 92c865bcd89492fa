package fincal

import (
	"strings"
	"testing"

	"github.com/etnz/fincal/date"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
)

// D is a helper for test to create decimals from const.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// day is a helper for test to create dates from const.
func day(s string) date.Date { return date.MustParse(s) }

// ptr returns a pointer to v.
func ptr[T any](v T) *T { return &v }

// cmpOpts compares documents: decimals by value and dates by day.
var cmpOpts = cmp.Options{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b date.Date) bool { return a == b }),
	cmp.Comparer(func(a, b date.Month) bool { return a == b }),
}

// testToday is the current date of every test ledger.
var testToday = day("2024-01-15")

// newTestLedger returns a ledger over doc with a fixed clock and a silent
// logger.
func newTestLedger(t *testing.T, doc *Document, opts ...Option) *Ledger {
	t.Helper()
	logger, _ := test.NewNullLogger()
	base := []Option{
		WithLogger(logger),
		WithClock(func() date.Date { return testToday }),
	}
	return NewLedger(doc, append(base, opts...)...)
}

// mustDecodeRaw decodes a JSON literal the way documents are decoded.
func mustDecodeRaw(t *testing.T, s string) any {
	t.Helper()
	raw, err := decodeRaw(strings.NewReader(s))
	if err != nil {
		t.Fatalf("decodeRaw(%q) failed: %v", s, err)
	}
	return raw
}

// mustMarshal encodes doc.
func mustMarshal(t *testing.T, doc *Document) string {
	t.Helper()
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	return string(data)
}
