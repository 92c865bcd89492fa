package renderer

import (
	"bytes"
	"io"

	"github.com/etnz/fincal"
	"github.com/shopspring/decimal"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// money formats v in the ledger currency, e.g. "-$1,500.00".
func money(v decimal.Decimal, cur string) string { return fincal.M(v, cur).String() }

// signed formats v with an explicit sign, "-" when zero.
func signed(v decimal.Decimal, cur string) string { return fincal.M(v, cur).SignedString() }

// pct formats a percentage with one decimal, e.g. "12.5%".
func pct(v decimal.Decimal) string { return v.StringFixed(1) + "%" }

// orDash returns s, or "-" when v is zero.
func orDash(v decimal.Decimal, s string) string {
	if v.IsZero() {
		return "-"
	}
	return s
}
