package renderer

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/fincal"
	md "github.com/nao1215/markdown"
)

// searchLimit is the number of matches listed per kind of record.
const searchLimit = 15

// FundsMarkdown renders the funds and their balances.
func FundsMarkdown(doc *fincal.Document) string {
	var buf bytes.Buffer
	out := md.NewMarkdown(&buf)
	out.H1("💰 Fondos")
	fundsList(out, doc)
	return out.String()
}

// ObligationsMarkdown renders every obligation by due date, with its coverage.
func ObligationsMarkdown(calc fincal.Calculator, doc *fincal.Document) string {
	var buf bytes.Buffer
	out := md.NewMarkdown(&buf)
	out.H1("🧾 Obligaciones")

	lines := make([]fincal.ObligationLine, 0, len(doc.Obligations))
	for _, o := range doc.Obligations {
		lines = append(lines, fincal.ObligationLine{
			Obligation: o,
			Coverage:   calc.Coverage(doc, o.ID),
			Signal:     fincal.SignalOf(calc, doc, o),
		})
	}
	slices.SortStableFunc(lines, func(a, b fincal.ObligationLine) int {
		return strings.Compare(a.Obligation.DueDate.String(), b.Obligation.DueDate.String())
	})
	obligationsTable(out, lines, doc.Settings.Currency)
	return out.String()
}

// SearchMarkdown renders the matches of a search, at most searchLimit per
// kind of record.
func SearchMarkdown(res fincal.SearchResult, cur string) string {
	var b strings.Builder
	fmt.Fprintln(&b, "# 🔎 Búsqueda")
	fmt.Fprintln(&b)
	if res.Len() == 0 {
		fmt.Fprintln(&b, "(sin coincidencias)")
		return b.String()
	}
	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintf(w, "## Transacciones (%d)\n\n", len(res.Transactions))
		for i, t := range res.Transactions {
			if i == searchLimit {
				fmt.Fprintf(w, "- … y %d más\n", len(res.Transactions)-searchLimit)
				break
			}
			fmt.Fprintf(w, "- %s %s %s\n", t.Date, t.Name, money(t.Signed(), cur))
		}
		fmt.Fprintln(w)
		return len(res.Transactions) > 0
	})
	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintf(w, "## Obligaciones (%d)\n\n", len(res.Obligations))
		for i, o := range res.Obligations {
			if i == searchLimit {
				fmt.Fprintf(w, "- … y %d más\n", len(res.Obligations)-searchLimit)
				break
			}
			fmt.Fprintf(w, "- %s %s %s (%s)\n", o.DueDate, o.Name, money(o.Amount.Neg(), cur), o.Status)
		}
		fmt.Fprintln(w)
		return len(res.Obligations) > 0
	})
	return b.String()
}
