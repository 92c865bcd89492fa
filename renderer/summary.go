package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/fincal"
	"github.com/etnz/fincal/date"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

// SummaryMarkdown renders the monthly totals.
func SummaryMarkdown(t fincal.Totals, month date.Month, cur string) string {
	var buf bytes.Buffer
	out := md.NewMarkdown(&buf)

	out.H1(fmt.Sprintf("📊 Resumen %s", month))
	out.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Concepto", "Monto"},
		Rows: [][]string{
			{"Ingresos", money(t.Income, cur)},
			{"Gastos", money(t.Expense.Neg(), cur)},
			{md.Bold("Neto"), md.Bold(money(t.Net(), cur))},
			{"Apartado", money(t.Allocated.Neg(), cur)},
			{"Cobertura obligaciones", pct(t.CoverageRate())},
			{"Pagadas", pct(t.PaidRate())},
			{"Tasa ahorro aprox", pct(t.SavingsRate())},
		},
	})
	return out.String()
}

// ExpensesMarkdown renders the expenses of a month by category, with the
// share of each category in the total.
func ExpensesMarkdown(rows []fincal.CategoryTotal, month date.Month, cur string) string {
	var buf bytes.Buffer
	out := md.NewMarkdown(&buf)

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}

	out.H1(fmt.Sprintf("💸 Resumen de gastos %s", month))
	out.PlainText(fmt.Sprintf("Total gastos: %s", md.Bold(money(total.Neg(), cur))))
	if len(rows) == 0 {
		out.PlainText("(sin gastos este mes)")
		return out.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Categoría", "Monto", "%"},
	}
	for _, r := range rows {
		share := decimal.Zero
		if total.IsPositive() {
			share = r.Amount.Mul(decimal.NewFromInt(100)).Div(total)
		}
		table.Rows = append(table.Rows, []string{r.Category, money(r.Amount.Neg(), cur), pct(share)})
	}
	out.Table(table)
	return out.String()
}
