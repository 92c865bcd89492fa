package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/fincal"
	"github.com/etnz/fincal/date"
	md "github.com/nao1215/markdown"
)

// MonthMarkdown renders the month view: the days with activity and their
// running available balance, the obligations due and the funds.
func MonthMarkdown(calc fincal.Calculator, doc *fincal.Document, month date.Month, today date.Date) string {
	cur := doc.Settings.Currency
	var buf bytes.Buffer
	out := md.NewMarkdown(&buf)

	out.H1(fmt.Sprintf("📅 Mes %s", month))

	lines := fincal.MonthView(calc, doc, month, today)
	if len(lines) == 0 {
		out.PlainText("(sin movimientos)")
	} else {
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Fecha", "Ingresos", "Gastos", "Apartado", "Liberado", "Disponible"},
		}
		for _, l := range lines {
			day := l.Date.String()
			if l.Today {
				day = "⭐ " + day
			}
			a := l.Activity
			table.Rows = append(table.Rows, []string{
				day,
				orDash(a.Income, signed(a.Income, cur)),
				orDash(a.Expense, money(a.Expense.Neg(), cur)),
				orDash(a.AllocationsOut, money(a.AllocationsOut.Neg(), cur)),
				orDash(a.AllocationsIn, signed(a.AllocationsIn, cur)),
				md.Bold(money(l.Available, cur)),
			})
		}
		out.Table(table)
	}

	out.H2("🧾 Obligaciones del mes")
	obligationsTable(out, fincal.ObligationsDue(calc, doc, month), cur)

	out.H2("💰 Fondos")
	fundsList(out, doc)

	return out.String()
}

// obligationsTable renders obligation lines, or a placeholder when empty.
func obligationsTable(out *md.Markdown, lines []fincal.ObligationLine, cur string) {
	if len(lines) == 0 {
		out.PlainText("(sin obligaciones)")
		return
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignCenter, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"", "Vence", "Obligación", "Monto", "Cubierto", "Faltante"},
	}
	for _, l := range lines {
		o := l.Obligation
		table.Rows = append(table.Rows, []string{
			l.Signal.Emoji(),
			o.DueDate.String(),
			o.Name,
			money(o.Amount.Neg(), cur),
			money(l.Coverage.Covered, cur),
			money(l.Coverage.Remaining, cur),
		})
	}
	out.Table(table)
}

func fundsList(out *md.Markdown, doc *fincal.Document) {
	if len(doc.Funds) == 0 {
		out.PlainText("(vacío)")
		return
	}
	items := make([]string, 0, len(doc.Funds))
	for _, f := range doc.Funds {
		items = append(items, fmt.Sprintf("%s: %s", f.Name, money(f.Balance, doc.Settings.Currency)))
	}
	out.BulletList(items...)
}
