package renderer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/etnz/fincal"
	"github.com/etnz/fincal/date"
	"github.com/shopspring/decimal"
)

func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) date.Date { return date.MustParse(s) }

var (
	january = date.MustParseMonth("2024-01")
	today   = day("2024-01-15")
)

// testDocument has a few records in January 2024.
func testDocument() *fincal.Document {
	doc := fincal.NewDocument()
	doc.Settings.StartBalance = D("100")
	doc.Funds = []fincal.Fund{{ID: "f1", Name: "Ahorro", Balance: D("250")}}
	doc.Obligations = []fincal.Obligation{
		{ID: "o2", Name: "Luz", DueDate: day("2024-01-20"), Amount: D("80"), Status: fincal.Pending},
		{ID: "o1", Name: "Renta", DueDate: day("2024-01-10"), Amount: D("500"), Status: fincal.Covered},
	}
	doc.Transactions = []fincal.Transaction{
		{ID: "t1", Date: day("2024-01-05"), Type: fincal.Income, Name: "Sueldo", Amount: D("1000")},
		{ID: "t2", Date: day("2024-01-06"), Type: fincal.Expense, Name: "Café", Amount: D("45.5"), Category: "Comida"},
		{ID: "t3", Date: day("2024-01-06"), Type: fincal.Expense, Name: "Taxi", Amount: D("60"), Category: "Transporte"},
		{ID: "t4", Date: day("2024-01-08"), Type: fincal.Expense, Name: "Cena", Amount: D("30"), Category: "Comida"},
	}
	doc.Allocations = []fincal.Allocation{
		{ID: "a1", Date: day("2024-01-06"), Amount: D("300"), Direction: fincal.ToFund, FundID: "f1"},
		{ID: "a2", Date: day("2024-01-07"), Amount: D("500"), Direction: fincal.ToObligation, ObligationID: "o1"},
		{ID: "a3", Date: day("2024-01-08"), Amount: D("50"), Direction: fincal.Release, FundID: "f1"},
	}
	return doc
}

// assertContains checks that every want appears in got, in order.
func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	rest := got
	for _, want := range wants {
		i := strings.Index(rest, want)
		if i < 0 {
			t.Errorf("output does not contain %q (in order):\n%s", want, got)
			return
		}
		rest = rest[i+len(want):]
	}
}

func TestMonthMarkdown(t *testing.T) {
	got := MonthMarkdown(fincal.Recompute{}, testDocument(), january, today)
	assertContains(t, got,
		"# 📅 Mes 2024-01",
		"2024-01-05", "+$1,000.00", "**$1,100.00**",
		"2024-01-06", "-$105.50", "-$300.00", "**$694.50**",
		"2024-01-08", "+$50.00",
		"⭐ 2024-01-15", "**$214.50**",
		"## 🧾 Obligaciones del mes",
		"🟢", "2024-01-10", "Renta",
		"🔴", "2024-01-20", "Luz",
		"## 💰 Fondos",
		"Ahorro: $250.00",
	)
}

func TestMonthMarkdown_Empty(t *testing.T) {
	doc := fincal.NewDocument()
	doc.Funds = nil
	got := MonthMarkdown(fincal.Recompute{}, doc, date.MustParseMonth("2023-06"), today)
	assertContains(t, got, "(sin movimientos)", "(sin obligaciones)", "(vacío)")
}

func TestSummaryMarkdown(t *testing.T) {
	doc := testDocument()
	totals := fincal.Recompute{}.MonthlyTotals(doc, january)
	got := SummaryMarkdown(totals, january, "MXN")
	assertContains(t, got,
		"📊 Resumen 2024-01",
		"Ingresos", "$1,000.00",
		"Gastos", "-$135.50",
		"Neto", "$864.50",
		"Apartado", "-$800.00",
		"Cobertura obligaciones", "86.2%",
		"Pagadas", "0.0%",
	)
}

func TestExpensesMarkdown(t *testing.T) {
	rows := fincal.ExpensesByCategory(testDocument(), january)
	got := ExpensesMarkdown(rows, january, "MXN")
	assertContains(t, got,
		"Total gastos: **-$135.50**",
		"Comida", "-$75.50", "55.7%",
		"Transporte", "-$60.00", "44.3%",
	)

	empty := ExpensesMarkdown(nil, january, "MXN")
	assertContains(t, empty, "Total gastos: **$0.00**", "(sin gastos este mes)")
}

func TestObligationsMarkdown(t *testing.T) {
	got := ObligationsMarkdown(fincal.Recompute{}, testDocument())
	assertContains(t, got, "Renta", "-$500.00", "$500.00", "$0.00", "Luz", "-$80.00")
}

func TestSearchMarkdown(t *testing.T) {
	doc := testDocument()
	for i := 0; i < 20; i++ {
		doc.Transactions = append(doc.Transactions, fincal.Transaction{
			ID: fincal.NewID("tx"), Date: day("2024-01-09"), Type: fincal.Expense, Name: "Taxi", Amount: D("1"),
		})
	}
	got := SearchMarkdown(fincal.Search(doc, "taxi"), "MXN")
	assertContains(t, got, "## Transacciones (21)", "2024-01-06 Taxi -$60.00", "… y 6 más")
	if strings.Contains(got, "## Obligaciones") {
		t.Errorf("empty obligation section must not be printed:\n%s", got)
	}

	if got := SearchMarkdown(fincal.Search(doc, "nada"), "MXN"); !strings.Contains(got, "(sin coincidencias)") {
		t.Errorf("SearchMarkdown() = %q, want no match placeholder", got)
	}
}

func TestCalendarMarkdown(t *testing.T) {
	got := CalendarMarkdown(fincal.Recompute{}, testDocument(), january, today)
	// January 2024 starts on a Monday.
	assertContains(t, got,
		"| L | M | M | J | V | S | D |",
		"| **1** | **2** | **3** | **4** | **5** 💰 | **6** 💸🧷 | **7** 🧷 |",
		"⭐ **15**",
		"| **29** | **30** | **31** |  |  |  |  |",
		"## 2024-01-05", "- 💰 Ingresos: $1,000.00",
		"## 2024-01-10", "- 🧾 🟢 Renta: -$500.00",
	)
}

func TestCalendarHTML(t *testing.T) {
	var b bytes.Buffer
	if err := CalendarHTML(&b, fincal.Recompute{}, testDocument(), january, today); err != nil {
		t.Fatalf("CalendarHTML() failed: %v", err)
	}
	assertContains(t, b.String(),
		"<title>Calendario 2024-01</title>",
		"<h1>Calendario 2024-01</h1>",
		"<table>",
		"<strong>5</strong> 💰",
		"</table>",
		"<h2>2024-01-05</h2>",
		"<li>💰 Ingresos: $1,000.00</li>",
	)
}
