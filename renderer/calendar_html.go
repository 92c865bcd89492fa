package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/etnz/fincal"
	"github.com/etnz/fincal/date"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var weekdays = []string{"L", "M", "M", "J", "V", "S", "D"}

// CalendarMarkdown renders the month as a calendar grid marking the days with
// activity, followed by the details of each of those days.
func CalendarMarkdown(calc fincal.Calculator, doc *fincal.Document, month date.Month, today date.Date) string {
	cur := doc.Settings.Currency
	var b strings.Builder
	fmt.Fprintf(&b, "# Calendario %s\n\n", month)

	fmt.Fprintf(&b, "| %s |\n", strings.Join(weekdays, " | "))
	fmt.Fprintf(&b, "|%s\n", strings.Repeat(":-:|", len(weekdays)))

	// Monday based column of the first day.
	col := (int(month.First().Weekday()) + 6) % 7
	cells := make([]string, col, 7)
	details := make(map[date.Date][]string)
	for day := range month.Days() {
		lines := dayDetails(calc, doc, day, cur)
		details[day] = lines

		num := fmt.Sprintf("**%d**", day.Day())
		if day == today {
			num = "⭐ " + num
		}
		cell := num
		if marks := dayMarks(doc, day, lines); marks != "" {
			cell += " " + marks
		}
		cells = append(cells, cell)
		if len(cells) == 7 {
			fmt.Fprintf(&b, "| %s |\n", strings.Join(cells, " | "))
			cells = cells[:0]
		}
	}
	if len(cells) > 0 {
		for len(cells) < 7 {
			cells = append(cells, "")
		}
		fmt.Fprintf(&b, "| %s |\n", strings.Join(cells, " | "))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Iconos: 💰 ingreso · 💸 gasto · 🧷 apartado · 🧾 obligación · ✅ pagado")
	fmt.Fprintln(&b)

	for day := range month.Days() {
		lines := details[day]
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", day)
		for _, l := range lines {
			fmt.Fprintf(&b, "- %s\n", l)
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}

// dayDetails lists what happened on a day, in plain words.
func dayDetails(calc fincal.Calculator, doc *fincal.Document, day date.Date, cur string) []string {
	var lines []string
	act := calc.DailyActivity(doc, day)
	if !act.Income.IsZero() {
		lines = append(lines, "💰 Ingresos: "+money(act.Income, cur))
	}
	if !act.Expense.IsZero() {
		lines = append(lines, "💸 Gastos: "+money(act.Expense.Neg(), cur))
	}
	if !act.AllocationsOut.IsZero() {
		lines = append(lines, "🧷 Apartados: "+money(act.AllocationsOut.Neg(), cur))
	}
	if !act.AllocationsIn.IsZero() {
		lines = append(lines, "🔓 Liberado: "+signed(act.AllocationsIn, cur))
	}
	for _, o := range doc.Obligations {
		if o.DueDate != day {
			continue
		}
		lines = append(lines, fmt.Sprintf("🧾 %s %s: %s", fincal.SignalOf(calc, doc, o).Emoji(), o.Name, money(o.Amount.Neg(), cur)))
	}
	return lines
}

// dayMarks returns the icons of a calendar cell.
func dayMarks(doc *fincal.Document, day date.Date, details []string) string {
	if len(details) == 0 {
		return ""
	}
	var marks []string
	for _, prefix := range []string{"💰", "💸", "🧷"} {
		for _, l := range details {
			if strings.HasPrefix(l, prefix) {
				marks = append(marks, prefix)
				break
			}
		}
	}
	due, paid := 0, 0
	for _, o := range doc.Obligations {
		if o.DueDate != day {
			continue
		}
		due++
		if o.Status == fincal.Paid {
			paid++
		}
	}
	if due > 0 {
		marks = append(marks, "🧾")
	}
	if paid > 0 {
		marks = append(marks, "✅")
	}
	return strings.Join(marks, "")
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html><head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body{font-family:-apple-system,sans-serif;margin:16px;background:#0b0b0c;color:#fff;}
table{width:100%;border-collapse:separate;border-spacing:6px;}
td{background:#1c1c1e;border:1px solid #2c2c2e;border-radius:12px;padding:8px;vertical-align:top;}
td:empty{background:transparent;border:none;}
h2{font-size:16px;margin-top:18px;}
</style>
</head>
<body>
{{.Body}}
</body></html>
`))

// CalendarHTML writes the calendar of the month as a standalone HTML page.
func CalendarHTML(w io.Writer, calc fincal.Calculator, doc *fincal.Document, month date.Month, today date.Date) error {
	converter := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := converter.Convert([]byte(CalendarMarkdown(calc, doc, month, today)), &body); err != nil {
		return fmt.Errorf("could not convert calendar to HTML: %w", err)
	}
	return page.Execute(w, struct {
		Title string
		Body  template.HTML
	}{
		Title: "Calendario " + month.String(),
		Body:  template.HTML(body.String()),
	})
}
