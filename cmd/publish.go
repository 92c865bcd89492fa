package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/etnz/fincal"
	"github.com/etnz/fincal/date"
	"github.com/etnz/fincal/renderer"
	"github.com/google/subcommands"
)

type reportTask struct {
	Month  date.Month
	Report string
}

// publishedReports lists the reports written for every month, by file name.
var publishedReports = []string{"month.md", "summary.md", "expenses.md", "calendar.html", "calendar.ics"}

type publishCmd struct {
	outputDir      string
	frontMatterTpl string
}

func (*publishCmd) Name() string { return "publish" }

func (*publishCmd) Synopsis() string { return "generates the reports of every month of the ledger" }

func (*publishCmd) Usage() string {
	return `fin publish [-o <dir>] [-frontmatter <file>]

  Generates the month view, summary, expenses, HTML calendar and iCalendar
  feed of every month holding records, and saves them under
  <dir>/<YYYY-MM>/.

  The front matter template, when given, is prepended to the markdown
  reports. It receives {{.Report}} (e.g. "summary") and {{.Month}}, with
  {{.Month.First}} and {{.Month.Last}} its first and last days.
`
}

func (c *publishCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputDir, "o", "reports", "Root directory for the generated reports")
	f.StringVar(&c.frontMatterTpl, "frontmatter", "", "Path to a Go template file for the report front matter")
}

func (c *publishCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var frontMatterTpl *template.Template
	if c.frontMatterTpl != "" {
		var err error
		frontMatterTpl, err = template.ParseFiles(c.frontMatterTpl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse front matter template: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	log := newLogger()

	return view(ctx, func(l *fincal.Ledger) error {
		months := l.Document().Months()
		if len(months) == 0 {
			printf("Ledger is empty, nothing to publish.\n")
			return nil
		}
		for _, month := range months {
			for _, report := range publishedReports {
				task := reportTask{Month: month, Report: report}
				fullPath := filepath.Join(c.outputDir, month.Key(), report)
				if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
					return fmt.Errorf("failed to create output directory for %s: %w", fullPath, err)
				}
				if err := writeOutput(fullPath, func(w io.Writer) error {
					return publishReport(w, l, task, frontMatterTpl)
				}); err != nil {
					return fmt.Errorf("failed to write %s: %w", fullPath, err)
				}
				log.WithField("month", month.Key()).Infof("generated %s", report)
			}
		}
		printf("✅ %d meses publicados en %s\n", len(months), c.outputDir)
		return nil
	})
}

// publishReport writes one report of the task month.
func publishReport(w io.Writer, l *fincal.Ledger, task reportTask, frontMatter *template.Template) error {
	calc, doc, today := l.Calculator(), l.Document(), l.Today()
	var md string
	switch task.Report {
	case "calendar.html":
		return renderer.CalendarHTML(w, calc, doc, task.Month, today)
	case "calendar.ics":
		return fincal.EncodeICS(w, fincal.Events(calc, doc, task.Month), now())
	case "month.md":
		md = renderer.MonthMarkdown(calc, doc, task.Month, today)
	case "summary.md":
		md = renderer.SummaryMarkdown(calc.MonthlyTotals(doc, task.Month), task.Month, l.Currency())
	case "expenses.md":
		md = renderer.ExpensesMarkdown(fincal.ExpensesByCategory(doc, task.Month), task.Month, l.Currency())
	default:
		return fmt.Errorf("unknown report %q", task.Report)
	}
	if frontMatter != nil {
		fm, err := renderFrontMatter(frontMatter, task)
		if err != nil {
			return fmt.Errorf("failed to render front matter: %w", err)
		}
		md = fm + "\n" + md
	}
	_, err := io.WriteString(w, md)
	return err
}

func renderFrontMatter(tpl *template.Template, task reportTask) (string, error) {
	var fmBuffer bytes.Buffer
	if err := tpl.Execute(&fmBuffer, task); err != nil {
		return "", err
	}
	return fmBuffer.String(), nil
}
