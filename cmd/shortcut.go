package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/fincal"
	"github.com/etnz/fincal/renderer"
	"github.com/google/subcommands"
)

type shortcutCmd struct {
	output string
}

func (*shortcutCmd) Name() string     { return "shortcut" }
func (*shortcutCmd) Synopsis() string { return "run an automation shortcut" }
func (*shortcutCmd) Usage() string {
	return `fin shortcut [-o <file.ics>] <action> | <json> | -

  Runs the command of a phone automation. The input is either an action name:

    sync             exports the current month as an iCalendar feed
    summary          shows the monthly totals
    expense-summary  shows the expenses by category (alias: gastos)

  or a JSON object recording a quick transaction:

    {"action":"add-expense","name":"Café","amount":"45,50","category":"Comida"}
    {"action":"add-income","amount":1200}

  "-" reads the input from stdin. See 'fin topic shortcuts'.
`
}

func (c *shortcutCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file of the sync action, stdout by default")
}

func (c *shortcutCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	input := strings.Join(f.Args(), " ")
	if input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			return subcommands.ExitFailure
		}
		input = string(data)
	}
	s, err := fincal.ParseShortcut(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	month := today().MonthOf()
	switch s.Action {
	case fincal.SyncCalendar:
		return view(ctx, func(l *fincal.Ledger) error {
			events := fincal.Events(l.Calculator(), l.Document(), month)
			return writeOutput(c.output, func(w io.Writer) error {
				return fincal.EncodeICS(w, events, now())
			})
		})
	case fincal.ShowSummary:
		return view(ctx, func(l *fincal.Ledger) error {
			totals := l.Calculator().MonthlyTotals(l.Document(), month)
			printMarkdown(renderer.SummaryMarkdown(totals, month, l.Currency()))
			return nil
		})
	case fincal.ShowExpenseSummary:
		return view(ctx, func(l *fincal.Ledger) error {
			rows := fincal.ExpensesByCategory(l.Document(), month)
			printMarkdown(renderer.ExpensesMarkdown(rows, month, l.Currency()))
			return nil
		})
	}

	return update(ctx, func(l *fincal.Ledger) error {
		in, err := s.Transaction(l.Document().Settings)
		if err != nil {
			return err
		}
		tx, err := l.AddTransaction(in)
		if err != nil {
			return err
		}
		printf("✅ %s %s: %s %s (%s)\n", txLabel(tx.Type), tx.Date, tx.Name, fincal.M(tx.Signed(), l.Currency()), tx.ID)
		return nil
	})
}
