package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/fincal"
	"github.com/etnz/fincal/renderer"
	"github.com/google/subcommands"
)

type monthCmd struct {
	month string
}

func (*monthCmd) Name() string     { return "month" }
func (*monthCmd) Synopsis() string { return "display the month view" }
func (*monthCmd) Usage() string {
	return `fin month [-m <YYYY-MM>]

  Displays the days of the month with activity and the running available
  balance, the obligations due in the month and the funds.
`
}

func (c *monthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Month (YYYY-MM), the current month by default")
}

func (c *monthCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	month, err := parseMonth(c.month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
		return subcommands.ExitUsageError
	}
	return view(ctx, func(l *fincal.Ledger) error {
		printMarkdown(renderer.MonthMarkdown(l.Calculator(), l.Document(), month, l.Today()))
		return nil
	})
}

type summaryCmd struct {
	month string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the monthly totals" }
func (*summaryCmd) Usage() string {
	return `fin summary [-m <YYYY-MM>]

  Displays the income, expenses, allocations and obligation coverage of the
  month.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Month (YYYY-MM), the current month by default")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	month, err := parseMonth(c.month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
		return subcommands.ExitUsageError
	}
	return view(ctx, func(l *fincal.Ledger) error {
		totals := l.Calculator().MonthlyTotals(l.Document(), month)
		printMarkdown(renderer.SummaryMarkdown(totals, month, l.Currency()))
		return nil
	})
}

type expensesCmd struct {
	month string
}

func (*expensesCmd) Name() string     { return "expenses" }
func (*expensesCmd) Synopsis() string { return "display the expenses by category" }
func (*expensesCmd) Usage() string {
	return `fin expenses [-m <YYYY-MM>]

  Displays the expenses of the month by category, largest first.
`
}

func (c *expensesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Month (YYYY-MM), the current month by default")
}

func (c *expensesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	month, err := parseMonth(c.month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
		return subcommands.ExitUsageError
	}
	return view(ctx, func(l *fincal.Ledger) error {
		rows := fincal.ExpensesByCategory(l.Document(), month)
		printMarkdown(renderer.ExpensesMarkdown(rows, month, l.Currency()))
		return nil
	})
}

type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search transactions and obligations" }
func (*searchCmd) Usage() string {
	return `fin search <text>

  Lists the transactions whose name, category or note contain the text, and
  the obligations whose name or note contain it. Case is ignored.
`
}
func (*searchCmd) SetFlags(f *flag.FlagSet) {}

func (*searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	needle, err := textOrAsk(strings.Join(f.Args(), " "), "Buscar")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return view(ctx, func(l *fincal.Ledger) error {
		printMarkdown(renderer.SearchMarkdown(fincal.Search(l.Document(), needle), l.Currency()))
		return nil
	})
}

type queryCmd struct{}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "evaluate a JSONPath expression on the ledger" }
func (*queryCmd) Usage() string {
	return `fin query <jsonpath>

  Prints, as JSON, the result of a JSONPath expression evaluated against the
  ledger document.

Usage Examples:
# Names of the funds
$ fin query '$.funds[*].name'
`
}
func (*queryCmd) SetFlags(f *flag.FlagSet) {}

func (*queryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: query takes exactly one expression")
		return subcommands.ExitUsageError
	}
	return view(ctx, func(l *fincal.Ledger) error {
		v, err := fincal.Query(l.Document(), f.Arg(0))
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		printf("%s\n", data)
		return nil
	})
}
