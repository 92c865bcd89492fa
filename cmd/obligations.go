package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fincal"
	"github.com/etnz/fincal/renderer"
	"github.com/google/subcommands"
)

type obligationsCmd struct{}

func (*obligationsCmd) Name() string     { return "obligations" }
func (*obligationsCmd) Synopsis() string { return "list the obligations and their coverage" }
func (*obligationsCmd) Usage() string {
	return `fin obligations

  Lists every obligation by due date, with its coverage and status.
`
}
func (*obligationsCmd) SetFlags(f *flag.FlagSet) {}

func (*obligationsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return view(ctx, func(l *fincal.Ledger) error {
		printMarkdown(renderer.ObligationsMarkdown(l.Calculator(), l.Document()))
		return nil
	})
}

type obligationAddCmd struct {
	name   string
	amount string
	due    string
	note   string
	hour   int
}

func (*obligationAddCmd) Name() string     { return "obligation-add" }
func (*obligationAddCmd) Synopsis() string { return "schedule an obligation (bill or debt)" }
func (*obligationAddCmd) Usage() string {
	return `fin obligation-add -n <name> -a <amount> -due <date> [-note <note>] [-hour <0-23>]

  Schedules a pending obligation due on the given date.
`
}

func (c *obligationAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "n", "", "Name of the obligation")
	f.StringVar(&c.amount, "a", "", "Amount due, greater than 0")
	f.StringVar(&c.due, "due", "", "Due date, today by default")
	f.StringVar(&c.note, "note", "", "Free note")
	f.IntVar(&c.hour, "hour", -1, "Hour of the calendar event")
}

func (c *obligationAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	due, err := parseDate(c.due)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing due date: %v\n", err)
		return subcommands.ExitUsageError
	}
	name, err := textOrAsk(c.name, "Obligación")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := amountOrAsk(c.amount, "Monto")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return update(ctx, func(l *fincal.Ledger) error {
		o, err := l.AddObligation(fincal.NewObligation{Name: name, DueDate: due, Amount: amount, Note: c.note, EventHour: hour(c.hour)})
		if err != nil {
			return err
		}
		printf("✅ Obligación %s %s: %s (%s)\n", o.DueDate, o.Name, fincal.M(o.Amount, l.Currency()), o.ID)
		return nil
	})
}

type statusCmd struct{}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "change the status of an obligation" }
func (*statusCmd) Usage() string {
	return `fin status <obligation> <pending|covered|paid>

  Overrides the status of an obligation. Spanish names (pendiente, cubierta,
  pagada) are accepted too.
`
}
func (*statusCmd) SetFlags(f *flag.FlagSet) {}

func (*statusCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: status takes an obligation and a status")
		return subcommands.ExitUsageError
	}
	status, err := fincal.ParseStatus(f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return update(ctx, func(l *fincal.Ledger) error {
		o, err := findObligation(l.Document(), f.Arg(0))
		if err != nil {
			return err
		}
		if err := l.ChangeObligationStatus(o.ID, status); err != nil {
			return err
		}
		printf("✅ Estado actualizado: %s → %s\n", o.Name, status)
		return nil
	})
}

type payCmd struct {
	obligation string
	fund       string
	amount     string
	date       string
	hour       int
}

func (*payCmd) Name() string     { return "pay" }
func (*payCmd) Synopsis() string { return "register the payment of an obligation" }
func (*payCmd) Usage() string {
	return `fin pay -o <obligation> -a <amount> [-f <fund>] [-d <date>] [-hour <0-23>]

  Records the payment as an expense, drawing the money from a fund when -f is
  given. The obligation status follows the payment policy, see -policy.
`
}

func (c *payCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.obligation, "o", "", "Obligation id or name")
	f.StringVar(&c.fund, "f", "", "Fund id or name to pay from")
	f.StringVar(&c.amount, "a", "", "Amount paid, greater than 0")
	f.StringVar(&c.date, "d", "", "Date, today by default")
	f.IntVar(&c.hour, "hour", -1, "Hour of the calendar event, the payment hour by default")
}

func (c *payCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := amountOrAsk(c.amount, "Monto pagado")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return update(ctx, func(l *fincal.Ledger) error {
		o, err := findObligation(l.Document(), c.obligation)
		if err != nil {
			return err
		}
		p := fincal.Payment{ObligationID: o.ID, Amount: amount, Date: on, EventHour: hour(c.hour)}
		if c.fund != "" {
			fund, err := findFund(l.Document(), c.fund)
			if err != nil {
				return err
			}
			p.FundID = fund.ID
		}
		tx, err := l.RegisterPayment(p)
		if err != nil {
			return err
		}
		printf("✅ %s (%s) → %s\n", tx.Name, fincal.M(tx.Amount, l.Currency()), l.Document().Obligation(o.ID).Status)
		return nil
	})
}
