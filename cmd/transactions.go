package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fincal"
	"github.com/google/subcommands"
)

// txCmd records an income or an expense.
type txCmd struct {
	typ      fincal.TxType
	amount   string
	name     string
	date     string
	category string
	note     string
	hour     int
}

func (c *txCmd) Name() string { return c.typ.String() }
func (c *txCmd) Synopsis() string {
	if c.typ == fincal.Income {
		return "record an income"
	}
	return "record an expense"
}
func (c *txCmd) Usage() string {
	return fmt.Sprintf(`fin %s -a <amount> -n <name> [-d <date>] [-c <category>] [-note <note>] [-hour <0-23>]

  Records an %s. Missing amount and name are asked for.
`, c.Name(), c.Name())
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount, greater than 0")
	f.StringVar(&c.name, "n", "", "Name of the transaction")
	f.StringVar(&c.date, "d", "", "Date, today by default. See 'fin topic dates'")
	f.StringVar(&c.category, "c", "", "Category")
	f.StringVar(&c.note, "note", "", "Free note")
	f.IntVar(&c.hour, "hour", -1, "Hour of the calendar event, the configured hour by default")
}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := amountOrAsk(c.amount, "Monto")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	name, err := textOrAsk(c.name, "Concepto")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return update(ctx, func(l *fincal.Ledger) error {
		tx, err := l.AddTransaction(fincal.NewTransaction{
			Date:      on,
			Type:      c.typ,
			Name:      name,
			Amount:    amount,
			Category:  c.category,
			Note:      c.note,
			EventHour: hour(c.hour),
		})
		if err != nil {
			return err
		}
		printf("✅ %s %s: %s %s (%s)\n", txLabel(tx.Type), tx.Date, tx.Name, fincal.M(tx.Signed(), l.Currency()), tx.ID)
		return nil
	})
}

func txLabel(typ fincal.TxType) string {
	if typ == fincal.Income {
		return "Ingreso"
	}
	return "Gasto"
}

var kindLabels = map[string]string{
	"tx":         "Movimiento",
	"allocation": "Apartado",
	"fund":       "Fondo",
	"obligation": "Obligación",
}

// deleteCmd deletes a record by id.
type deleteCmd struct {
	kind string
}

func (c *deleteCmd) Name() string     { return "delete-" + c.kind }
func (c *deleteCmd) Synopsis() string { return "delete a " + c.kind }
func (c *deleteCmd) Usage() string {
	usage := fmt.Sprintf("fin %s <id>\n\n  Deletes the %s with the given id.\n", c.Name(), c.kind)
	switch c.kind {
	case "allocation":
		usage += "  The fund or the obligation coverage is updated accordingly.\n"
	case "obligation":
		usage += "  The allocations towards the obligation are deleted too.\n"
	case "fund":
		usage += "  Only empty funds that no allocation references can be deleted.\n"
	}
	return usage
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: %s takes exactly one id\n", c.Name())
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	return update(ctx, func(l *fincal.Ledger) error {
		switch c.kind {
		case "tx":
			if err := l.DeleteTransaction(id); err != nil {
				return err
			}
		case "allocation":
			if err := l.DeleteAllocation(id); err != nil {
				return err
			}
		case "fund":
			fund, err := findFund(l.Document(), id)
			if err != nil {
				return err
			}
			if err := l.DeleteFund(fund.ID); err != nil {
				return err
			}
		case "obligation":
			o, err := findObligation(l.Document(), id)
			if err != nil {
				return err
			}
			n, err := l.DeleteObligation(o.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				printf("%d apartado(s) eliminado(s) con la obligación.\n", n)
			}
		}
		printf("✅ %s %s eliminado\n", kindLabels[c.kind], id)
		return nil
	})
}
