package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/fincal"
	"github.com/etnz/fincal/renderer"
	"github.com/google/subcommands"
)

type fundsCmd struct{}

func (*fundsCmd) Name() string     { return "funds" }
func (*fundsCmd) Synopsis() string { return "list the funds and their balances" }
func (*fundsCmd) Usage() string {
	return `fin funds

  Lists the funds (savings envelopes) and their balances.
`
}
func (*fundsCmd) SetFlags(f *flag.FlagSet) {}

func (*fundsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return view(ctx, func(l *fincal.Ledger) error {
		printMarkdown(renderer.FundsMarkdown(l.Document()))
		return nil
	})
}

type fundAddCmd struct{}

func (*fundAddCmd) Name() string     { return "fund-add" }
func (*fundAddCmd) Synopsis() string { return "create a fund" }
func (*fundAddCmd) Usage() string {
	return `fin fund-add <name>

  Creates an empty fund. Fund names are unique, ignoring case.
`
}
func (*fundAddCmd) SetFlags(f *flag.FlagSet) {}

func (*fundAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name, err := textOrAsk(strings.Join(f.Args(), " "), "Nombre del fondo")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return update(ctx, func(l *fincal.Ledger) error {
		fund, err := l.AddFund(name)
		if err != nil {
			return err
		}
		printf("✅ Fondo %s creado (%s)\n", fund.Name, fund.ID)
		return nil
	})
}

type adjustCmd struct {
	fund   string
	delta  string
	reason string
}

func (*adjustCmd) Name() string     { return "adjust" }
func (*adjustCmd) Synopsis() string { return "correct a fund balance" }
func (*adjustCmd) Usage() string {
	return `fin adjust -f <fund> -a <delta> -r <reason>

  Adds delta, positive or negative, to the balance of a fund. The adjustment
  is logged with its reason. A fund balance can never become negative.
`
}

func (c *adjustCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fund, "f", "", "Fund id or name")
	f.StringVar(&c.delta, "a", "", "Signed amount to add to the balance")
	f.StringVar(&c.reason, "r", "", "Reason of the adjustment")
}

func (c *adjustCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	delta, err := parseAmount(c.delta)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	reason, err := textOrAsk(c.reason, "Motivo")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return update(ctx, func(l *fincal.Ledger) error {
		fund, err := findFund(l.Document(), c.fund)
		if err != nil {
			return err
		}
		if _, err := l.AdjustFund(fund.ID, delta, reason); err != nil {
			return err
		}
		printf("✅ %s %s → %s\n", fund.Name, fincal.M(delta, l.Currency()).SignedString(), fincal.M(fund.Balance, l.Currency()))
		return nil
	})
}

type allocateCmd struct {
	fund       string
	obligation string
	amount     string
	date       string
	note       string
	hour       int
	force      bool
}

func (*allocateCmd) Name() string     { return "allocate" }
func (*allocateCmd) Synopsis() string { return "set money aside for a fund or an obligation" }
func (*allocateCmd) Usage() string {
	return `fin allocate (-f <fund> | -o <obligation>) -a <amount> [-d <date>] [-note <note>] [-force]

  Moves money from the available balance into a fund, or towards an
  obligation. Allocating more than the available balance asks for a
  confirmation, unless -force is given.
`
}

func (c *allocateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fund, "f", "", "Fund id or name")
	f.StringVar(&c.obligation, "o", "", "Obligation id or name")
	f.StringVar(&c.amount, "a", "", "Amount, greater than 0")
	f.StringVar(&c.date, "d", "", "Date, today by default")
	f.StringVar(&c.note, "note", "", "Free note")
	f.IntVar(&c.hour, "hour", -1, "Hour of the calendar event")
	f.BoolVar(&c.force, "force", false, "Allocate even beyond the available balance")
}

func (c *allocateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.fund != "" && c.obligation != "" {
		fmt.Fprintln(os.Stderr, "Error: -f and -o cannot be used together.")
		return subcommands.ExitUsageError
	}
	on, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := amountOrAsk(c.amount, "Monto a apartar")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return update(ctx, func(l *fincal.Ledger) error {
		req := fincal.AllocationRequest{
			Date:      on,
			Amount:    amount,
			Note:      c.note,
			EventHour: hour(c.hour),
			Force:     c.force,
		}
		var target string
		if c.obligation != "" {
			o, err := findObligation(l.Document(), c.obligation)
			if err != nil {
				return err
			}
			req.Direction, req.TargetID, target = fincal.ToObligation, o.ID, o.Name
		} else {
			fund, err := findFund(l.Document(), c.fund)
			if err != nil {
				return err
			}
			req.Direction, req.TargetID, target = fincal.ToFund, fund.ID, fund.Name
		}

		a, err := l.Allocate(req)
		var over *fincal.OverAllocationError
		if errors.As(err, &over) {
			ok, perr := prompter.Confirm(fmt.Sprintf("⚠️ Disponible estimado: %s. Intentas apartar: %s. ¿Deseas continuar de todos modos?",
				fincal.M(over.Available, over.Currency), fincal.M(over.Amount, over.Currency)))
			if perr != nil {
				return perr
			}
			if !ok {
				return ErrCancelled
			}
			req.Force = true
			a, err = l.Allocate(req)
		}
		if err != nil {
			return err
		}
		printf("✅ %s apartado para %s (%s)\n", fincal.M(a.Amount, l.Currency()), target, a.ID)
		return nil
	})
}

type releaseCmd struct {
	fund   string
	amount string
	date   string
	note   string
}

func (*releaseCmd) Name() string     { return "release" }
func (*releaseCmd) Synopsis() string { return "return money from a fund to the available balance" }
func (*releaseCmd) Usage() string {
	return `fin release -f <fund> -a <amount> [-d <date>] [-note <note>]

  Returns money held by a fund to the available balance.
`
}

func (c *releaseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fund, "f", "", "Fund id or name")
	f.StringVar(&c.amount, "a", "", "Amount, greater than 0")
	f.StringVar(&c.date, "d", "", "Date, today by default")
	f.StringVar(&c.note, "note", "", "Free note")
}

func (c *releaseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := amountOrAsk(c.amount, "Monto a liberar")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return update(ctx, func(l *fincal.Ledger) error {
		fund, err := findFund(l.Document(), c.fund)
		if err != nil {
			return err
		}
		a, err := l.Release(fincal.ReleaseRequest{Date: on, FundID: fund.ID, Amount: amount, Note: c.note})
		if err != nil {
			return err
		}
		printf("✅ %s liberado de %s (%s)\n", fincal.M(a.Amount, l.Currency()), fund.Name, a.ID)
		return nil
	})
}
