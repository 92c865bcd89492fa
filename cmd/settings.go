package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/etnz/fincal"
	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"
)

type settingsCmd struct {
	currency        string
	startBalance    string
	obligationHour  int
	transactionHour int
	allocationHour  int
	paymentHour     int
	duration        int
}

func (*settingsCmd) Name() string     { return "settings" }
func (*settingsCmd) Synopsis() string { return "display or change the ledger settings" }
func (*settingsCmd) Usage() string {
	return `fin settings [-currency <code>] [-start <amount>] [-obligation-hour <h>] [-transaction-hour <h>]
             [-allocation-hour <h>] [-payment-hour <h>] [-duration <minutes>]

  Displays the settings, after applying the given changes. Hours are 0-23,
  the event duration is 5-240 minutes.
`
}

func (c *settingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "Currency code amounts are displayed in")
	f.StringVar(&c.startBalance, "start", "", "Start balance")
	f.IntVar(&c.obligationHour, "obligation-hour", -1, "Default hour of obligation events")
	f.IntVar(&c.transactionHour, "transaction-hour", -1, "Default hour of transaction events")
	f.IntVar(&c.allocationHour, "allocation-hour", -1, "Default hour of allocation events")
	f.IntVar(&c.paymentHour, "payment-hour", -1, "Default hour of payment events")
	f.IntVar(&c.duration, "duration", -1, "Duration of the calendar events in minutes")
}

func (c *settingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return update(ctx, func(l *fincal.Ledger) error {
		if c.currency != "" {
			if err := l.SetCurrency(c.currency); err != nil {
				return err
			}
		}
		if c.startBalance != "" {
			balance, err := parseAmount(c.startBalance)
			if err != nil {
				return err
			}
			l.SetStartBalance(balance)
		}
		times := l.Document().Settings.CalendarTimes
		changed := false
		for _, s := range []struct {
			value int
			field *int
		}{
			{c.obligationHour, &times.ObligationHour},
			{c.transactionHour, &times.TransactionHour},
			{c.allocationHour, &times.AllocationHour},
			{c.paymentHour, &times.PaymentHour},
			{c.duration, &times.DurationMinutes},
		} {
			if s.value >= 0 {
				*s.field = s.value
				changed = true
			}
		}
		if changed {
			if err := l.UpdateCalendarTimes(times); err != nil {
				return err
			}
		}
		printMarkdown(settingsMarkdown(l.Document().Settings))
		return nil
	})
}

func settingsMarkdown(s fincal.Settings) string {
	hour := func(h int) string { return fmt.Sprintf("%02d:00", h) }
	var buf bytes.Buffer
	return md.NewMarkdown(&buf).
		H1("⚙️ Configuración").
		Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Ajuste", "Valor"},
			Rows: [][]string{
				{"Moneda", s.Currency},
				{"Saldo inicial", fincal.M(s.StartBalance, s.Currency).String()},
				{"Hora obligaciones", hour(s.CalendarTimes.ObligationHour)},
				{"Hora transacciones", hour(s.CalendarTimes.TransactionHour)},
				{"Hora apartados", hour(s.CalendarTimes.AllocationHour)},
				{"Hora pagos", hour(s.CalendarTimes.PaymentHour)},
				{"Duración eventos", strconv.Itoa(s.CalendarTimes.DurationMinutes) + " min"},
			},
		}).
		String()
}
