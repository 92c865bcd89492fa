package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/fincal"
	"github.com/etnz/fincal/renderer"
	"github.com/google/subcommands"
)

// writeOutput writes through write into path, or stdout when path is empty.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type calendarCmd struct {
	month  string
	output string
}

func (*calendarCmd) Name() string     { return "calendar" }
func (*calendarCmd) Synopsis() string { return "export the month as an iCalendar feed" }
func (*calendarCmd) Usage() string {
	return `fin calendar [-m <YYYY-MM>] [-o <file.ics>]

  Exports the transactions, allocations and obligations of the month as
  calendar events. Every event carries a tag like FC:TX:<id> in its notes, so
  a calendar sync can replace the events it created before.
`
}

func (c *calendarCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Month (YYYY-MM), the current month by default")
	f.StringVar(&c.output, "o", "", "Output file, stdout by default")
}

func (c *calendarCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	month, err := parseMonth(c.month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
		return subcommands.ExitUsageError
	}
	return view(ctx, func(l *fincal.Ledger) error {
		events := fincal.Events(l.Calculator(), l.Document(), month)
		return writeOutput(c.output, func(w io.Writer) error {
			return fincal.EncodeICS(w, events, now())
		})
	})
}

type htmlCmd struct {
	month  string
	output string
}

func (*htmlCmd) Name() string     { return "html" }
func (*htmlCmd) Synopsis() string { return "render the month as an HTML calendar" }
func (*htmlCmd) Usage() string {
	return `fin html [-m <YYYY-MM>] [-o <file.html>]

  Renders the month as a calendar page with the details of each day.
`
}

func (c *htmlCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Month (YYYY-MM), the current month by default")
	f.StringVar(&c.output, "o", "", "Output file, stdout by default")
}

func (c *htmlCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	month, err := parseMonth(c.month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
		return subcommands.ExitUsageError
	}
	return view(ctx, func(l *fincal.Ledger) error {
		return writeOutput(c.output, func(w io.Writer) error {
			return renderer.CalendarHTML(w, l.Calculator(), l.Document(), month, l.Today())
		})
	})
}
