package cmd

import (
	"context"
	"flag"

	"github.com/etnz/fincal"
	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger document into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `fin fmt

  Validates and formats the ledger document. Records are repaired the way
  every command repairs them when loading: missing ids are generated, amounts
  typed as text are parsed, spanish statuses are translated and invalid
  records are dropped. The document is then written back in canonical form.
  Run with -v to see the repairs.

Usage Examples:
# Formats the default ledger file.
$ fin fmt
`
}

func (*fmtCmd) SetFlags(f *flag.FlagSet) {}

func (*fmtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return update(ctx, func(l *fincal.Ledger) error {
		doc := l.Document()
		printf("✅ Ledger formatted: %d transactions, %d obligations, %d allocations, %d funds.\n",
			len(doc.Transactions), len(doc.Obligations), len(doc.Allocations), len(doc.Funds))
		return nil
	})
}
