package cmd

import (
	"fmt"
	"strings"

	"github.com/etnz/fincal"
	"github.com/etnz/fincal/date"
	"github.com/shopspring/decimal"
)

// parseAmount parses an amount typed by the user, "," is read as ".".
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

// amountOrAsk parses s, or asks the user for an amount when s is empty.
func amountOrAsk(s, title string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return prompter.AskAmount(title)
	}
	return parseAmount(s)
}

// textOrAsk returns s, or asks the user for it when s is empty.
func textOrAsk(s, title string) (string, error) {
	if s = strings.TrimSpace(s); s != "" {
		return s, nil
	}
	return prompter.AskText(title, "")
}

// parseDate parses a user supplied date, see date.ParseInput. An empty
// string is the zero date, that operations read as today.
func parseDate(s string) (date.Date, error) {
	if strings.TrimSpace(s) == "" {
		return date.Date{}, nil
	}
	return date.ParseInput(s, today())
}

// parseMonth parses a "YYYY-MM" month, the current month when empty.
func parseMonth(s string) (date.Month, error) {
	if strings.TrimSpace(s) == "" {
		return today().MonthOf(), nil
	}
	return date.ParseMonth(s)
}

// hour returns nil for a negative hour flag, meaning "use the default".
func hour(h int) *int {
	if h < 0 {
		return nil
	}
	return &h
}

func matches(id, name, ref string) bool {
	return id == ref || strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(ref))
}

// findFund finds a fund by id or name, or asks the user to pick one when ref
// is empty.
func findFund(doc *fincal.Document, ref string) (*fincal.Fund, error) {
	if ref == "" {
		names := make([]string, len(doc.Funds))
		for i, f := range doc.Funds {
			names[i] = fmt.Sprintf("%s (%s)", f.Name, fincal.M(f.Balance, doc.Settings.Currency))
		}
		i, err := prompter.AskChoice("Elige fondo", names)
		if err != nil {
			return nil, err
		}
		return &doc.Funds[i], nil
	}
	for i, f := range doc.Funds {
		if matches(f.ID, f.Name, ref) {
			return &doc.Funds[i], nil
		}
	}
	return nil, fmt.Errorf("fund %q %w", ref, fincal.ErrNotFound)
}

// findObligation finds an obligation by id or name, or asks the user to pick
// one when ref is empty.
func findObligation(doc *fincal.Document, ref string) (*fincal.Obligation, error) {
	if ref == "" {
		names := make([]string, len(doc.Obligations))
		for i, o := range doc.Obligations {
			names[i] = fmt.Sprintf("%s %s (%s)", o.DueDate, o.Name, o.Status)
		}
		i, err := prompter.AskChoice("Elige obligación", names)
		if err != nil {
			return nil, err
		}
		return &doc.Obligations[i], nil
	}
	for i, o := range doc.Obligations {
		if matches(o.ID, o.Name, ref) {
			return &doc.Obligations[i], nil
		}
	}
	return nil, fmt.Errorf("obligation %q %w", ref, fincal.ErrNotFound)
}
