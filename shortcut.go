package fincal

import (
	"fmt"
	"strings"

	"github.com/etnz/fincal/date"
	"github.com/shopspring/decimal"
)

// ShortcutAction is what an automation shortcut asks for.
type ShortcutAction int

const (
	// SyncCalendar exports the calendar events of the current month.
	SyncCalendar ShortcutAction = iota
	// ShowSummary shows the monthly totals.
	ShowSummary
	// ShowExpenseSummary shows the expenses by category.
	ShowExpenseSummary
	// AddExpense records an expense.
	AddExpense
	// AddIncome records an income.
	AddIncome
)

func (a ShortcutAction) String() string {
	switch a {
	case SyncCalendar:
		return "sync"
	case ShowSummary:
		return "summary"
	case ShowExpenseSummary:
		return "expense-summary"
	case AddExpense:
		return "add-expense"
	case AddIncome:
		return "add-income"
	default:
		return "unknown"
	}
}

// ParseShortcutAction parses an action name, case insensitive. Aliases
// "gastos", "expense" and "income" are accepted.
func ParseShortcutAction(s string) (ShortcutAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sync":
		return SyncCalendar, nil
	case "summary":
		return ShowSummary, nil
	case "expense-summary", "gastos":
		return ShowExpenseSummary, nil
	case "add-expense", "expense":
		return AddExpense, nil
	case "add-income", "income":
		return AddIncome, nil
	default:
		return 0, fmt.Errorf("%w: unknown shortcut action %q", ErrValidation, s)
	}
}

// Shortcut is a parsed automation command.
type Shortcut struct {
	Action   ShortcutAction
	Name     string
	Amount   decimal.Decimal
	Date     date.Date // zero means today
	Category string
	Note     string
	Hour     *int
}

// QuickName is the name of quick transactions recorded without one.
const QuickName = "Movimiento rápido"

// ParseShortcut parses the input of an automation: either a bare action
// name like "summary", or a JSON object like
//
//	{"action":"add-expense","name":"Café","amount":"45,50","category":"Comida"}
//
// "concept" is accepted for "name". Dates other than "YYYY-MM-DD" and hours
// outside 0-23 are ignored.
func ParseShortcut(input string) (Shortcut, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Shortcut{}, fmt.Errorf("%w: empty shortcut", ErrValidation)
	}
	if !strings.HasPrefix(input, "{") {
		action, err := ParseShortcutAction(input)
		return Shortcut{Action: action}, err
	}

	raw, err := decodeRaw(strings.NewReader(input))
	if err != nil {
		// Not JSON after all, try it as an action name.
		action, aerr := ParseShortcutAction(input)
		return Shortcut{Action: action}, aerr
	}
	obj, _ := raw.(map[string]any)
	o := object{m: obj}

	name, _ := obj["action"].(string)
	action, err := ParseShortcutAction(name)
	if err != nil {
		return Shortcut{}, err
	}
	s := Shortcut{
		Action:   action,
		Name:     o.text("name"),
		Category: o.text("category"),
		Note:     o.text("note"),
		Hour:     o.hour("hour"),
	}
	if s.Name == "" {
		s.Name = o.text("concept")
	}
	if amount, ok := toDecimal(obj["amount"]); ok {
		s.Amount = amount
	}
	if str, ok := obj["date"].(string); ok && len(str) == len(date.DateFormat) {
		if on, err := date.Parse(str); err == nil {
			s.Date = on
		}
	}
	return s, nil
}

// Transaction returns the quick transaction an AddExpense or AddIncome
// shortcut records, filling in the defaults.
func (s Shortcut) Transaction(settings Settings) (NewTransaction, error) {
	var typ TxType
	category := s.Category
	switch s.Action {
	case AddExpense:
		typ = Expense
		if category == "" {
			category = "Importante"
		}
	case AddIncome:
		typ = Income
		if category == "" {
			category = "Ingreso"
		}
	default:
		return NewTransaction{}, fmt.Errorf("%w: shortcut %s does not record a transaction", ErrValidation, s.Action)
	}
	if !s.Amount.IsPositive() {
		return NewTransaction{}, fmt.Errorf("%w: the shortcut needs a valid amount", ErrInvalidAmount)
	}
	name := s.Name
	if name == "" {
		name = QuickName
	}
	hour := settings.CalendarTimes.TransactionHour
	if s.Hour != nil {
		hour = *s.Hour
	}
	return NewTransaction{
		Date:      s.Date,
		Type:      typ,
		Name:      name,
		Amount:    s.Amount,
		Category:  category,
		Note:      s.Note,
		EventHour: &hour,
	}, nil
}
