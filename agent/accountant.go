package agent

import (
	"context"
	"fmt"

	"github.com/etnz/fincal"
	"github.com/etnz/fincal/date"
	"github.com/etnz/fincal/docs"
	"github.com/etnz/fincal/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// Books gives read access to the ledger. *fincal.Store implements it.
type Books interface {
	View(ctx context.Context, read func(*fincal.Ledger) error) error
}

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:        "Facilitator",
		Description: ``,
		ModelName:   model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.
			The user speaks Spanish most of the time, answer in the user's language.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user comes to understand their month: what they earned and spent, what is set aside
			in their funds, which bills are due and whether they are covered.
			Each message starts with "[Mes de trabajo: YYYY-MM]": when the user does not name a month,
			the question is about that one.

			Devise a plan of questions to ask to each experts and come up with the best reponse to the user's request.
			Never invent figures, always get them from the Accountant.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAdvisor returns an expert grounded on Google Search for general
// budgeting questions.
func NewAdvisor() *Expert {
	return &Expert{
		Name: "Advisor",
		Description: `This is a personal finance advisor,
		aware of budgeting practices, saving strategies and common household expenses.
		Ask the Advisor whenever you need general advice or recent information like rates or prices.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a personal finance advisor. You know about budgeting, emergency funds, debt and
			saving strategies. You Leverage Google Search to ground your assertions in a solid truth.
			You do not know the user's figures, the team's Accountant does.
				`}}},
		},
	}
}

// NewAccountant returns the expert reading the user's ledger.
func NewAccountant(books Books) *Expert {
	lib := accountantFunctions(books)
	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant. They are in charge of reading the user's ledger:
		transactions, funds, allocations and obligations (bills).
		They can compute the month view, the monthly totals, the expenses by category and the available balance.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an accountant in charge of the user's ledger.
				You know how to use the Tools to extract relevant information about the user's month.
				You are part of a team of experts, yours is everything about the user's ledger. They might ask
				you questions about it, pardon their approximative language and figure out what they meant.

				Use the available tools to get information about
				  - the available balance, money not set aside
				  - the funds and their balances
				  - the obligations, their coverage and status
				  - the monthly totals and expenses by category
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// reader computes a markdown answer from the ledger.
type reader func(l *fincal.Ledger, args map[string]any) (string, error)

// readFunc declares a function answered by read in a ledger view.
func readFunc(books Books, decl *genai.FunctionDeclaration, read reader) *Func {
	if decl.Response == nil {
		decl.Response = &genai.Schema{Type: genai.TypeString, Description: "A markdown document."}
	}
	return &Func{
		Decl: decl,
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			var output string
			err := books.View(ctx, func(l *fincal.Ledger) (err error) {
				output, err = read(l, args)
				return err
			})
			if err != nil {
				return errorResponse(id, decl.Name, err)
			}
			return outputResponse(id, decl.Name, output)
		},
	}
}

var monthParam = &genai.Schema{
	Type:        genai.TypeString,
	Description: `The month as YYYY-MM. The current month is the default.`,
}

func monthOnly() *genai.Schema {
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: map[string]*genai.Schema{"month": monthParam},
	}
}

func accountantFunctions(books Books) []*Func {
	return []*Func{
		readFunc(books, &genai.FunctionDeclaration{
			Name: "MonthView",
			Description: `MonthView lists the days of a month with activity: income, expenses, money set aside and released,
			and the running available balance. It also lists the obligations due in the month and the funds.`,
			Parameters: monthOnly(),
		}, func(l *fincal.Ledger, args map[string]any) (string, error) {
			month, err := parseMonth(l, args)
			if err != nil {
				return "", err
			}
			return renderer.MonthMarkdown(l.Calculator(), l.Document(), month, l.Today()), nil
		}),
		readFunc(books, &genai.FunctionDeclaration{
			Name:        "MonthSummary",
			Description: `MonthSummary gives the totals of a month: income, expenses, net, allocated, obligation coverage and savings rate.`,
			Parameters:  monthOnly(),
		}, func(l *fincal.Ledger, args map[string]any) (string, error) {
			month, err := parseMonth(l, args)
			if err != nil {
				return "", err
			}
			return renderer.SummaryMarkdown(l.Calculator().MonthlyTotals(l.Document(), month), month, l.Currency()), nil
		}),
		readFunc(books, &genai.FunctionDeclaration{
			Name:        "ExpensesByCategory",
			Description: `ExpensesByCategory gives the expenses of a month by category, largest first, with their share.`,
			Parameters:  monthOnly(),
		}, func(l *fincal.Ledger, args map[string]any) (string, error) {
			month, err := parseMonth(l, args)
			if err != nil {
				return "", err
			}
			return renderer.ExpensesMarkdown(fincal.ExpensesByCategory(l.Document(), month), month, l.Currency()), nil
		}),
		readFunc(books, &genai.FunctionDeclaration{
			Name:        "Funds",
			Description: `Funds lists the savings funds (envelopes) and their balances.`,
		}, func(l *fincal.Ledger, _ map[string]any) (string, error) {
			return renderer.FundsMarkdown(l.Document()), nil
		}),
		readFunc(books, &genai.FunctionDeclaration{
			Name:        "Obligations",
			Description: `Obligations lists all the bills and debts by due date, with their amount, coverage, missing amount and status.`,
		}, func(l *fincal.Ledger, _ map[string]any) (string, error) {
			return renderer.ObligationsMarkdown(l.Calculator(), l.Document()), nil
		}),
		readFunc(books, &genai.FunctionDeclaration{
			Name:        "Search",
			Description: `Search finds the transactions and obligations whose name, category or note contain a text, ignoring case.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"text": {Type: genai.TypeString, Description: "The text to look for."},
				},
				Required: []string{"text"},
			},
		}, func(l *fincal.Ledger, args map[string]any) (string, error) {
			needle, ok := args["text"].(string)
			if !ok {
				return "", fmt.Errorf("argument 'text' is not a string as expected but %T", args["text"])
			}
			return renderer.SearchMarkdown(fincal.Search(l.Document(), needle), l.Currency()), nil
		}),
		readFunc(books, &genai.FunctionDeclaration{
			Name: "AvailableBalance",
			Description: `AvailableBalance is the money not committed to any fund or obligation,
			counting the records up to a date.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date": {
						Type: genai.TypeString,
						Description: `The date on which to compute the balance. Today is the default.
					Otherwise it uses a flexible date format based on YYYY-MM-DD:

					` + must(docs.Render("dates")),
					},
				},
			},
		}, func(l *fincal.Ledger, args map[string]any) (string, error) {
			on, err := parseDate(l, args)
			if err != nil {
				return "", err
			}
			balance := l.Calculator().AvailableBalance(l.Document(), &on)
			return fmt.Sprintf("Disponible al %s: %s", on, fincal.M(balance, l.Currency())), nil
		}),
	}
}

func parseMonth(l *fincal.Ledger, args map[string]any) (date.Month, error) {
	imonth, hasMonth := args["month"]
	if !hasMonth {
		return l.Today().MonthOf(), nil
	}
	smonth, ok := imonth.(string)
	if !ok {
		return date.Month{}, fmt.Errorf("argument 'month' is not a string as expected but %T", imonth)
	}
	if smonth == "" {
		return l.Today().MonthOf(), nil
	}
	month, err := date.ParseMonth(smonth)
	if err != nil {
		return date.Month{}, fmt.Errorf("argument 'month' must be formatted as YYYY-MM got %q", smonth)
	}
	return month, nil
}

func parseDate(l *fincal.Ledger, args map[string]any) (date.Date, error) {
	idate, hasDate := args["date"]
	if !hasDate {
		return l.Today(), nil
	}
	sdate, ok := idate.(string)
	if !ok {
		return date.Date{}, fmt.Errorf("argument 'date' is not a string as expected but %T", idate)
	}
	on, err := date.ParseInput(sdate, l.Today())
	if err != nil {
		return date.Date{}, fmt.Errorf("argument 'date' must be a valid date got %q. Below is the doc about the format date\n\n%s ", sdate, must(docs.Render("dates")))
	}
	return on, nil
}
