package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/shopspring/decimal"
)

// ErrCancelled is returned by a Prompter when the user gives up.
var ErrCancelled = errors.New("cancelled by user")

// Prompter asks the user for the inputs a command is missing.
type Prompter interface {
	// AskAmount asks for an amount greater than 0.
	AskAmount(title string) (decimal.Decimal, error)
	// AskText asks for a text, def is used for an empty answer.
	AskText(title, def string) (string, error)
	// AskChoice asks to pick one of choices and returns its index.
	AskChoice(title string, choices []string) (int, error)
	// Confirm asks a yes or no question.
	Confirm(title string) (bool, error)
}

// FormPrompter asks each question as a one field huh form. In accessible mode
// the form is a numbered, line based prompt, which is what a pipe or a screen
// reader needs. An empty amount or text cancels.
type FormPrompter struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

// NewFormPrompter reads answers from in and draws questions on out. It falls
// back to accessible mode when in is not a terminal or ACCESSIBLE is set.
func NewFormPrompter(in io.Reader, out io.Writer) *FormPrompter {
	accessible := os.Getenv("ACCESSIBLE") != ""
	if f, ok := in.(interface{ Fd() uintptr }); !ok || !isatty.IsTerminal(f.Fd()) {
		accessible = true
	}
	return &FormPrompter{in: in, out: out, accessible: accessible}
}

func (p *FormPrompter) run(field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).
		WithAccessible(p.accessible).
		WithInput(p.in).
		WithOutput(p.out).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

func parsePositive(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, errors.New("Monto inválido, debe ser mayor a 0.")
	}
	return amount, nil
}

func (p *FormPrompter) AskAmount(title string) (decimal.Decimal, error) {
	var answer string
	err := p.run(huh.NewInput().
		Title(title + ":").
		Value(&answer).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return nil
			}
			_, err := parsePositive(s)
			return err
		}))
	if err != nil {
		return decimal.Zero, err
	}
	if strings.TrimSpace(answer) == "" {
		return decimal.Zero, ErrCancelled
	}
	return parsePositive(answer)
}

func (p *FormPrompter) AskText(title, def string) (string, error) {
	var answer string
	input := huh.NewInput().Title(title + ":").Value(&answer)
	if def != "" {
		input = input.Placeholder(def).Description("Enter para usar " + def)
	}
	if err := p.run(input); err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	switch {
	case answer != "":
		return answer, nil
	case def != "":
		return def, nil
	default:
		return "", ErrCancelled
	}
}

func (p *FormPrompter) AskChoice(title string, choices []string) (int, error) {
	if len(choices) == 0 {
		return 0, fmt.Errorf("%s: nothing to choose from", title)
	}
	options := make([]huh.Option[int], len(choices))
	for i, c := range choices {
		options[i] = huh.NewOption(c, i)
	}
	var picked int
	if err := p.run(huh.NewSelect[int]().Title(title).Options(options...).Value(&picked)); err != nil {
		return 0, err
	}
	return picked, nil
}

func (p *FormPrompter) Confirm(title string) (bool, error) {
	var ok bool
	err := p.run(huh.NewConfirm().
		Title(title).
		Affirmative("Sí").
		Negative("No").
		Value(&ok))
	if errors.Is(err, ErrCancelled) {
		return false, nil
	}
	return ok, err
}
