// Package agent implements a chat assistant over the ledger, backed by
// Gemini.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/fincal/date"
	"github.com/etnz/fincal/docs"
	"google.golang.org/genai"
)

// Agent is a chat session about the ledger.
//
// Lines starting with "/" are session commands answered locally, anything
// else is a question for the facilitator. Questions are sent with the working
// month, so "¿cuánto gasté?" is about that month.
type Agent struct {
	w           io.Writer
	r           *bufio.Reader
	Facilitator *Expert
	Experts     []*Expert
	// Render formats the replies before printing them, they are printed
	// as is when nil.
	Render func(markdown string) string
	// Month is the working month.
	Month date.Month

	ask func(ctx context.Context, question string) (string, error)
}

// New creates an Agent reading user input from r and writing replies to w.
// The working month is the one of today.
func New(w io.Writer, r io.Reader, today date.Date, experts ...*Expert) *Agent {
	a := &Agent{
		w:           w,
		r:           bufio.NewReader(r),
		Experts:     experts,
		Facilitator: newFacilitator(experts...),
		Month:       today.MonthOf(),
	}
	a.ask = a.askFacilitator
	return a
}

func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range a.Experts {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return a.Facilitator.Start(ctx, client)
}

func (a *Agent) askFacilitator(ctx context.Context, question string) (string, error) {
	content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return "", err
	}
	return content.Parts[0].Text, nil
}

const prompt = "fin> "

const help = `Comandos:

* /mes [YYYY-MM]: muestra o cambia el mes de trabajo
* /temas: lista los temas de la guía
* /tema <tema>: muestra un tema de la guía
* /ayuda: esta ayuda
* salir: termina la sesión`

// Run starts the interactive session. prompts are sent first, as if the user
// had typed them.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}
	return a.loop(ctx, prompts)
}

func (a *Agent) loop(ctx context.Context, prompts []string) error {
	fmt.Fprintf(a.w, "Bienvenido a fin assist, mes de trabajo %s. Escribe /ayuda para ver los comandos o 'salir' para terminar.\n", a.Month)
	for {
		fmt.Fprint(a.w, prompt)
		var input string
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			line, err := a.r.ReadString('\n')
			if err != nil && (err != io.EOF || line == "") {
				if err == io.EOF {
					fmt.Fprintln(a.w)
					return nil
				}
				return err
			}
			input = strings.TrimSpace(line)
		}

		switch {
		case input == "":
			continue
		case input == "salir" || input == "bye" || input == "/salir":
			return nil
		case strings.HasPrefix(input, "/"):
			a.reply(a.command(input))
		default:
			reply, err := a.ask(ctx, fmt.Sprintf("[Mes de trabajo: %s]\n%s", a.Month, input))
			if err != nil {
				return err
			}
			a.reply(reply)
		}
	}
}

func (a *Agent) reply(markdown string) {
	if a.Render != nil {
		markdown = a.Render(markdown)
	}
	fmt.Fprintln(a.w, markdown)
}

// command answers a session command.
func (a *Agent) command(input string) string {
	name, arg, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "mes":
		if arg == "" {
			return "Mes de trabajo: " + a.Month.String()
		}
		m, err := date.ParseMonth(arg)
		if err != nil {
			return fmt.Sprintf("Mes inválido %q, usa YYYY-MM.", arg)
		}
		a.Month = m
		return "Mes de trabajo: " + m.String()
	case "temas":
		index, err := docs.Index()
		if err != nil {
			return err.Error()
		}
		return index
	case "tema":
		if arg == "" {
			return "Indica un tema, por ejemplo /tema fechas."
		}
		page, err := docs.Render(arg)
		if err != nil {
			return err.Error()
		}
		return page
	case "ayuda":
		return help
	default:
		return fmt.Sprintf("Comando desconocido /%s.\n\n%s", name, help)
	}
}
