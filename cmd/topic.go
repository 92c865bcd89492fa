package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/fincal/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	list     bool
	examples bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read the user guide" }
func (*topicCmd) Usage() string {
	return `fin topic [-list] [-examples] [<topic>...]

  Shows the guide pages of the given topics, the guide index by default.
  A topic is named in english or spanish ("fechas" is "dates"), or by a
  prefix of its name. "*" shows every topic.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "List the topics with their summary")
	f.BoolVar(&c.examples, "examples", false, "Print only the shell examples of the topics")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var (
		out string
		err error
	)
	switch {
	case c.list:
		out, err = docs.Index()
	case c.examples:
		out, err = topicExamples(f.Args())
	case f.NArg() == 0:
		out, err = docs.Render(docs.Readme)
	default:
		out, err = docs.Render(f.Args()...)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading the guide: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'fin topic -list' for the list of topics.")
		return subcommands.ExitFailure
	}
	if c.examples {
		fmt.Print(out)
	} else {
		printMarkdown(out)
	}
	return subcommands.ExitSuccess
}

// topicExamples prints the shell examples of topics as a script, each block
// preceded by a comment locating it in the guide.
func topicExamples(topics []string) (string, error) {
	if len(topics) == 0 {
		return "", fmt.Errorf("-examples needs at least one topic")
	}
	var b strings.Builder
	for _, name := range topics {
		t, err := docs.Lookup(name)
		if err != nil {
			return "", err
		}
		examples, err := docs.TopicExamples(t.Name)
		if err != nil {
			return "", err
		}
		for _, ex := range examples {
			if ex.Kind == docs.ConsoleCheck {
				continue
			}
			fmt.Fprintf(&b, "# %s.md:%d (%s)\n%s\n", t.Name, ex.Line, ex.Kind, ex.Script)
		}
	}
	return b.String(), nil
}
