package cmd

import (
	"flag"

	"github.com/etnz/fincal/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors completes the values of flags by name, anything else
// completes to "something".
var flagPredictors = map[string]complete.Predictor{
	"data":        predict.Files("*.json"),
	"sqlite":      predict.Files("*.db"),
	"storage":     predict.Set{"file", "s3", "sqlite"},
	"policy":      predict.Set{"legacy", "cumulative"},
	"log-level":   predict.Set{"debug", "info", "warning", "error"},
	"o":           predict.Files("*"),
	"frontmatter": predict.Files("*"),
	"currency":    predict.Set{"MXN", "USD", "EUR"},
	"v":           predict.Nothing,
	"plain":       predict.Nothing,
	"force":       predict.Nothing,
	"d":           predict.Set{"0d", "-1d", "+1d", "-1w", "+1w", "-1m", "+1m"},
	"due":         predict.Set{"0d", "+1w", "+1m"},
}

func flagPredictor(name string) complete.Predictor {
	if p, ok := flagPredictors[name]; ok {
		return p
	}
	return predict.Something
}

func flagsOf(f *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) { flags[fl.Name] = flagPredictor(fl.Name) })
	return flags
}

// Completion describes the fin command line for shell completion.
//
// Run "COMP_INSTALL=1 fin" to install it in the shell.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagsOf(flag.CommandLine),
	}
	for _, e := range commands() {
		f := flag.NewFlagSet(e.cmd.Name(), flag.ContinueOnError)
		e.cmd.SetFlags(f)
		c := &complete.Command{Flags: flagsOf(f)}
		switch e.cmd.(type) {
		case *topicCmd:
			c.Args = predict.Set(append(docs.Names(), "*"))
		case *statusCmd:
			c.Args = predict.Set{"pending", "covered", "paid"}
		case *shortcutCmd:
			c.Args = predict.Set{"sync", "summary", "expense-summary", "-"}
		}
		root.Sub[e.cmd.Name()] = c
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	return root
}
