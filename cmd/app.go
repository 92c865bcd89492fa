// Package cmd implements the fin command line application over a fincal
// ledger.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/fincal"
	"github.com/etnz/fincal/date"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, e := range commands() {
		c.Register(e.cmd, e.group)
	}
}

type entry struct {
	group string
	cmd   subcommands.Command
}

func commands() []entry {
	return []entry{
		{"transactions", &txCmd{typ: fincal.Income}},
		{"transactions", &txCmd{typ: fincal.Expense}},
		{"transactions", &deleteCmd{kind: "tx"}},

		{"funds", &fundsCmd{}},
		{"funds", &fundAddCmd{}},
		{"funds", &adjustCmd{}},
		{"funds", &allocateCmd{}},
		{"funds", &releaseCmd{}},
		{"funds", &deleteCmd{kind: "allocation"}},
		{"funds", &deleteCmd{kind: "fund"}},

		{"obligations", &obligationsCmd{}},
		{"obligations", &obligationAddCmd{}},
		{"obligations", &statusCmd{}},
		{"obligations", &payCmd{}},
		{"obligations", &deleteCmd{kind: "obligation"}},

		{"reports", &monthCmd{}},
		{"reports", &summaryCmd{}},
		{"reports", &expensesCmd{}},
		{"reports", &searchCmd{}},
		{"reports", &queryCmd{}},
		{"reports", &calendarCmd{}},
		{"reports", &htmlCmd{}},
		{"reports", &publishCmd{}},

		{"settings", &settingsCmd{}},
		{"settings", &fmtCmd{}},
		{"", &shortcutCmd{}},
		{"", &AssistCmd{}},
		{"", &topicCmd{}},
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	dataFile   = flag.String("data", "", "Path to the ledger document (env FIN_DATA_FILE, default fincal.json)")
	storage    = flag.String("storage", "", "Storage backend: file, s3 or sqlite (env FIN_STORAGE, default file)")
	sqlitePath = flag.String("sqlite", "", "Path to the sqlite database (env FIN_SQLITE_PATH, default fincal.db)")
	policyName = flag.String("policy", "", "Payment policy: legacy or cumulative (env FIN_PAYMENT_POLICY)")
	logLevel   = flag.String("log-level", "", "Log level (env FIN_LOG_LEVEL, default warning)")
	Verbose    = flag.Bool("v", false, "Verbose output, same as -log-level=info")
	plain      = flag.Bool("plain", false, "Print raw markdown instead of rendering it (env FIN_PLAIN)")
)

// Environment variables read by the application.
const (
	EnvDataFile      = "FIN_DATA_FILE"
	EnvStorage       = "FIN_STORAGE"
	EnvSQLitePath    = "FIN_SQLITE_PATH"
	EnvPaymentPolicy = "FIN_PAYMENT_POLICY"
	EnvLogLevel      = "FIN_LOG_LEVEL"
	EnvPlain         = "FIN_PLAIN"
	EnvTestingNow    = "FIN_TESTING_NOW"

	EnvS3Bucket          = "FIN_S3_BUCKET"
	EnvS3Key             = "FIN_S3_KEY"
	EnvS3Region          = "FIN_S3_REGION"
	EnvS3Endpoint        = "FIN_S3_ENDPOINT"
	EnvS3AccessKeyID     = "FIN_S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey = "FIN_S3_SECRET_ACCESS_KEY"
	EnvS3PathStyle       = "FIN_S3_PATH_STYLE"
)

// LoadEnv loads the .env file of the working directory, when there is one.
// Variables already set in the environment win.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not load .env: %w", err)
	}
	return nil
}

// setting returns the flag value when set, the environment variable
// otherwise, def as a last resort.
func setting(flagValue, env, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	return def
}

// DataFile is the path to the ledger document of the file storage.
func DataFile() string { return setting(*dataFile, EnvDataFile, "fincal.json") }

// stdout receives the command outputs.
var stdout io.Writer = os.Stdout

// prompter asks the user for missing inputs.
var prompter Prompter = NewFormPrompter(os.Stdin, os.Stderr)

// now is the current time, overridden by FIN_TESTING_NOW for stable outputs.
func now() time.Time {
	if v := os.Getenv(EnvTestingNow); v != "" {
		if t, err := time.Parse(time.DateTime, v); err == nil {
			return t
		}
	}
	return time.Now()
}

func today() date.Date { return date.FromTime(now()) }

// newLogger configures the application logger on stderr.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if *Verbose {
		log.SetLevel(logrus.InfoLevel)
	}
	if name := setting(*logLevel, EnvLogLevel, ""); name != "" {
		level, err := logrus.ParseLevel(name)
		if err != nil {
			log.WithError(err).Warn("ignoring invalid log level")
		} else {
			log.SetLevel(level)
		}
	}
	return log
}

// openStore opens the store selected by the configuration. close releases
// the storage resources.
func openStore(ctx context.Context) (store *fincal.Store, close func(), err error) {
	log := newLogger()
	policy, err := fincal.ParsePaymentPolicy(setting(*policyName, EnvPaymentPolicy, ""))
	if err != nil {
		return nil, nil, err
	}

	close = func() {}
	var st fincal.Storage
	switch kind := setting(*storage, EnvStorage, "file"); kind {
	case "file":
		st = fincal.NewFileStorage(DataFile())
	case "sqlite":
		db, err := fincal.OpenSQLiteStorage(setting(*sqlitePath, EnvSQLitePath, "fincal.db"))
		if err != nil {
			return nil, nil, err
		}
		st = db
		close = func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("could not close sqlite storage")
			}
		}
	case "s3":
		pathStyle, _ := strconv.ParseBool(os.Getenv(EnvS3PathStyle))
		s3, err := fincal.NewS3Storage(ctx, fincal.S3Config{
			Bucket:          os.Getenv(EnvS3Bucket),
			Key:             os.Getenv(EnvS3Key),
			Region:          os.Getenv(EnvS3Region),
			Endpoint:        os.Getenv(EnvS3Endpoint),
			AccessKeyID:     os.Getenv(EnvS3AccessKeyID),
			SecretAccessKey: os.Getenv(EnvS3SecretAccessKey),
			PathStyle:       pathStyle,
		})
		if err != nil {
			return nil, nil, err
		}
		st = s3
	default:
		return nil, nil, fmt.Errorf("unknown storage %q, want file, s3 or sqlite", kind)
	}

	store = fincal.NewStore(st,
		fincal.WithStoreLogger(log),
		fincal.WithStoreClock(now),
		fincal.WithLedgerOptions(
			fincal.WithPaymentPolicy(policy),
			fincal.WithClock(today),
		),
	)
	return store, close, nil
}

// update runs mutate in a load, mutate, save cycle on the configured store.
func update(ctx context.Context, mutate func(*fincal.Ledger) error) subcommands.ExitStatus {
	store, close, err := openStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer close()
	if err := store.Update(ctx, mutate); err != nil {
		if errors.Is(err, ErrCancelled) {
			fmt.Fprintln(os.Stderr, "Cancelled, nothing changed.")
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// view runs read on the configured store without saving.
func view(ctx context.Context, read func(*fincal.Ledger) error) subcommands.ExitStatus {
	store, close, err := openStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer close()
	if err := store.View(ctx, read); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, or prints it raw in plain mode.
func printMarkdown(md string) {
	if *plain || os.Getenv(EnvPlain) != "" {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// printf writes a confirmation message.
func printf(format string, args ...any) { fmt.Fprintf(stdout, format, args...) }
