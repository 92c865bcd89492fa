package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// EnvVerbose tells extensions whether -v was set.
const EnvVerbose = "FIN_VERBOSE"

// RunExtension attempts to find and execute an external fin-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
//
// The extension receives the resolved global settings as FIN_* environment
// variables, so it opens the same ledger.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "fin-" + subcommand
	log := newLogger()

	// Look for the external command in PATH
	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		log.WithError(err).Debugf("external command %q not found in PATH", externalCmdName)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv returns the global settings as environment variables.
func extensionEnv() []string {
	return []string{
		EnvDataFile + "=" + DataFile(),
		EnvStorage + "=" + setting(*storage, EnvStorage, "file"),
		EnvSQLitePath + "=" + setting(*sqlitePath, EnvSQLitePath, "fincal.db"),
		EnvPaymentPolicy + "=" + setting(*policyName, EnvPaymentPolicy, "legacy"),
		EnvVerbose + "=" + strconv.FormatBool(*Verbose),
	}
}
