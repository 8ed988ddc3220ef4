package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/etnz/payments/logging"
	"go.uber.org/zap"
)

// EnvEnvFile passes the -env-file flag to extensions.
const EnvEnvFile = "PTX_ENV_FILE"

// extensionPrefix prefixes the name of external subcommand binaries.
const extensionPrefix = "ptx-"

// RunExtension attempts to find and execute an external ptx-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
//
// The extension inherits the environment, including the variables loaded
// from the -env-file.
func RunExtension(subcommand string, args []string) (bool, int) {
	log, err := logging.New(envOr(EnvLogLevel, logging.DefaultLevel))
	if err != nil {
		log = logging.Nop()
	}
	defer log.Sync()

	name := extensionPrefix + subcommand
	lp, err := exec.LookPath(name)
	if err != nil {
		log.Debug("extension not found", zap.String("extension", name), zap.Error(err))
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), EnvEnvFile+"="+*envFile)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
