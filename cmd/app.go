// Package cmd implements the ptx command line application.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

// Environment variables providing flag defaults.
const (
	EnvLogLevel     = "PTX_LOG_LEVEL"
	EnvFormat       = "PTX_FORMAT"
	EnvCurrency     = "PTX_CURRENCY"
	EnvKafkaBrokers = "PTX_KAFKA_BROKERS"
	EnvKafkaTopic   = "PTX_KAFKA_TOPIC"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var envFile = flag.String("env-file", ".env", "Path to a file of KEY=value lines providing defaults for the PTX_* variables")

// commands holds the names of the registered subcommands.
var commands = make(map[string]bool)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	register(c, c.HelpCommand(), "")
	register(c, c.FlagsCommand(), "")
	register(c, c.CommandsCommand(), "")

	register(c, &processCmd{}, "transactions")
	register(c, &topicCmd{}, "documentation")
}

func register(c *subcommands.Commander, cmd subcommands.Command, group string) {
	c.Register(cmd, group)
	commands[cmd.Name()] = true
}

// IsCommand reports whether name is a registered subcommand. Other names are
// looked up as extensions, see RunExtension.
func IsCommand(name string) bool { return commands[name] }

// LoadEnv loads the -env-file into the environment. It must be called after
// the top level flags are parsed and before the subcommand is executed.
func LoadEnv() error {
	return loadEnvFile(*envFile)
}

// loadEnvFile loads name, if it exists. Variables already set in the
// environment win over the file.
func loadEnvFile(name string) error {
	if name == "" {
		return nil
	}
	err := godotenv.Load(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not load environment file %q: %w", name, err)
	}
	return nil
}

// envOr returns the value of the environment variable key, or def if unset.
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// renderMarkdown styles md for a terminal.
func renderMarkdown(md string) (string, error) {
	return glamour.Render(md, "dark")
}

// printMarkdown prints md to stdout, styled if possible.
func printMarkdown(md string) {
	out, err := renderMarkdown(md)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering markdown: %v\n", err)
		out = md
	}
	fmt.Print(out)
}
