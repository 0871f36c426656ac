// taskctl is a terminal client for the taskboard API. It keeps the session
// in a local SQLite state database so that logins survive between runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
)

const (
	defaultAPIURL = "http://localhost:8080/api"
	stateDirName  = ".taskboard"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var usage *usageError
		if errors.As(err, &usage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// usageError marks errors caused by bad command-line input.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func run(ctx context.Context, args []string, stdin *os.File, stdout, stderr io.Writer) error {
	var apiURL, statePath string
	var verbose bool

	flagSet := pflag.NewFlagSet("taskctl", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&apiURL, "api-url", envOrDefault("TASKBOARD_API_URL", defaultAPIURL), "taskboard API root")
	flagSet.StringVar(&statePath, "state", envOrDefault("TASKBOARD_STATE", defaultStatePath()), "path to the local state database")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return &usageError{msg: err.Error()}
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newCommandLogger(stderr, level))

	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)
		return usagef("no command given")
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		return usagef("unknown command %q", rest[0])
	}

	a, err := newApp(ctx, apiURL, statePath, stdin, stdout)
	if err != nil {
		return err
	}
	defer a.close()
	return cmd(ctx, a, rest[1:])
}

type command func(ctx context.Context, a *app, args []string) error

var commands map[string]command

func init() {
	commands = map[string]command{
		"login":    cmdLogin,
		"register": cmdRegister,
		"logout":   cmdLogout,
		"whoami":   cmdWhoami,
		"profile":  cmdProfile,
		"tasks":    cmdTasks,
	}
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprint(w, `Usage: taskctl [flags] <command> [args]

Commands:
  login     --email E [--password-file F]
  register  --name N --email E [--password-file F]
  logout
  whoami
  profile   [--name N] [--email E] [--avatar URL]
  tasks     list|add|edit|done|rm|stats

Flags:
`)
	fmt.Fprint(w, flagSet.FlagUsages())
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "taskboard-state.db"
	}
	return filepath.Join(home, stateDirName, "state.db")
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
