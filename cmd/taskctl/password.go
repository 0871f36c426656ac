package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword reads from passwordFile, or prompts on the terminal when the
// path is empty or "-". Trailing newlines are stripped from files.
func readPassword(stdin *os.File, passwordFile string) (string, error) {
	if passwordFile != "" && passwordFile != "-" {
		data, err := os.ReadFile(passwordFile)
		if err != nil {
			return "", fmt.Errorf("read password file: %w", err)
		}
		password := strings.TrimRight(string(data), "\r\n")
		if password == "" {
			return "", usagef("password file %s is empty", passwordFile)
		}
		return password, nil
	}

	if stdin == nil || !term.IsTerminal(int(stdin.Fd())) {
		return "", usagef("no terminal available for password prompt (use --password-file)")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	data, err := term.ReadPassword(int(stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(data) == 0 {
		return "", errors.New("empty password")
	}
	return string(data), nil
}
