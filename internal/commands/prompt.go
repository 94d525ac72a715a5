package commands

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// promptPassword reads a password from the terminal without echoing it. When
// confirm is set the password is asked for twice and the two entries are
// compared in constant time. A non-terminal stdin is an error, since scripts
// should pass --password instead.
func promptPassword(confirm bool) (string, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal, pass --password instead")
	}

	fmt.Fprint(os.Stderr, "Enter password: ")

	password, err := term.ReadPassword(fd)

	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	if len(password) == 0 {
		return "", errors.New("password must not be empty")
	}

	if confirm {
		fmt.Fprint(os.Stderr, "Confirm password: ")

		confirmation, err := term.ReadPassword(fd)

		fmt.Fprintln(os.Stderr)

		if err != nil {
			return "", fmt.Errorf("reading password confirmation: %w", err)
		}

		if subtle.ConstantTimeCompare(password, confirmation) != 1 {
			return "", errors.New("passwords do not match")
		}
	}

	return string(password), nil
}
