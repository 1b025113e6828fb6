package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"

	kerrors "github.com/PolarWolf314/tarvault/internal/errors"

	"golang.org/x/term"
)

// ReadPassphrase prompts the user for a passphrase without echoing input.
// The prompt is written to stderr. Stdin is used when it is a terminal,
// otherwise the controlling TTY is opened directly.
func ReadPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		return readPassword(fd, prompt)
	}

	tty, err := os.Open(ttyPath())
	if err != nil {
		return nil, fmt.Errorf("cannot read passphrase: stdin is not a terminal and %s is unavailable: %w", ttyPath(), err)
	}
	defer tty.Close()

	fd = int(tty.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read passphrase: %s is not a terminal", ttyPath())
	}
	return readPassword(fd, prompt)
}

// ReadNewPassphrase prompts for a passphrase twice and returns it only if
// both entries match and are non-empty.
func ReadNewPassphrase(prompt, confirmPrompt string) ([]byte, error) {
	first, err := ReadPassphrase(prompt)
	if err != nil {
		return nil, err
	}
	second, err := ReadPassphrase(confirmPrompt)
	if err != nil {
		Wipe(first)
		return nil, err
	}
	defer Wipe(second)

	if !bytes.Equal(first, second) {
		Wipe(first)
		return nil, kerrors.ErrPassphraseMismatch
	}
	if len(first) == 0 {
		return nil, kerrors.ErrEmptyPassphrase
	}
	return first, nil
}

// IsTerminalWriter reports whether w is a file attached to a terminal.
func IsTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func readPassword(fd int, prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return passphrase, nil
}

func ttyPath() string {
	if runtime.GOOS == "windows" {
		return "CON"
	}
	return "/dev/tty"
}

// Wipe zeroes b.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
