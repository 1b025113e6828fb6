package gpg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	kerrors "github.com/PolarWolf314/tarvault/internal/errors"
)

// Binary drives the gpg executable.
type Binary struct {
	// GPG is the path to the gpg executable.
	GPG string

	// GPGConf is the path to gpgconf, used to reload gpg-agent. Empty
	// disables cache clearing.
	GPGConf string

	// Stderr receives gpg's own diagnostics. Nil means os.Stderr.
	Stderr io.Writer
}

// LookupBinary finds gpg (and, optionally, gpgconf) on PATH.
func LookupBinary(stderr io.Writer) (*Binary, error) {
	gpgPath, err := exec.LookPath("gpg")
	if err != nil {
		return nil, fmt.Errorf("%w: gpg: %v", kerrors.ErrMissingDependency, err)
	}
	b := &Binary{GPG: gpgPath, Stderr: stderr}
	if confPath, err := exec.LookPath("gpgconf"); err == nil {
		b.GPGConf = confPath
	}
	return b, nil
}

func (b *Binary) Name() string { return "gpg" }

// Encrypt runs `gpg --symmetric --cipher-algo AES256`.
func (b *Binary) Encrypt(ctx context.Context, r io.Reader, w io.Writer, pass *Passphrase) error {
	return b.run(ctx, r, w, pass, "--symmetric", "--cipher-algo", "AES256")
}

// Decrypt runs `gpg --decrypt`.
func (b *Binary) Decrypt(ctx context.Context, r io.Reader, w io.Writer, pass *Passphrase) error {
	return b.run(ctx, r, w, pass, "--decrypt")
}

// ClearCache runs `gpgconf --reload gpg-agent`, which makes the agent
// forget every cached passphrase.
func (b *Binary) ClearCache(ctx context.Context) error {
	if b.GPGConf == "" {
		return fmt.Errorf("%w: gpgconf", kerrors.ErrMissingDependency)
	}
	cmd := exec.CommandContext(ctx, b.GPGConf, "--reload", "gpg-agent")
	cmd.Stderr = b.stderr()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("reloading gpg-agent: %w", err)
	}
	return nil
}

func (b *Binary) run(ctx context.Context, r io.Reader, w io.Writer, pass *Passphrase, op ...string) error {
	args := []string{"--quiet"}
	var passFile *os.File
	if !pass.IsInteractive() {
		pr, err := b.passphrasePipe(pass)
		if err != nil {
			return err
		}
		defer pr.Close()
		passFile = pr
		// ExtraFiles[0] becomes descriptor 3 in the child.
		args = append(args, "--batch", "--yes", "--pinentry-mode", "loopback", "--passphrase-fd", "3")
	}
	args = append(args, "--output", "-")
	args = append(args, op...)

	var diag bytes.Buffer
	cmd := exec.CommandContext(ctx, b.GPG, args...)
	cmd.Stdin = r
	cmd.Stdout = w
	cmd.Stderr = io.MultiWriter(b.stderr(), &limitedBuffer{buf: &diag, max: 4096})
	if passFile != nil {
		cmd.ExtraFiles = []*os.File{passFile}
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if isBadPassphrase(diag.String()) {
			return fmt.Errorf("%w: %w", kerrors.ErrPipelineFailed, kerrors.ErrAuthFailed)
		}
		return fmt.Errorf("%w: gpg exited with status %d", kerrors.ErrPipelineFailed, exitErr.ExitCode())
	}
	return fmt.Errorf("%w: running gpg: %v", kerrors.ErrPipelineFailed, err)
}

// passphrasePipe returns the read end of a pipe already holding the
// passphrase line. The write end is closed so gpg sees EOF after it.
func (b *Binary) passphrasePipe(pass *Passphrase) (*os.File, error) {
	buf, err := pass.open()
	if err != nil {
		return nil, err
	}
	defer buf.Destroy()

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating passphrase pipe: %w", err)
	}
	defer pw.Close()

	if _, err := pw.Write(buf.Bytes()); err != nil {
		pr.Close()
		return nil, fmt.Errorf("writing passphrase pipe: %w", err)
	}
	if _, err := pw.Write([]byte{'\n'}); err != nil {
		pr.Close()
		return nil, fmt.Errorf("writing passphrase pipe: %w", err)
	}
	return pr, nil
}

func (b *Binary) stderr() io.Writer {
	if b.Stderr != nil {
		return b.Stderr
	}
	return os.Stderr
}

func isBadPassphrase(diag string) bool {
	diag = strings.ToLower(diag)
	return strings.Contains(diag, "bad session key") ||
		strings.Contains(diag, "bad passphrase") ||
		strings.Contains(diag, "no passphrase given")
}

// limitedBuffer keeps the first max bytes written to it and discards the rest.
type limitedBuffer struct {
	buf *bytes.Buffer
	max int
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	if room := l.max - l.buf.Len(); room > 0 {
		if len(p) > room {
			l.buf.Write(p[:room])
		} else {
			l.buf.Write(p)
		}
	}
	return len(p), nil
}
