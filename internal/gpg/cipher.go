package gpg

import (
	"context"
	"fmt"
	"io"

	"github.com/PolarWolf314/tarvault/internal/configs"
)

// Cipher is the encryption stage of the vault pipeline.
type Cipher interface {
	// Encrypt reads plaintext from r and writes an OpenPGP message to w.
	Encrypt(ctx context.Context, r io.Reader, w io.Writer, pass *Passphrase) error

	// Decrypt reads an OpenPGP message from r and writes plaintext to w.
	// A wrong passphrase yields an error matching both ErrPipelineFailed
	// and ErrAuthFailed.
	Decrypt(ctx context.Context, r io.Reader, w io.Writer, pass *Passphrase) error

	// ClearCache drops any passphrase the encryption subsystem remembers.
	ClearCache(ctx context.Context) error

	// Name identifies the implementation in logs.
	Name() string
}

// New returns the Cipher selected by backend. "auto" prefers the gpg
// executable and falls back to the native implementation when gpg is not
// installed; "gpg" fails with ErrMissingDependency in that case. Nothing
// is read or written besides the PATH lookup.
func New(backend string, stderr io.Writer) (Cipher, error) {
	switch backend {
	case configs.BackendNative:
		return &Native{}, nil
	case configs.BackendGPG:
		b, err := LookupBinary(stderr)
		if err != nil {
			return nil, err
		}
		return b, nil
	case configs.BackendAuto, "":
		if b, err := LookupBinary(stderr); err == nil {
			return b, nil
		}
		return &Native{}, nil
	}
	return nil, fmt.Errorf("unknown encryption backend %q", backend)
}
