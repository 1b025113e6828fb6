package gpg

import (
	"fmt"

	kerrors "github.com/PolarWolf314/tarvault/internal/errors"

	"github.com/awnumar/memguard"
)

// Passphrase is a symmetric passphrase, or the absence of one, meaning the
// user is to be prompted. The zero value and nil are both interactive.
type Passphrase struct {
	enclave *memguard.Enclave
}

// Interactive returns a Passphrase that asks the user when needed.
func Interactive() *Passphrase {
	return &Passphrase{}
}

// NewPassphrase seals b into an encrypted enclave. b is wiped.
func NewPassphrase(b []byte) (*Passphrase, error) {
	if len(b) == 0 {
		return nil, kerrors.ErrEmptyPassphrase
	}
	return &Passphrase{enclave: memguard.NewEnclave(b)}, nil
}

// IsInteractive reports whether the user must be prompted.
func (p *Passphrase) IsInteractive() bool {
	return p == nil || p.enclave == nil
}

// open decrypts the enclave into a locked buffer. The caller must Destroy it.
func (p *Passphrase) open() (*memguard.LockedBuffer, error) {
	if p.IsInteractive() {
		return nil, fmt.Errorf("no passphrase was supplied")
	}
	buf, err := p.enclave.Open()
	if err != nil {
		return nil, fmt.Errorf("opening passphrase enclave: %w", err)
	}
	return buf, nil
}

// String never reveals the passphrase, so a Passphrase is safe in log calls.
func (p *Passphrase) String() string {
	if p.IsInteractive() {
		return "<interactive>"
	}
	return "<redacted>"
}
