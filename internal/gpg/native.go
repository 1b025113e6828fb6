package gpg

import (
	"context"
	"crypto"
	_ "crypto/sha256" // registers SHA-256 for the S2K and MDC hashes
	"errors"
	"fmt"
	"io"

	kerrors "github.com/PolarWolf314/tarvault/internal/errors"
	"github.com/PolarWolf314/tarvault/internal/utils"

	"golang.org/x/crypto/openpgp"
	pgperrors "golang.org/x/crypto/openpgp/errors"
	"golang.org/x/crypto/openpgp/packet"
)

// s2kCount is the largest iteration count OpenPGP can encode, the same
// ceiling gpg uses for --s2k-count.
const s2kCount = 65011712

// PromptFunc asks the user for a passphrase. confirm is true when a new
// passphrase is being chosen and should be entered twice.
type PromptFunc func(confirm bool) ([]byte, error)

// Native implements Cipher in process.
type Native struct {
	// Prompt is used for interactive passphrases. Nil means the terminal.
	Prompt PromptFunc
}

func (n *Native) Name() string { return "native" }

func (n *Native) config() *packet.Config {
	return &packet.Config{
		DefaultCipher: packet.CipherAES256,
		DefaultHash:   crypto.SHA256,
		S2KCount:      s2kCount,
	}
}

func (n *Native) prompt(confirm bool) ([]byte, error) {
	if n.Prompt != nil {
		return n.Prompt(confirm)
	}
	if confirm {
		return utils.ReadNewPassphrase("Enter passphrase: ", "Repeat passphrase: ")
	}
	return utils.ReadPassphrase("Enter passphrase: ")
}

// Encrypt writes a symmetrically encrypted, integrity-protected OpenPGP
// message of r to w.
func (n *Native) Encrypt(ctx context.Context, r io.Reader, w io.Writer, pass *Passphrase) error {
	secret, release, err := n.secret(pass, true)
	if err != nil {
		return err
	}
	plaintext, err := openpgp.SymmetricallyEncrypt(w, secret, &openpgp.FileHints{IsBinary: true}, n.config())
	release()
	if err != nil {
		return fmt.Errorf("%w: starting encryption: %v", kerrors.ErrPipelineFailed, err)
	}

	if _, err := io.Copy(plaintext, contextReader{ctx, r}); err != nil {
		plaintext.Close()
		return fmt.Errorf("%w: encrypting: %w", kerrors.ErrPipelineFailed, err)
	}
	if err := plaintext.Close(); err != nil {
		return fmt.Errorf("%w: finishing encryption: %v", kerrors.ErrPipelineFailed, err)
	}
	return nil
}

// Decrypt reads a symmetrically encrypted OpenPGP message from r and writes
// its literal data to w. The passphrase is tried once.
func (n *Native) Decrypt(ctx context.Context, r io.Reader, w io.Writer, pass *Passphrase) error {
	var release func()
	defer func() {
		if release != nil {
			release()
		}
	}()

	attempts := 0
	prompt := func(keys []openpgp.Key, symmetric bool) ([]byte, error) {
		if !symmetric {
			return nil, fmt.Errorf("item is not symmetrically encrypted")
		}
		attempts++
		if attempts > 1 {
			return nil, kerrors.ErrAuthFailed
		}
		secret, rel, err := n.secret(pass, false)
		if err != nil {
			return nil, err
		}
		release = rel
		return secret, nil
	}

	md, err := openpgp.ReadMessage(contextReader{ctx, r}, openpgp.EntityList{}, prompt, n.config())
	if release != nil {
		release()
		release = nil
	}
	if err != nil {
		if errors.Is(err, kerrors.ErrAuthFailed) || errors.Is(err, pgperrors.ErrKeyIncorrect) {
			return fmt.Errorf("%w: %w", kerrors.ErrPipelineFailed, kerrors.ErrAuthFailed)
		}
		return fmt.Errorf("%w: reading encrypted message: %w", kerrors.ErrPipelineFailed, err)
	}

	// The MDC is verified when the body is read to EOF.
	if _, err := io.Copy(w, md.UnverifiedBody); err != nil {
		return fmt.Errorf("%w: decrypting: %w", kerrors.ErrPipelineFailed, err)
	}
	return nil
}

// ClearCache is a no-op: Native keeps no agent, and each passphrase buffer
// is destroyed as soon as the operation that opened it has derived its key.
func (n *Native) ClearCache(ctx context.Context) error {
	return nil
}

// secret returns the passphrase bytes and a function that wipes them.
func (n *Native) secret(pass *Passphrase, confirm bool) ([]byte, func(), error) {
	if pass.IsInteractive() {
		b, err := n.prompt(confirm)
		if err != nil {
			return nil, nil, err
		}
		if len(b) == 0 {
			return nil, nil, kerrors.ErrEmptyPassphrase
		}
		return b, func() { utils.Wipe(b) }, nil
	}

	buf, err := pass.open()
	if err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), buf.Destroy, nil
}

// contextReader fails reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
