package workflows

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/PolarWolf314/tarvault/internal/configs"
	kerrors "github.com/PolarWolf314/tarvault/internal/errors"
	"github.com/PolarWolf314/tarvault/internal/gpg"
	logger "github.com/PolarWolf314/tarvault/internal/logging"
	"github.com/PolarWolf314/tarvault/internal/vault"
)

// Runtime is what every workflow needs besides its own options. It is
// assembled once per invocation.
type Runtime struct {
	Settings configs.Settings
	Cipher   gpg.Cipher
	Log      logger.Logger
}

// NewRuntime selects the cipher for settings. A missing gpg executable is
// reported here, before any file is touched.
func NewRuntime(settings configs.Settings, log logger.Logger, gpgStderr io.Writer) (*Runtime, error) {
	cipher, err := gpg.New(settings.Backend, gpgStderr)
	if err != nil {
		return nil, err
	}
	log.Debugf("Using %s encryption backend", cipher.Name())
	return &Runtime{Settings: settings, Cipher: cipher, Log: log}, nil
}

func (rt *Runtime) vault() *vault.Dir {
	return vault.New(rt.Settings.VaultDir)
}

func (rt *Runtime) historyPath() string {
	if !rt.Settings.History {
		return ""
	}
	return rt.Settings.HistoryPath
}

// clearCache invalidates cached passphrases when the setting asks for it.
// Failures are warnings; the operation's own result stands.
func (rt *Runtime) clearCache(ctx context.Context) {
	if !rt.Settings.ClearCache {
		return
	}
	// A canceled ctx would kill gpgconf before it runs.
	if err := rt.Cipher.ClearCache(context.WithoutCancel(ctx)); err != nil {
		rt.Log.Warnf("Could not clear the passphrase cache: %v", err)
		return
	}
	rt.Log.Debugf("Cleared the %s passphrase cache", rt.Cipher.Name())
}

// pipeline runs produce and consume concurrently, connected by an in-memory
// pipe. A failing stage closes its end so the other stops. The first error
// to occur is returned, wrapped in ErrPipelineFailed.
func pipeline(produce func(w io.Writer) error, consume func(r io.Reader) error) error {
	pr, pw := io.Pipe()

	var (
		mu    sync.Mutex
		first error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if first == nil {
			first = err
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := produce(pw)
		if err != nil {
			fail(err)
		}
		pw.CloseWithError(err)
	}()

	err := consume(pr)
	if err == nil {
		// Let the producer finish writing anything the consumer did not need,
		// such as tar record padding.
		_, err = io.Copy(io.Discard, pr)
	}
	if err != nil {
		fail(err)
		pr.CloseWithError(err)
	} else {
		pr.Close()
	}
	<-done

	if first == nil {
		return nil
	}
	if errors.Is(first, kerrors.ErrPipelineFailed) {
		return first
	}
	return fmt.Errorf("%w: %w", kerrors.ErrPipelineFailed, first)
}
