package workflows

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/tarvault/internal/archive"
	"github.com/PolarWolf314/tarvault/internal/audit"
	kerrors "github.com/PolarWolf314/tarvault/internal/errors"
	"github.com/PolarWolf314/tarvault/internal/gpg"
)

// StoreOptions configures the store workflow.
type StoreOptions struct {
	// Source is the file or directory to archive.
	Source string

	// Key overrides the logical key. If KeySet is false the key is the base
	// name of Source.
	Key    string
	KeySet bool

	// Compress gzips the archive before encryption.
	Compress bool

	// RemoveOriginal deletes Source once the item is safely stored.
	RemoveOriginal bool

	// Passphrase encrypts the item. Nil prompts the user.
	Passphrase *gpg.Passphrase
}

// StoreResult contains the outcome of a store operation.
type StoreResult struct {
	// Key is the logical key the item was stored under.
	Key string

	// Path is the vault file that was written.
	Path string

	// Compressed reports whether the archive was gzipped.
	Compressed bool

	// Removed reports whether Source was deleted.
	Removed bool
}

// Store archives Source, encrypts it and writes it into the vault.
//
// Archiving and encryption are streamed through a pipe, so nothing
// unencrypted is written to disk. The vault directory is created if it does
// not exist. An existing item with the same key and compression state is
// overwritten. If a stage fails, the partially written vault file is left
// in place and Source is never removed.
//
// Returns ErrEmptyKey if no usable key can be derived.
// Returns ErrPipelineFailed if archiving or encryption fails; a missing
// Source also matches fs.ErrNotExist.
func Store(ctx context.Context, rt *Runtime, opts StoreOptions) (*StoreResult, error) {
	source, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", opts.Source, err)
	}

	key, err := storeKey(source, opts)
	if err != nil {
		return nil, err
	}

	if _, err := os.Lstat(source); err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrPipelineFailed, err)
	}

	dir := rt.vault()
	if err := dir.Ensure(); err != nil {
		return nil, err
	}

	dest := dir.StoragePath(key, opts.Compress)
	rt.Log.Infof("Storing %s as %s", source, dest)

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", dest, err)
	}

	err = pipeline(
		func(w io.Writer) error { return archive.Pack(ctx, source, opts.Compress, w) },
		func(r io.Reader) error { return rt.Cipher.Encrypt(ctx, r, out, opts.Passphrase) },
	)
	rt.clearCache(ctx)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("%w: closing %s: %w", kerrors.ErrPipelineFailed, dest, closeErr)
	}
	if err != nil {
		rt.Log.Debugf("Store failed, partial output left at %s", dest)
		return nil, err
	}

	result := &StoreResult{
		Key:        key,
		Path:       dest,
		Compressed: opts.Compress,
	}

	if opts.RemoveOriginal {
		rt.Log.Infof("Removing original %s", source)
		if err := os.RemoveAll(source); err != nil {
			return result, fmt.Errorf("item stored, but removing %s failed: %w", source, err)
		}
		result.Removed = true
	}

	entry := audit.LogWithUser(audit.OpStore)
	entry.Key = key
	entry.File = filepath.Base(dest)
	entry.Compressed = opts.Compress
	entry.Source = source
	entry.Removed = result.Removed
	audit.Log(rt.historyPath(), entry)

	return result, nil
}

// storeKey returns the logical key for source.
func storeKey(source string, opts StoreOptions) (string, error) {
	key := opts.Key
	if !opts.KeySet {
		key = filepath.Base(source)
	}
	if key == "" || key == "." || key == string(filepath.Separator) {
		return "", kerrors.ErrEmptyKey
	}
	return key, nil
}
