package workflows

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/tarvault/internal/archive"
	"github.com/PolarWolf314/tarvault/internal/audit"
	"github.com/PolarWolf314/tarvault/internal/gpg"
)

// RetrieveOptions configures the retrieve workflow.
type RetrieveOptions struct {
	// Key is the logical key of the item.
	Key string

	// DestDir receives the extracted item. Empty means the current working
	// directory.
	DestDir string

	// Passphrase decrypts the item. Nil prompts the user.
	Passphrase *gpg.Passphrase
}

// RetrieveResult contains the outcome of a retrieve operation.
type RetrieveResult struct {
	// Key is the logical key that was retrieved.
	Key string

	// Path is the vault file that was read.
	Path string

	// Compressed reports whether the stored archive was gzipped.
	Compressed bool

	// DestDir is where the item was extracted.
	DestDir string
}

// Retrieve decrypts an item from the vault and extracts it into DestDir.
//
// The plain suffix is tried before the compressed one. Decryption and
// extraction are streamed through a pipe. Files already present in DestDir
// under the same names are overwritten. The vault file is left in place.
//
// Returns ErrNotFound, without touching DestDir, if the key is not stored.
// Returns ErrPipelineFailed if decryption or extraction fails; a wrong
// passphrase also matches ErrAuthFailed.
func Retrieve(ctx context.Context, rt *Runtime, opts RetrieveOptions) (*RetrieveResult, error) {
	path, compressed, err := rt.vault().Resolve(opts.Key)
	if err != nil {
		return nil, err
	}

	dest := opts.DestDir
	if dest == "" {
		if dest, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
	}
	if dest, err = filepath.Abs(dest); err != nil {
		return nil, fmt.Errorf("resolving %s: %w", opts.DestDir, err)
	}

	rt.Log.Infof("Retrieving %s into %s", path, dest)

	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer in.Close()

	err = pipeline(
		func(w io.Writer) error { return rt.Cipher.Decrypt(ctx, in, w, opts.Passphrase) },
		func(r io.Reader) error { return archive.Unpack(ctx, r, compressed, dest) },
	)
	rt.clearCache(ctx)
	if err != nil {
		return nil, err
	}

	entry := audit.LogWithUser(audit.OpRetrieve)
	entry.Key = opts.Key
	entry.File = filepath.Base(path)
	entry.Compressed = compressed
	audit.Log(rt.historyPath(), entry)

	return &RetrieveResult{
		Key:        opts.Key,
		Path:       path,
		Compressed: compressed,
		DestDir:    dest,
	}, nil
}
