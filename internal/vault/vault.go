package vault

import (
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/tarvault/internal/errors"
	"github.com/PolarWolf314/tarvault/internal/utils"
)

// Dir is a vault directory on disk.
type Dir struct {
	path string
}

// Entry is one recognized item in the vault.
type Entry struct {
	// Key is the logical key.
	Key string
	// Name is the storage filename inside the vault directory.
	Name string
	// Compressed reports the suffix family.
	Compressed bool
}

// New returns a Dir rooted at path. Nothing is touched on disk.
func New(path string) *Dir {
	return &Dir{path: path}
}

// Path returns the vault directory's location.
func (d *Dir) Path() string {
	return d.path
}

// Ensure creates the vault directory if it does not exist yet.
func (d *Dir) Ensure() error {
	if err := utils.EnsureDir(d.path); err != nil {
		return fmt.Errorf("preparing vault directory: %w", err)
	}
	return nil
}

// StoragePath returns where an item with the given key and compression
// state is stored.
func (d *Dir) StoragePath(key string, compress bool) string {
	return filepath.Join(d.path, BuildStorageName(key, compress))
}

// Resolve finds the stored file for key, trying the plain suffix before
// the compressed one. Returns ErrNotFound if neither exists.
func (d *Dir) Resolve(key string) (path string, compressed bool, err error) {
	if key == "" {
		return "", false, fmt.Errorf("resolving key: %w", kerrors.ErrEmptyKey)
	}
	for _, e := range suffixes {
		candidate := filepath.Join(d.path, key+e.ext)
		ok, err := isItemFile(candidate)
		if err != nil {
			return "", false, err
		}
		if ok {
			return candidate, e.kind.Compressed(), nil
		}
	}
	return "", false, fmt.Errorf("%q in %s: %w", key, d.path, kerrors.ErrNotFound)
}

// Entries lists recognized items in directory listing order. Subdirectories,
// dangling symlinks and files without a recognized suffix are skipped, the
// same test Resolve applies. A vault directory that does not exist yet has
// no entries.
func (d *Dir) Entries() ([]Entry, error) {
	dirEntries, err := os.ReadDir(d.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading vault directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		key, compressed, ok := StripSuffix(de.Name())
		if !ok {
			continue
		}
		isItem, err := isItemFile(filepath.Join(d.path, de.Name()))
		if err != nil {
			return nil, err
		}
		if !isItem {
			continue
		}
		entries = append(entries, Entry{Key: key, Name: de.Name(), Compressed: compressed})
	}
	return entries, nil
}

// isItemFile reports whether path, after following symlinks, is something
// other than a directory.
func isItemFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	return !info.IsDir(), nil
}
