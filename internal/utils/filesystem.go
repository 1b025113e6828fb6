package utils

import (
	"fmt"
	"os"
)

// PathExists reports whether path exists. Errors other than "does not
// exist" (such as permission problems) are returned to the caller.
func PathExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("error checking %s: %w", path, err)
}

// EnsureDir creates dir and any missing parents with 0700 permissions.
// An existing directory is left untouched; an existing non-directory is an error.
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("error checking %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}
