package cmd

import (
	"errors"

	kerrors "github.com/PolarWolf314/tarvault/internal/errors"
	"github.com/PolarWolf314/tarvault/internal/ui"
)

// errorMessage turns err into the line shown after the red cross.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrAuthFailed):
		return "Decryption failed: wrong passphrase or corrupted item"
	case errors.Is(err, kerrors.ErrNotFound):
		return "No such item: " + err.Error()
	case errors.Is(err, kerrors.ErrPassphraseMismatch):
		return "Passphrases do not match"
	}
	return err.Error()
}

// errorHints suggests what to do next, if anything.
func errorHints(err error) []string {
	switch {
	case errors.Is(err, kerrors.ErrNotFound):
		return []string{"Run " + ui.Flag.Sprint("tarvault -l") + " to see stored keys"}
	case errors.Is(err, kerrors.ErrMissingDependency):
		return []string{
			"Install GnuPG, or set " + ui.Flag.Sprint("TARVAULT_BACKEND=native") + " to encrypt in process",
		}
	case errors.Is(err, kerrors.ErrEmptyKey):
		return []string{"Pass a non-empty key with " + ui.Flag.Sprint("-k")}
	case errors.Is(err, kerrors.ErrUnsafePath):
		return []string{"The item was not fully extracted; inspect it with gpg and tar by hand"}
	case errors.Is(err, kerrors.ErrUsage):
		return []string{"Run " + ui.Flag.Sprint("tarvault -h") + " for help"}
	}
	return nil
}
