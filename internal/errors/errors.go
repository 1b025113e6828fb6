package errors

import "errors"

// Usage errors indicate the invocation itself is invalid. Nothing has been
// read or written when one of these is returned.
var (
	// ErrUsage indicates a bad or conflicting combination of flags and arguments.
	ErrUsage = errors.New("invalid usage")
)

// Environment errors indicate the host is missing something tarvault needs.
var (
	// ErrMissingDependency indicates a required external program is not installed.
	ErrMissingDependency = errors.New("required program not found")
)

// Vault errors indicate problems locating entries in the vault directory.
var (
	// ErrNotFound indicates no storage file exists for a logical key.
	ErrNotFound = errors.New("item not found in vault")

	// ErrEmptyKey indicates a store was attempted without a usable logical key.
	ErrEmptyKey = errors.New("logical key is empty")
)

// Pipeline errors indicate a failure in the archive or encryption stages.
var (
	// ErrPipelineFailed indicates the archive or encryption stage reported failure.
	ErrPipelineFailed = errors.New("pipeline failed")

	// ErrAuthFailed indicates the passphrase did not decrypt the item.
	ErrAuthFailed = errors.New("decryption failed: wrong passphrase or corrupted data")

	// ErrInvalidArchive indicates the decrypted stream is not an archive of the expected kind.
	ErrInvalidArchive = errors.New("invalid archive stream")

	// ErrUnsafePath indicates an archive entry would be written outside the destination.
	ErrUnsafePath = errors.New("archive entry escapes destination directory")

	// ErrEmptyPassphrase indicates an empty passphrase was supplied or entered.
	ErrEmptyPassphrase = errors.New("passphrase cannot be empty")

	// ErrPassphraseMismatch indicates the confirmation prompt did not match.
	ErrPassphraseMismatch = errors.New("passphrases do not match")
)
