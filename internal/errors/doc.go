// Package errors provides typed error values for tarvault.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Usage errors: conflicting or missing flags (ErrUsage)
//   - Environment errors: required tools are absent (ErrMissingDependency)
//   - Vault errors: no entry for a key (ErrNotFound)
//   - Pipeline errors: archive or encryption stage failed (ErrPipelineFailed,
//     ErrAuthFailed, ErrInvalidArchive, ErrUnsafePath)
//
// # Usage
//
// Return errors from internal packages, wrapped with context:
//
//	return "", false, fmt.Errorf("resolving %q: %w", key, errors.ErrNotFound)
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Retrieve(ctx, opts)
//	if errors.Is(err, kerrors.ErrNotFound) {
//	    // Show user-friendly message
//	}
//
// A wrong passphrase is reported as both ErrAuthFailed and ErrPipelineFailed,
// since it is the decryption stage of the pipeline that rejected it.
package errors
