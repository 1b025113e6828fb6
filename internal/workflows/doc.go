// Package workflows provides high-level orchestration for tarvault operations.
//
// Workflows coordinate the vault, archive, gpg and audit packages to
// implement complete user-facing operations. Each workflow handles one
// operation's business logic, independent of CLI concerns like flag
// parsing, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags into an immutable Options value
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Validating flag combinations (Options.Validate)
//   - Connecting the archive and encryption stages with a pipe
//   - Invalidating the passphrase cache after each encryption stage
//   - Recording history entries
//
// # Available Workflows
//
//   - Store: archives a file or directory and encrypts it into the vault
//   - Retrieve: decrypts an item and extracts it into a directory
//   - List: enumerates stored keys without decrypting anything
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	result, err := workflows.Retrieve(ctx, rt, opts)
//	if errors.Is(err, kerrors.ErrNotFound) {
//	    // Suggest listing the vault
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Canceling it stops the archive walk and kills a running gpg process.
package workflows
