// Package audit records a history of vault operations.
//
// Every successful store and retrieve appends one entry to a per-user
// history log. The log lives outside the vault directory so the vault keeps
// its flat one-file-per-item layout.
//
// # Log Format
//
// The history log is stored as JSON Lines (one JSON object per line), by
// default at:
//
//	$XDG_DATA_HOME/tarvault/history.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Local username
//   - Operation id (a random UUID)
//   - Operation name (store or retrieve)
//   - Item key, vault file name and whether the item is compressed
//
// Passphrases are never recorded.
//
// # Usage
//
// Create an entry with user info pre-populated:
//
//	entry := audit.LogWithUser(audit.OpStore)
//	entry.Key = "diary"
//	audit.Log(historyPath, entry)
//
// # Failure Handling
//
// History logging is best-effort. If writing fails (permissions, disk full,
// etc.), the operation continues without error. A vault operation should
// never fail because its history could not be written.
package audit
