// Package utils provides small helpers shared across tarvault's packages.
//
// # Filesystem Utilities
//
//   - PathExists: reports whether a path exists, distinguishing real errors
//   - EnsureDir: creates a directory (and parents) with private permissions
//
// # System Utilities
//
//   - GetUsername: returns the current system username
//
// # Terminal Utilities
//
// Functions for secure passphrase input using golang.org/x/term:
//   - Wipe: zeroes a passphrase buffer
//   - ReadPassphrase: prompts once without echo
//   - ReadNewPassphrase: prompts twice and requires both entries to match
//   - IsTerminalWriter: terminal detection for an output stream
//
// Prompts read from stdin when it is a terminal and fall back to /dev/tty
// (CON on Windows) otherwise.
package utils
