// Package logger provides leveled, colored logging for tarvault.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info messages
//   - --debug: Shows info and debug messages
//
// Warnings are always shown. Errors are returned, not logged, and cmd prints
// each one once.
//
// All output goes to stderr so that stdout carries nothing but command
// results (the key listing of -l), which keeps tarvault usable in pipes.
//
// # Usage
//
//	log := logger.Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Packing %s", source)
//
// Never pass a passphrase to any Logger method.
package logger
