// Package gpg encrypts and decrypts vault items with a symmetric passphrase
// in the OpenPGP format that `gpg --symmetric --cipher-algo AES256` writes.
//
// Two implementations satisfy Cipher:
//
//   - Binary runs the gpg executable as a streaming filter. Passphrases
//     given on the command line are handed to gpg over a dedicated file
//     descriptor so they never appear in its argument list; without one,
//     gpg's own pinentry prompts. ClearCache reloads gpg-agent so a cached
//     passphrase cannot authorize a later, unrelated operation.
//   - Native encrypts in process with golang.org/x/crypto/openpgp, using
//     AES-256 and an iterated-and-salted S2K, and prompts on the terminal
//     itself when no passphrase is given.
//
// Either implementation reads files written by the other.
//
// Passphrases travel as *Passphrase values backed by memguard enclaves and
// are opened only for the duration of a single operation.
package gpg
