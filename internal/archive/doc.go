// Package archive packs files and directories into tar streams and
// extracts them again.
//
// Streams are plain tar, or tar wrapped in gzip when compression is on,
// which is what `tar -c` and `tar -cz` produce and what the vault's
// ".tar.gpg" and ".tar.gz.gpg" entries contain once decrypted.
//
// Both directions work on io.Reader and io.Writer so they can be joined to
// the encryption stage with an io.Pipe without buffering whole items in
// memory.
//
// Extraction refuses entries that would land outside the destination
// directory, either through ".." components, absolute names, or existing
// symlinks in the path.
package archive
