// Package vault models the vault directory and the naming rules that map
// logical keys to storage filenames.
//
// The vault directory is flat: every entry is a single file directly inside
// it, named after its logical key plus one of two suffixes:
//
//	<key>.tar.gpg      plain tar archive, encrypted
//	<key>.tar.gz.gpg   gzip-compressed tar archive, encrypted
//
// There is no index file. The directory listing is the catalog, and files
// with any other name are ignored.
//
// # Naming
//
// BuildStorageName and StripSuffix are exact inverses over the two suffix
// families:
//
//	key, compressed, ok := StripSuffix(BuildStorageName("diary", true))
//	// key == "diary", compressed == true, ok == true
//
// Keys are used verbatim. A key containing a path separator produces a
// path outside the flat layout; callers that accept keys from users are
// responsible for passing a single path segment.
package vault
