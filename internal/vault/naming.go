package vault

import "strings"

// Suffix identifies one of the two storage filename families.
type Suffix int

const (
	// Plain marks an uncompressed archive.
	Plain Suffix = iota
	// Compressed marks a gzip-compressed archive.
	Compressed
)

// suffixes is the complete suffix table. Resolve checks it in order, so
// Plain wins when both files exist for the same key.
var suffixes = []struct {
	kind Suffix
	ext  string
}{
	{Plain, ".tar.gpg"},
	{Compressed, ".tar.gz.gpg"},
}

// SuffixFor returns the suffix family for a compression flag.
func SuffixFor(compress bool) Suffix {
	if compress {
		return Compressed
	}
	return Plain
}

// Ext returns the filename extension of the family.
func (s Suffix) Ext() string {
	for _, e := range suffixes {
		if e.kind == s {
			return e.ext
		}
	}
	panic("vault: unknown suffix")
}

// Compressed reports whether the family is gzip-compressed.
func (s Suffix) Compressed() bool {
	return s == Compressed
}

func (s Suffix) String() string {
	if s == Compressed {
		return "compressed"
	}
	return "plain"
}

// BuildStorageName returns key + ".tar" + (".gz" if compress) + ".gpg".
func BuildStorageName(key string, compress bool) string {
	return key + SuffixFor(compress).Ext()
}

// StripSuffix maps a storage filename back to its logical key. ok is false
// when name carries neither recognized suffix or the key part is empty.
func StripSuffix(name string) (key string, compressed bool, ok bool) {
	// Longest extension first.
	for i := len(suffixes) - 1; i >= 0; i-- {
		e := suffixes[i]
		if strings.HasSuffix(name, e.ext) {
			key = strings.TrimSuffix(name, e.ext)
			if key == "" {
				return "", false, false
			}
			return key, e.kind.Compressed(), true
		}
	}
	return "", false, false
}
