package workflows

import (
	"fmt"

	kerrors "github.com/PolarWolf314/tarvault/internal/errors"
)

// Mode is the operation an invocation performs.
type Mode int

const (
	ModeNone Mode = iota
	ModeStore
	ModeRetrieve
	ModeEnumerate
)

func (m Mode) String() string {
	switch m {
	case ModeStore:
		return "store"
	case ModeRetrieve:
		return "retrieve"
	case ModeEnumerate:
		return "enumerate"
	}
	return "none"
}

// Options is the parsed command line. It is built once from the flags and
// never modified afterwards. Help is handled by cobra before Options exist.
type Options struct {
	Store     bool
	Retrieve  bool
	Enumerate bool

	// Compress and RemoveOriginal only apply to Store.
	Compress       bool
	RemoveOriginal bool

	// Key overrides the logical key derived from the source. KeySet
	// distinguishes an explicit empty override from no override.
	Key    string
	KeySet bool

	// Passphrase is the non-interactive passphrase. PassphraseSet is false
	// when the user is to be prompted.
	Passphrase    string
	PassphraseSet bool

	// Args holds the positional arguments.
	Args []string
}

// Mode returns the requested operation. Conflicting requests are reported
// by Validate, not here.
func (o Options) Mode() Mode {
	switch {
	case o.Store:
		return ModeStore
	case o.Retrieve:
		return ModeRetrieve
	case o.Enumerate:
		return ModeEnumerate
	}
	return ModeNone
}

// Item returns the single positional argument, or "" if there is none.
func (o Options) Item() string {
	if len(o.Args) == 0 {
		return ""
	}
	return o.Args[0]
}

// Validate checks flag combinations and argument counts. It performs no
// I/O. Every violation wraps ErrUsage.
func (o Options) Validate() error {
	if o.Store {
		if o.Retrieve {
			return usageError("-e and -d cannot be combined")
		}
		if o.Enumerate {
			return usageError("-e and -l cannot be combined")
		}
	}

	if o.Retrieve {
		switch {
		case o.Enumerate:
			return usageError("-d and -l cannot be combined")
		case o.Compress:
			return usageError("-z only applies when storing (-e)")
		case o.RemoveOriginal:
			return usageError("-r only applies when storing (-e)")
		case o.KeySet:
			return usageError("-k only applies when storing (-e)")
		}
	}

	if o.Enumerate {
		switch {
		case o.Compress:
			return usageError("-z only applies when storing (-e)")
		case o.RemoveOriginal:
			return usageError("-r only applies when storing (-e)")
		case o.KeySet:
			return usageError("-k only applies when storing (-e)")
		}
	}

	switch o.Mode() {
	case ModeStore:
		if len(o.Args) != 1 {
			return usageError("-e takes exactly one file or directory, got %d arguments", len(o.Args))
		}
	case ModeRetrieve:
		if len(o.Args) != 1 {
			return usageError("-d takes exactly one key, got %d arguments", len(o.Args))
		}
	case ModeEnumerate:
		if len(o.Args) > 1 {
			return usageError("-l takes at most one filter, got %d arguments", len(o.Args))
		}
	case ModeNone:
		if len(o.Args) > 0 {
			return usageError("no operation given for %q; use -e, -d or -l", o.Args[0])
		}
		return usageError("no operation given")
	}

	return nil
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", kerrors.ErrUsage, fmt.Sprintf(format, args...))
}
