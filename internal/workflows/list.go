package workflows

import (
	"context"

	"github.com/PolarWolf314/tarvault/internal/vault"
)

// ListOptions configures the enumerate workflow.
type ListOptions struct {
	// Filter keeps only the entry whose key equals it. Empty keeps all.
	Filter string
}

// ListResult contains the outcome of an enumerate operation.
type ListResult struct {
	// Entries are the matching items in directory listing order.
	Entries []vault.Entry
}

// Keys returns the logical key of every entry.
func (r *ListResult) Keys() []string {
	keys := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// List enumerates the items in the vault. It never decrypts anything and a
// vault directory that does not exist yet lists as empty. When an item is
// stored both plain and compressed its key appears twice.
func List(ctx context.Context, rt *Runtime, opts ListOptions) (*ListResult, error) {
	dir := rt.vault()
	entries, err := dir.Entries()
	if err != nil {
		return nil, err
	}

	result := &ListResult{}
	for _, e := range entries {
		if opts.Filter != "" && e.Key != opts.Filter {
			continue
		}
		result.Entries = append(result.Entries, e)
	}
	rt.Log.Debugf("Listed %d of %d items in %s", len(result.Entries), len(entries), dir.Path())
	return result, nil
}
