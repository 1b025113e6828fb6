package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/tarvault/internal/utils"

	"github.com/google/uuid"
)

// Operation names.
const (
	OpStore    = "store"
	OpRetrieve = "retrieve"
)

// Entry represents a single history entry.
type Entry struct {
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	User      string `json:"user"` // Local username.
	ID        string `json:"id"`   // Unique id of this operation.
	Operation string `json:"op"`   // Operation name.

	Key        string `json:"key"`
	File       string `json:"file,omitempty"` // Vault file name, without directory.
	Compressed bool   `json:"compressed,omitempty"`
	Source     string `json:"source,omitempty"`  // For store.
	Removed    bool   `json:"removed,omitempty"` // For store with remove-original.
}

// Log appends an entry to the history log at path, creating the file and
// its directory if needed. An empty path disables logging. Errors are
// swallowed.
func Log(path string, entry Entry) {
	if path == "" {
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogWithUser returns an entry for op with the user and id fields set.
func LogWithUser(op string) Entry {
	entry := Entry{Operation: op, ID: uuid.NewString()}

	if username, err := utils.GetUsername(); err == nil {
		entry.User = username
	}

	return entry
}
