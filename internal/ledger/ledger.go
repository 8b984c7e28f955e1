// Package ledger implements the append-only text logs that record installed
// state. Each log is replayed on read to reconstruct that state.
package ledger

import (
	"fmt"
	"strings"

	"github.com/aqasim81/schema-installer/internal/filestore"
)

// Delimiter terminates every record in a ledger file.
const Delimiter = "\n"

// Conventional ledger file names inside the working directory.
const (
	SchemaFileName  = "installed_schema"
	VersionFileName = "installed_version"
)

// textLog is a newline-delimited append-only file.
type textLog struct {
	store filestore.Store
	path  string
}

// records returns the non-empty records in file order. A missing or
// unreadable file has no records.
func (l textLog) records() []string {
	data, err := l.store.Read(l.path)
	if err != nil {
		return nil
	}

	var out []string

	for _, r := range strings.Split(string(data), Delimiter) {
		if r != "" {
			out = append(out, r)
		}
	}

	return out
}

// append writes each record followed by the delimiter in one write.
func (l textLog) append(records ...string) error {
	if len(records) == 0 {
		return nil
	}

	var b strings.Builder
	for _, r := range records {
		b.WriteString(r)
		b.WriteString(Delimiter)
	}

	if err := l.store.Append(l.path, []byte(b.String())); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return nil
}
