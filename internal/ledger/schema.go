package ledger

import (
	"fmt"
	"strings"

	"github.com/aqasim81/schema-installer/internal/filestore"
	"github.com/aqasim81/schema-installer/internal/migration"
)

// Set is the replayed content of the schema ledger: every identifier that
// appears at least once, in order of first appearance.
type Set struct {
	order []string
	index map[string]struct{}
}

func newSet(records []string) *Set {
	s := &Set{index: make(map[string]struct{}, len(records))}

	for _, r := range records {
		if _, ok := s.index[r]; ok {
			continue
		}

		s.index[r] = struct{}{}
		s.order = append(s.order, r)
	}

	return s
}

// Has reports whether id has been installed.
func (s *Set) Has(id string) bool {
	_, ok := s.index[id]

	return ok
}

// Len returns the number of distinct identifiers.
func (s *Set) Len() int {
	return len(s.order)
}

// IDs returns the distinct identifiers in order of first appearance.
func (s *Set) IDs() []string {
	return append([]string(nil), s.order...)
}

// SchemaLedger records which schema files have been applied.
type SchemaLedger struct {
	log  textLog
	root string
}

// NewSchemaLedger returns a ledger stored at path. Paths passed to
// AppendPaths are made relative to schemaRoot.
func NewSchemaLedger(store filestore.Store, path, schemaRoot string) *SchemaLedger {
	return &SchemaLedger{log: textLog{store: store, path: path}, root: schemaRoot}
}

// Path returns the ledger file location.
func (l *SchemaLedger) Path() string {
	return l.log.path
}

// Installed replays the ledger. Duplicate entries are harmless.
func (l *SchemaLedger) Installed() *Set {
	return newSet(l.log.records())
}

// Append records root-relative identifiers as installed, in the given
// order. Identifiers are stored as given.
func (l *SchemaLedger) Append(ids ...string) error {
	for _, id := range ids {
		if err := validRecord(id); err != nil {
			return err
		}
	}

	return l.log.append(ids...)
}

// AppendPaths records catalog paths as installed. Each path is made
// relative to the schema root before it is stored.
func (l *SchemaLedger) AppendPaths(paths ...string) error {
	ids := make([]string, 0, len(paths))

	for _, p := range paths {
		ids = append(ids, migration.Identify(l.root, p))
	}

	return l.Append(ids...)
}

func validRecord(r string) error {
	if r == "" || strings.Contains(r, Delimiter) {
		return fmt.Errorf("%w: %q", ErrInvalidRecord, r)
	}

	return nil
}
