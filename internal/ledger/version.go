package ledger

import "github.com/aqasim81/schema-installer/internal/filestore"

// VersionLedger records the release versions that have been installed.
// Only its last record counts.
type VersionLedger struct {
	log textLog
}

// NewVersionLedger returns a ledger stored at path.
func NewVersionLedger(store filestore.Store, path string) *VersionLedger {
	return &VersionLedger{log: textLog{store: store, path: path}}
}

// Path returns the ledger file location.
func (l *VersionLedger) Path() string {
	return l.log.path
}

// Installed returns the most recently appended version. ok is false when
// nothing has been installed yet.
func (l *VersionLedger) Installed() (version string, ok bool) {
	records := l.log.records()
	if len(records) == 0 {
		return "", false
	}

	return records[len(records)-1], true
}

// History returns every recorded version, oldest first.
func (l *VersionLedger) History() []string {
	return l.log.records()
}

// Append records version as the installed version.
func (l *VersionLedger) Append(version string) error {
	if err := validRecord(version); err != nil {
		return err
	}

	return l.log.append(version)
}
