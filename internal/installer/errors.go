package installer

import "errors"

var (
	// ErrLedgerWrite indicates that a successful run could not be recorded.
	ErrLedgerWrite = errors.New("recording installation failed")

	// ErrNoConnector indicates a run needed the database but none was configured.
	ErrNoConnector = errors.New("no database connector configured")
)
