package ledger

import "errors"

// ErrWrite indicates a ledger file could not be appended to.
var ErrWrite = errors.New("writing ledger")

// ErrInvalidRecord indicates a record would break the ledger format.
var ErrInvalidRecord = errors.New("invalid ledger record")
