package database

import "errors"

// ErrInvalidConfiguration indicates required connection parameters are missing.
// No installation can make progress without them.
var ErrInvalidConfiguration = errors.New("invalid database configuration")

// ErrUnsupportedDriver indicates the DSN names a driver this tool cannot use.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// ErrInvalidDSN indicates the provided DSN could not be parsed.
var ErrInvalidDSN = errors.New("invalid database DSN")

// ErrConnectionFailed indicates a connection to the database could not be established.
var ErrConnectionFailed = errors.New("database connection failed")

// ErrLockNotAcquired indicates the run lock is already held by another process.
var ErrLockNotAcquired = errors.New("installation lock not acquired")
