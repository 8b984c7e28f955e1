package executor

import "errors"

// ErrNoDatabase indicates the executor was built without a database to run against.
var ErrNoDatabase = errors.New("no database executor configured")
