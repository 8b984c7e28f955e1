package filestore

import "errors"

// ErrNotDirectory indicates a path expected to be a directory is a file.
var ErrNotDirectory = errors.New("not a directory")
