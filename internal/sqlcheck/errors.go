package sqlcheck

import "errors"

var (
	// ErrSyntax indicates a schema file the parser could not read.
	ErrSyntax = errors.New("invalid SQL")

	// ErrDestructive indicates a schema file would destroy data.
	ErrDestructive = errors.New("destructive statement")
)
