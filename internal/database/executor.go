package database

import (
	"context"
	"fmt"
)

// UnknownErrorCode is reported when a driver error carries no code.
const UnknownErrorCode = "HY000"

// Executor runs raw SQL scripts against one open connection.
type Executor interface {
	// Exec runs script, which may hold several statements. A failing
	// statement is reported as an *ExecError.
	Exec(ctx context.Context, script string) error
	Close(ctx context.Context) error
}

// ExecError is a failed script as reported by the database.
type ExecError struct {
	Code    string // SQLSTATE, vendor error number or result code
	Message string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

func unknownExecError(err error) *ExecError {
	return &ExecError{Code: UnknownErrorCode, Message: err.Error(), Err: err}
}
