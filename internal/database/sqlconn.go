package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// sqlExecutor runs scripts over one connection pinned from a database/sql
// pool, so session state such as USE survives between scripts.
type sqlExecutor struct {
	db       *sql.DB
	conn     *sql.Conn
	classify func(error) *ExecError
}

func pinConn(ctx context.Context, db *sql.DB, classify func(error) *ExecError) (*sqlExecutor, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close() //nolint:errcheck // connection error wins

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return &sqlExecutor{db: db, conn: conn, classify: classify}, nil
}

func (e *sqlExecutor) Exec(ctx context.Context, script string) error {
	if _, err := e.conn.ExecContext(ctx, script); err != nil {
		return e.classify(err)
	}

	return nil
}

// exec runs a bootstrap statement, wrapping failures with what was attempted.
func (e *sqlExecutor) exec(ctx context.Context, what, stmt string) error {
	if _, err := e.conn.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}

	return nil
}

func (e *sqlExecutor) Close(_ context.Context) error {
	return errors.Join(e.conn.Close(), e.db.Close())
}
