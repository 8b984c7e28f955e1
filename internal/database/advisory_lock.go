package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
)

// RunLockID is the Postgres advisory lock identifier that keeps two
// installations from running against the same server at once.
const RunLockID int64 = 123456789

// RunLockName is the MySQL named lock with the same purpose.
const RunLockName = "schema-installer"

// LockHandle holds a server-side run lock on a dedicated connection.
// Call Release to unlock and close the connection.
type LockHandle struct {
	release func(ctx context.Context) error
}

// AcquireRunLock takes the run lock for the server described by p without
// waiting. It returns ErrLockNotAcquired if another process holds it.
// SQLite has no server, so the returned handle is a no-op.
func AcquireRunLock(ctx context.Context, p Params) (*LockHandle, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	driver, err := p.Driver()
	if err != nil {
		return nil, err
	}

	switch driver {
	case Postgres:
		return acquirePostgresLock(ctx, p)
	case MySQL:
		return acquireMySQLLock(ctx, p)
	default:
		return &LockHandle{}, nil
	}
}

// Release unlocks and closes the lock connection.
// Safe to call multiple times; subsequent calls are no-ops.
func (h *LockHandle) Release(ctx context.Context) error {
	if h == nil || h.release == nil {
		return nil
	}

	release := h.release
	h.release = nil

	return release(ctx)
}

func acquirePostgresLock(ctx context.Context, p Params) (*LockHandle, error) {
	cfg, err := postgresConfig(p)
	if err != nil {
		return nil, err
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	release, err := tryAdvisoryLock(ctx, conn)
	if err != nil {
		conn.Close(ctx) //nolint:errcheck // lock error wins

		return nil, err
	}

	return &LockHandle{release: func(ctx context.Context) error {
		unlockErr := release(ctx)
		if err := conn.Close(ctx); err != nil && unlockErr == nil {
			return fmt.Errorf("closing lock connection: %w", err)
		}

		return unlockErr
	}}, nil
}

// tryAdvisoryLock takes a session-level advisory lock on conn.
func tryAdvisoryLock(ctx context.Context, conn pgConn) (func(context.Context) error, error) {
	var acquired bool

	err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", RunLockID).Scan(&acquired)
	if err != nil {
		return nil, fmt.Errorf("executing pg_try_advisory_lock: %w", err)
	}

	if !acquired {
		return nil, ErrLockNotAcquired
	}

	return func(ctx context.Context) error {
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", RunLockID); err != nil {
			return fmt.Errorf("releasing advisory lock: %w", err)
		}

		return nil
	}, nil
}

func acquireMySQLLock(ctx context.Context, p Params) (*LockHandle, error) {
	cfg, err := mysqlConfig(p)
	if err != nil {
		return nil, err
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
	}

	e, err := pinConn(ctx, sql.OpenDB(connector), classifyMySQL)
	if err != nil {
		return nil, err
	}

	release, err := tryNamedLock(ctx, e.conn)
	if err != nil {
		e.Close(ctx) //nolint:errcheck // lock error wins

		return nil, err
	}

	return &LockHandle{release: func(ctx context.Context) error {
		unlockErr := release(ctx)
		if err := e.Close(ctx); err != nil && unlockErr == nil {
			return fmt.Errorf("closing lock connection: %w", err)
		}

		return unlockErr
	}}, nil
}

// tryNamedLock takes a MySQL named lock on conn with a zero timeout.
func tryNamedLock(ctx context.Context, conn *sql.Conn) (func(context.Context) error, error) {
	var acquired sql.NullInt64

	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, 0)", RunLockName).Scan(&acquired); err != nil {
		return nil, fmt.Errorf("executing GET_LOCK: %w", err)
	}

	if !acquired.Valid || acquired.Int64 != 1 {
		return nil, ErrLockNotAcquired
	}

	return func(ctx context.Context) error {
		var released sql.NullInt64
		if err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", RunLockName).Scan(&released); err != nil {
			return fmt.Errorf("releasing named lock: %w", err)
		}

		return nil
	}, nil
}
