package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// maintenanceDB is connected to when the DSN names no database, to drop and
// create the target.
const maintenanceDB = "postgres"

// pgExecutor runs scripts over a single pgx connection.
type pgExecutor struct {
	conn *pgx.Conn
}

func openPostgres(ctx context.Context, p Params) (*pgExecutor, error) {
	cfg, err := postgresConfig(p)
	if err != nil {
		return nil, err
	}

	admin, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	err = preparePostgres(ctx, admin, p)
	closeErr := admin.Close(ctx)

	if err != nil {
		return nil, err
	}

	if closeErr != nil {
		return nil, fmt.Errorf("closing maintenance connection: %w", closeErr)
	}

	target := cfg.Copy()
	target.Database = p.DBName

	conn, err := pgx.ConnectConfig(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return &pgExecutor{conn: conn}, nil
}

// postgresConfig builds the maintenance connection config. Options are
// passed as connection string parameters so both libpq settings
// (sslmode, connect_timeout) and runtime parameters work.
func postgresConfig(p Params) (*pgx.ConnConfig, error) {
	dsn := p.DSN
	if strings.HasPrefix(strings.ToLower(dsn), "pgsql:") {
		dsn = "postgres:" + dsn[len("pgsql:"):]
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
	}

	if len(p.Options) > 0 {
		q := u.Query()
		for k, v := range p.Options {
			q.Set(k, v)
		}

		u.RawQuery = q.Encode()
	}

	cfg, err := pgx.ParseConfig(u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
	}

	cfg.User = p.Username
	if p.Password != "" {
		cfg.Password = p.Password
	}

	if cfg.Database == "" {
		cfg.Database = maintenanceDB
	}

	return cfg, nil
}

// pgConn is the subset of *pgx.Conn used to prepare the target database.
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func preparePostgres(ctx context.Context, conn pgConn, p Params) error {
	ident := pgx.Identifier{p.DBName}.Sanitize()

	if p.DropDB {
		if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+ident); err != nil {
			return fmt.Errorf("dropping database %s: %w", p.DBName, err)
		}
	}

	var exists bool

	err := conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", p.DBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking database %s: %w", p.DBName, err)
	}

	if exists {
		return nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		return fmt.Errorf("creating database %s: %w", p.DBName, err)
	}

	return nil
}

// Exec runs script with the simple query protocol, which accepts several
// statements separated by semicolons.
func (e *pgExecutor) Exec(ctx context.Context, script string) error {
	if _, err := e.conn.Exec(ctx, script); err != nil {
		return classifyPostgres(err)
	}

	return nil
}

func (e *pgExecutor) Close(ctx context.Context) error {
	return e.conn.Close(ctx)
}

func classifyPostgres(err error) *ExecError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &ExecError{Code: pgErr.Code, Message: pgErr.Message, Err: err}
	}

	return unknownExecError(err)
}
