package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"modernc.org/sqlite"
)

// MemoryDB as DBName selects an in-memory SQLite database.
const MemoryDB = ":memory:"

const sqliteExt = ".db"

func openSQLite(ctx context.Context, p Params) (*sqlExecutor, error) {
	file, err := SQLitePath(p)
	if err != nil {
		return nil, err
	}

	if file != MemoryDB {
		if err := prepareSQLite(file, p.DropDB); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(file, p.Options))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return pinConn(ctx, db, classifySQLite)
}

// SQLitePath returns the database file for p: DBName inside the directory
// named by the DSN, with a ".db" extension unless DBName already has one.
func SQLitePath(p Params) (string, error) {
	if p.DBName == MemoryDB {
		return MemoryDB, nil
	}

	_, dir, ok := strings.Cut(p.DSN, ":")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDSN, p.DSN)
	}

	dir = strings.TrimPrefix(dir, "//")
	if dir == "" {
		dir = "."
	}

	name := p.DBName
	if filepath.Ext(name) == "" {
		name += sqliteExt
	}

	return filepath.Join(dir, name), nil
}

func prepareSQLite(file string, drop bool) error {
	if drop {
		if err := os.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("dropping database %s: %w", file, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o777); err != nil { //nolint:gosec // permissive like the working directory
		return fmt.Errorf("creating database directory for %s: %w", file, err)
	}

	return nil
}

// sqliteDSN appends options as query parameters, e.g.
// {"_pragma": "foreign_keys(1)"}.
func sqliteDSN(file string, options map[string]string) string {
	if len(options) == 0 {
		return file
	}

	q := url.Values{}
	for k, v := range options {
		q.Set(k, v)
	}

	return file + "?" + q.Encode()
}

func classifySQLite(err error) *ExecError {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return &ExecError{Code: strconv.Itoa(liteErr.Code()), Message: liteErr.Error(), Err: err}
	}

	return unknownExecError(err)
}
