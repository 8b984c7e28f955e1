package database

import (
	"context"
	"fmt"
)

// Open validates p, prepares the target database (dropping it first when
// DropDB is set, creating it when missing) and returns an Executor bound to
// a single connection on it.
func Open(ctx context.Context, p Params) (Executor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	driver, err := p.Driver()
	if err != nil {
		return nil, err
	}

	switch driver {
	case Postgres:
		return openPostgres(ctx, p)
	case MySQL:
		return openMySQL(ctx, p)
	case SQLite:
		return openSQLite(ctx, p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}
