package database

import (
	"fmt"
	"strings"
)

// Driver identifies a supported database engine.
type Driver string

// Supported drivers.
const (
	Postgres Driver = "postgres"
	MySQL    Driver = "mysql"
	SQLite   Driver = "sqlite"
)

// Params describes how to reach the target database and which database to
// install into.
type Params struct {
	DSN      string            // "postgres://host:5432", "mysql:host=127.0.0.1", "sqlite:./var"
	Username string            // not required for sqlite
	Password string
	Options  map[string]string // driver options
	DBName   string
	DropDB   bool // drop DBName before (re)creating it
}

// Driver returns the engine named by the DSN scheme.
func (p Params) Driver() (Driver, error) {
	scheme, _, ok := strings.Cut(p.DSN, ":")
	if !ok {
		return "", fmt.Errorf("%w: %q has no driver prefix", ErrUnsupportedDriver, p.DSN)
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql", "pgsql":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3", "file":
		return SQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, scheme)
	}
}

// Validate checks that the fields needed to connect are present.
func (p Params) Validate() error {
	var missing []string

	if p.DSN == "" {
		missing = append(missing, "dsn")
	}

	if p.DBName == "" {
		missing = append(missing, "dbname")
	}

	driver, driverErr := p.Driver()
	if p.Username == "" && driver != SQLite {
		missing = append(missing, "username")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfiguration, strings.Join(missing, ", "))
	}

	if driverErr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, driverErr)
	}

	return nil
}
