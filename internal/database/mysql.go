package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const defaultMySQLPort = "3306"

func openMySQL(ctx context.Context, p Params) (*sqlExecutor, error) {
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

	if err := prepareMySQL(ctx, e, p); err != nil {
		e.Close(ctx) //nolint:errcheck // best-effort cleanup, preparation error wins

		return nil, err
	}

	return e, nil
}

// mysqlConfig accepts "mysql://host:port" and the PDO form
// "mysql:host=127.0.0.1;port=3306;charset=utf8mb4". A database named in the
// DSN is ignored: DBName is created and selected explicitly.
func mysqlConfig(p Params) (*mysql.Config, error) {
	cfg := mysql.NewConfig()
	cfg.User = p.Username
	cfg.Passwd = p.Password
	cfg.MultiStatements = true
	cfg.Params = map[string]string{}

	rest := p.DSN[len("mysql:"):]

	if strings.HasPrefix(rest, "//") {
		u, err := url.Parse(p.DSN)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
		}

		cfg.Net = "tcp"
		cfg.Addr = withDefaultPort(u.Host)

		for k, vs := range u.Query() {
			if len(vs) > 0 {
				cfg.Params[k] = vs[len(vs)-1]
			}
		}
	} else {
		host, port := "127.0.0.1", defaultMySQLPort

		for _, pair := range strings.Split(rest, ";") {
			k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
			if !ok {
				continue
			}

			switch strings.ToLower(k) {
			case "host":
				host = v
			case "port":
				if _, err := strconv.Atoi(v); err != nil {
					return nil, fmt.Errorf("%w: port %q", ErrInvalidDSN, v)
				}

				port = v
			case "unix_socket":
				cfg.Net = "unix"
				cfg.Addr = v
			case "charset":
				cfg.Params["charset"] = v
			}
		}

		if cfg.Net != "unix" {
			cfg.Net = "tcp"
			cfg.Addr = net.JoinHostPort(host, port)
		}
	}

	for k, v := range p.Options {
		cfg.Params[k] = v
	}

	return cfg, nil
}

func withDefaultPort(host string) string {
	if host == "" {
		host = "127.0.0.1"
	}

	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}

	return net.JoinHostPort(host, defaultMySQLPort)
}

func prepareMySQL(ctx context.Context, e *sqlExecutor, p Params) error {
	ident := quoteMySQL(p.DBName)

	if p.DropDB {
		if err := e.exec(ctx, "dropping database "+p.DBName, "DROP DATABASE IF EXISTS "+ident); err != nil {
			return err
		}
	}

	if err := e.exec(ctx, "creating database "+p.DBName, "CREATE DATABASE IF NOT EXISTS "+ident); err != nil {
		return err
	}

	return e.exec(ctx, "selecting database "+p.DBName, "USE "+ident)
}

func quoteMySQL(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func classifyMySQL(err error) *ExecError {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return &ExecError{Code: strconv.Itoa(int(myErr.Number)), Message: myErr.Message, Err: err}
	}

	return unknownExecError(err)
}
