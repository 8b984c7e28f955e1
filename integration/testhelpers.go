//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aqasim81/schema-installer/internal/database"
)

const (
	postgresImage = "postgres:16-alpine"
	testUser      = "installer"
	testPassword  = "installer"
)

// SetupPostgres starts a PostgreSQL 16 container and returns connection
// parameters for a database named dbname that does not exist yet.
// The container is automatically cleaned up when the test completes.
func SetupPostgres(t *testing.T, dbname string) database.Params {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return database.Params{
		DSN:      fmt.Sprintf("postgres://%s:%s", host, port.Port()),
		Username: testUser,
		Password: testPassword,
		Options:  map[string]string{"sslmode": "disable"},
		DBName:   dbname,
	}
}

// Connect opens a plain pgx connection to p.DBName for assertions.
func Connect(t *testing.T, p database.Params) *pgx.Conn {
	t.Helper()

	ctx := context.Background()
	dsn := fmt.Sprintf("%s/%s?sslmode=disable", p.DSN, p.DBName)

	cfg, err := pgx.ParseConfig(dsn)
	require.NoError(t, err)

	cfg.User = p.Username
	cfg.Password = p.Password

	conn, err := pgx.ConnectConfig(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close(context.Background())
	})

	return conn
}
