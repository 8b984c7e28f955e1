package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-installer/internal/config"
)

// useProject points AppConfig at a fresh schema directory, working directory
// and SQLite database, restoring the previous value afterwards.
func useProject(t *testing.T, files map[string]string) *config.Config {
	t.Helper()

	root := t.TempDir()

	cfg := config.New()
	cfg.Version = "1.0.0"
	cfg.SchemaDir = filepath.Join(root, "schema")
	cfg.WorkingDir = filepath.Join(root, "tmp")
	cfg.Database.DSN = "sqlite:" + filepath.Join(root, "data")
	cfg.Database.Username = ""
	cfg.Database.DBName = "app"

	require.NoError(t, os.MkdirAll(cfg.SchemaDir, 0o755))

	for name, sql := range files {
		path := filepath.Join(cfg.SchemaDir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(sql), 0o644))
	}

	old := AppConfig
	AppConfig = cfg

	t.Cleanup(func() { AppConfig = old })

	return cfg
}

// newTestCmd returns a command carrying the given bool flags, writing to a buffer.
func newTestCmd(flags ...string) (*cobra.Command, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))

	for _, f := range flags {
		cmd.Flags().Bool(f, false, "")
	}

	return cmd, buf
}

func readLedger(t *testing.T, cfg *config.Config, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(cfg.WorkingDir, name))
	if os.IsNotExist(err) {
		return ""
	}

	require.NoError(t, err)

	return string(data)
}
