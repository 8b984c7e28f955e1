package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-installer/internal/config"
	"github.com/aqasim81/schema-installer/internal/database"
	"github.com/aqasim81/schema-installer/internal/installer"
)

func TestNew_returnsDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.New()

	assert.Equal(t, config.DefaultVersion, cfg.Version)
	assert.Equal(t, config.DefaultWorkingDir, cfg.WorkingDir)
	assert.Equal(t, config.DefaultSchemaDir, cfg.SchemaDir)
	assert.Equal(t, []string{"sql"}, cfg.Extensions)
	assert.Equal(t, config.DefaultDSN, cfg.Database.DSN)
	assert.Equal(t, config.DefaultUsername, cfg.Database.Username)
	assert.Equal(t, config.DefaultDBName, cfg.Database.DBName)
	assert.Empty(t, cfg.Database.Password)
	assert.False(t, cfg.Database.DropDB)
	assert.Empty(t, cfg.Reminder.File)
}

func TestNew_matchesInstallerDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.New()

	assert.Equal(t, installer.DefaultVersion, cfg.Version)
	assert.Equal(t, installer.DefaultWorkingDir, cfg.WorkingDir)
	assert.Equal(t, installer.DefaultSchemaDir, cfg.SchemaDir)
	assert.Equal(t, installer.DefaultExtensions, cfg.Extensions)

	cfg.Extensions[0] = "ddl"
	assert.Equal(t, []string{"sql"}, installer.DefaultExtensions)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		content      string
		allowMissing bool
		writeFile    bool
		wantErr      bool
		errContains  string
		check        func(t *testing.T, cfg *config.Config)
	}{
		{
			name:      "valid file parses all fields",
			writeFile: true,
			content: `version: "2.3.0"
working_dir: "var/installer"
schema_dir: "db/schema"
extensions: [sql, ddl]
database:
  dsn: "mysql:host=db;port=3307"
  username: app
  password: secret
  dbname: shop
  dropdb: true
  options:
    charset: utf8mb4
reminder:
  file: index.php
  line_start: 4
  line_end: 12
`,
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "2.3.0", cfg.Version)
				assert.Equal(t, "var/installer", cfg.WorkingDir)
				assert.Equal(t, "db/schema", cfg.SchemaDir)
				assert.Equal(t, []string{"sql", "ddl"}, cfg.Extensions)
				assert.Equal(t, config.Database{
					DSN:      "mysql:host=db;port=3307",
					Username: "app",
					Password: "secret",
					Options:  map[string]string{"charset": "utf8mb4"},
					DBName:   "shop",
					DropDB:   true,
				}, cfg.Database)
				assert.Equal(t, config.Reminder{File: "index.php", LineStart: 4, LineEnd: 12}, cfg.Reminder)
			},
		},
		{
			name:      "partial file applies defaults",
			writeFile: true,
			content:   "database:\n  dbname: shop\n",
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "shop", cfg.Database.DBName)
				assert.Equal(t, config.DefaultDSN, cfg.Database.DSN)
				assert.Equal(t, config.DefaultUsername, cfg.Database.Username)
				assert.Equal(t, config.DefaultVersion, cfg.Version)
				assert.Equal(t, []string{"sql"}, cfg.Extensions)
			},
		},
		{
			name:      "empty extension list allows every file",
			writeFile: true,
			content:   "extensions: []\n",
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Empty(t, cfg.Extensions)
				assert.NotNil(t, cfg.Extensions)
			},
		},
		{
			name:      "empty file returns defaults",
			writeFile: true,
			content:   "",
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, config.DefaultSchemaDir, cfg.SchemaDir)
				assert.Equal(t, config.DefaultWorkingDir, cfg.WorkingDir)
			},
		},
		{
			name:         "missing file with allowMissing returns defaults",
			writeFile:    false,
			allowMissing: true,
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, config.DefaultSchemaDir, cfg.SchemaDir)
			},
		},
		{
			name:         "missing file without allowMissing returns error",
			writeFile:    false,
			allowMissing: false,
			wantErr:      true,
			errContains:  "reading config file",
		},
		{
			name:        "invalid YAML returns error",
			writeFile:   true,
			content:     "{{{invalid yaml",
			wantErr:     true,
			errContains: "parsing config file",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, config.DefaultFile)

			if tt.writeFile {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}

			cfg, err := config.Load(path, tt.allowMissing)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestMergeEnv_overridesFields(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "overrides version and directories",
			env: map[string]string{
				"INSTALLER_VERSION":     "9.9.9",
				"INSTALLER_WORKING_DIR": "/var/lib/installer",
				"INSTALLER_SCHEMA_DIR":  "/srv/schema",
			},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "9.9.9", cfg.Version)
				assert.Equal(t, "/var/lib/installer", cfg.WorkingDir)
				assert.Equal(t, "/srv/schema", cfg.SchemaDir)
			},
		},
		{
			name: "overrides extensions list",
			env:  map[string]string{"INSTALLER_EXTENSIONS": "sql, ddl ,,"},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, []string{"sql", "ddl"}, cfg.Extensions)
			},
		},
		{
			name: "overrides database settings",
			env: map[string]string{
				"INSTALLER_DATABASE_DSN":      "postgres://db:5432",
				"INSTALLER_DATABASE_USERNAME": "deploy",
				"INSTALLER_DATABASE_PASSWORD": "pw",
				"INSTALLER_DATABASE_DBNAME":   "prod",
				"INSTALLER_DATABASE_DROPDB":   "true",
			},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "postgres://db:5432", cfg.Database.DSN)
				assert.Equal(t, "deploy", cfg.Database.Username)
				assert.Equal(t, "pw", cfg.Database.Password)
				assert.Equal(t, "prod", cfg.Database.DBName)
				assert.True(t, cfg.Database.DropDB)
			},
		},
		{
			name: "invalid bool preserves original",
			env:  map[string]string{"INSTALLER_DATABASE_DROPDB": "sometimes"},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.False(t, cfg.Database.DropDB)
			},
		},
		{
			name: "unset env vars preserve original",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, config.DefaultSchemaDir, cfg.SchemaDir)
				assert.Equal(t, config.DefaultDSN, cfg.Database.DSN)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := config.New()
			config.MergeEnv(cfg)

			tt.check(t, cfg)
		})
	}
}

func TestConfig_Params(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cfg.Database.Password = "pw"
	cfg.Database.Options = map[string]string{"sslmode": "disable"}
	cfg.Database.DropDB = true

	assert.Equal(t, database.Params{
		DSN:      config.DefaultDSN,
		Username: config.DefaultUsername,
		Password: "pw",
		Options:  map[string]string{"sslmode": "disable"},
		DBName:   config.DefaultDBName,
		DropDB:   true,
	}, cfg.Params())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*config.Config) {}},
		{name: "sqlite without username", mutate: func(cfg *config.Config) {
			cfg.Database.DSN = "sqlite:var"
			cfg.Database.Username = ""
		}},
		{name: "missing dbname", mutate: func(cfg *config.Config) { cfg.Database.DBName = "" }, wantErr: true},
		{name: "missing username", mutate: func(cfg *config.Config) { cfg.Database.Username = "" }, wantErr: true},
		{name: "missing dsn", mutate: func(cfg *config.Config) { cfg.Database.DSN = "" }, wantErr: true},
		{name: "unsupported driver", mutate: func(cfg *config.Config) { cfg.Database.DSN = "oracle:db" }, wantErr: true},
		{name: "blank version", mutate: func(cfg *config.Config) { cfg.Version = " " }, wantErr: true},
		{name: "multi-line version", mutate: func(cfg *config.Config) { cfg.Version = "1\n2" }, wantErr: true},
		{name: "missing schema dir", mutate: func(cfg *config.Config) { cfg.SchemaDir = "" }, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.New()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr {
				require.ErrorIs(t, err, database.ErrInvalidConfiguration)

				return
			}

			require.NoError(t, err)
		})
	}
}
