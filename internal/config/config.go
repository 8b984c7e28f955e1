package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aqasim81/schema-installer/internal/database"
	"github.com/aqasim81/schema-installer/internal/installer"
)

// Default values for configuration fields.
const (
	DefaultFile       = "installer.yml"
	DefaultVersion    = installer.DefaultVersion
	DefaultWorkingDir = installer.DefaultWorkingDir
	DefaultSchemaDir  = installer.DefaultSchemaDir
	DefaultDSN        = "postgres://127.0.0.1:5432"
	DefaultUsername   = "root"
	DefaultDBName     = "test_wai"
)

// envPrefix is prepended to every environment variable read by MergeEnv.
const envPrefix = "INSTALLER_"

// Database holds the target database connection settings.
type Database struct {
	DSN      string
	Username string
	Password string
	Options  map[string]string
	DBName   string
	DropDB   bool
}

// Reminder points at the lines of an entry script that trigger installation.
// When File is set, a successful run reminds the user to remove them.
type Reminder struct {
	File      string
	LineStart int
	LineEnd   int
}

// Config holds the application configuration loaded from file, environment, and flags.
type Config struct {
	Version    string
	WorkingDir string
	SchemaDir  string
	Extensions []string
	Database   Database
	Reminder   Reminder
}

// yamlConfig is the raw YAML file representation.
type yamlConfig struct {
	Version    string   `yaml:"version"`
	WorkingDir string   `yaml:"working_dir"`
	SchemaDir  string   `yaml:"schema_dir"`
	Extensions []string `yaml:"extensions"`
	Database   struct {
		DSN      string            `yaml:"dsn"`
		Username string            `yaml:"username"`
		Password string            `yaml:"password"`
		Options  map[string]string `yaml:"options"`
		DBName   string            `yaml:"dbname"`
		DropDB   bool              `yaml:"dropdb"`
	} `yaml:"database"`
	Reminder struct {
		File      string `yaml:"file"`
		LineStart int    `yaml:"line_start"`
		LineEnd   int    `yaml:"line_end"`
	} `yaml:"reminder"`
}

// New returns a Config populated with default values.
func New() *Config {
	return &Config{
		Version:    DefaultVersion,
		WorkingDir: DefaultWorkingDir,
		SchemaDir:  DefaultSchemaDir,
		Extensions: append([]string(nil), installer.DefaultExtensions...),
		Database: Database{
			DSN:      DefaultDSN,
			Username: DefaultUsername,
			DBName:   DefaultDBName,
		},
	}
}

// Load reads a YAML configuration file and returns a Config.
// If allowMissing is true and the file does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return New(), nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return fromYAML(&raw), nil
}

// fromYAML converts the raw YAML representation to a Config with defaults applied.
func fromYAML(raw *yamlConfig) *Config {
	cfg := New()

	setString(&cfg.Version, raw.Version)
	setString(&cfg.WorkingDir, raw.WorkingDir)
	setString(&cfg.SchemaDir, raw.SchemaDir)

	if raw.Extensions != nil {
		cfg.Extensions = raw.Extensions
	}

	setString(&cfg.Database.DSN, raw.Database.DSN)
	setString(&cfg.Database.Username, raw.Database.Username)
	setString(&cfg.Database.Password, raw.Database.Password)
	setString(&cfg.Database.DBName, raw.Database.DBName)
	cfg.Database.Options = raw.Database.Options
	cfg.Database.DropDB = raw.Database.DropDB

	cfg.Reminder = Reminder{
		File:      raw.Reminder.File,
		LineStart: raw.Reminder.LineStart,
		LineEnd:   raw.Reminder.LineEnd,
	}

	return cfg
}

// MergeEnv overrides config fields from INSTALLER_* environment variables.
// Values that do not parse are ignored.
func MergeEnv(cfg *Config) {
	setString(&cfg.Version, os.Getenv(envPrefix+"VERSION"))
	setString(&cfg.WorkingDir, os.Getenv(envPrefix+"WORKING_DIR"))
	setString(&cfg.SchemaDir, os.Getenv(envPrefix+"SCHEMA_DIR"))

	if v := os.Getenv(envPrefix + "EXTENSIONS"); v != "" {
		cfg.Extensions = splitList(v)
	}

	setString(&cfg.Database.DSN, os.Getenv(envPrefix+"DATABASE_DSN"))
	setString(&cfg.Database.Username, os.Getenv(envPrefix+"DATABASE_USERNAME"))
	setString(&cfg.Database.Password, os.Getenv(envPrefix+"DATABASE_PASSWORD"))
	setString(&cfg.Database.DBName, os.Getenv(envPrefix+"DATABASE_DBNAME"))

	if v := os.Getenv(envPrefix + "DATABASE_DROPDB"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Database.DropDB = b
		}
	}
}

// Params returns the database connection parameters.
func (c *Config) Params() database.Params {
	return database.Params{
		DSN:      c.Database.DSN,
		Username: c.Database.Username,
		Password: c.Database.Password,
		Options:  c.Database.Options,
		DBName:   c.Database.DBName,
		DropDB:   c.Database.DropDB,
	}
}

// Validate checks the settings a run cannot do without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Version) == "" || strings.Contains(c.Version, "\n") {
		return fmt.Errorf("%w: version %q", database.ErrInvalidConfiguration, c.Version)
	}

	if c.SchemaDir == "" || c.WorkingDir == "" {
		return fmt.Errorf("%w: schema_dir and working_dir are required", database.ErrInvalidConfiguration)
	}

	return c.Params().Validate()
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// splitList splits a comma separated list, dropping blanks.
func splitList(v string) []string {
	var out []string

	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
