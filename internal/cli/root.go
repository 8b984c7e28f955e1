package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-installer/internal/config"
	"github.com/aqasim81/schema-installer/internal/filestore"
	"github.com/aqasim81/schema-installer/internal/installer"
)

const version = "0.1.0"

// AppConfig holds the loaded configuration, set during PersistentPreRunE.
var AppConfig *config.Config //nolint:gochecknoglobals // standard Cobra pattern for shared config

// appLogger receives diagnostics. It discards everything until loadConfig runs.
var appLogger = log.New(io.Discard) //nolint:gochecknoglobals // set once per invocation

// rootCmd is the base command for the installer CLI.
var rootCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:     "installer",
	Version: version,
	Short:   "Install SQL schema files into a database, once each",
	Long: `installer scans a schema directory for SQL files, applies the ones the
target database has not received yet in numeric order, and records what was
applied and under which release version in two append-only ledger files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.PersistentFlags().String("config", config.DefaultFile, "path to configuration file")
	rootCmd.PersistentFlags().String("schema-dir", "", "directory scanned for schema files")
	rootCmd.PersistentFlags().String("working-dir", "", "directory holding the installed_schema and installed_version ledgers")
	rootCmd.PersistentFlags().String("version-tag", "", "release version recorded after a successful install")
	rootCmd.PersistentFlags().String("database-dsn", "", "database DSN (postgres://..., mysql:host=..., sqlite:<dir>)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads configuration with precedence: flag > env > file.
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	allowMissing := !cmd.Flags().Changed("config")

	cfg, err := config.Load(configPath, allowMissing)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	config.MergeEnv(cfg)
	mergeFlags(cmd, cfg)

	verbose, _ := cmd.Flags().GetBool("verbose")
	appLogger = newLogger(cmd.ErrOrStderr(), verbose)

	AppConfig = cfg

	return nil
}

// mergeFlags overrides config with explicitly-set CLI flags.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("schema-dir") {
		cfg.SchemaDir, _ = cmd.Flags().GetString("schema-dir")
	}

	if cmd.Flags().Changed("working-dir") {
		cfg.WorkingDir, _ = cmd.Flags().GetString("working-dir")
	}

	if cmd.Flags().Changed("version-tag") {
		cfg.Version, _ = cmd.Flags().GetString("version-tag")
	}

	if cmd.Flags().Changed("database-dsn") {
		cfg.Database.DSN, _ = cmd.Flags().GetString("database-dsn")
	}
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          "installer",
		ReportTimestamp: true,
	})

	if verbose {
		l.SetLevel(log.DebugLevel)
	}

	return l
}

// newInstaller builds an Installer from cfg.
func newInstaller(cfg *config.Config, opts ...installer.Option) *installer.Installer {
	base := []installer.Option{
		installer.WithVersion(cfg.Version),
		installer.WithSchemaDir(cfg.SchemaDir),
		installer.WithWorkingDir(cfg.WorkingDir),
		installer.WithExtensions(cfg.Extensions...),
		installer.WithLogger(appLogger),
	}

	return installer.New(filestore.New(), installer.Connect(cfg.Params()), append(base, opts...)...)
}
