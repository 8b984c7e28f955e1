package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-installer/internal/config"
	"github.com/aqasim81/schema-installer/internal/database"
	"github.com/aqasim81/schema-installer/internal/executor"
	"github.com/aqasim81/schema-installer/internal/installer"
	"github.com/aqasim81/schema-installer/internal/sqlcheck"
)

// ErrInstallFailed is returned when a run ends in failure. The details have
// already been printed by then.
var ErrInstallFailed = errors.New("installation failed")

var installCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "install",
	Short: "Install pending schema files",
	Long: `Apply every schema file not yet recorded in the installed_schema ledger,
in numeric order. Every file is attempted even after a failure; the ledgers
are only updated when all of them succeed.`,
	RunE: runInstall,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	installCmd.Flags().Bool("check", false, "parse pending files first and refuse to run on errors")
	installCmd.Flags().Bool("allow-destructive", false, "with --check, allow DROP/TRUNCATE/DELETE-all statements")
	installCmd.Flags().Bool("no-lock", false, "do not take the database run lock")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig

	if err := cfg.Validate(); err != nil {
		return err
	}

	check, _ := cmd.Flags().GetBool("check")
	allowDestructive, _ := cmd.Flags().GetBool("allow-destructive")
	noLock, _ := cmd.Flags().GetBool("no-lock")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()

	if !noLock {
		release, err := acquireLock(ctx, cfg, out)
		if err != nil {
			return err
		}
		defer release()
	}

	var opts []installer.Option

	var inst *installer.Installer
	if check {
		opts = append(opts, installer.WithBefore("sql check", func(context.Context) error {
			return checkPending(inst, allowDestructive, checkOptions(cfg)...)
		}))
	}

	opts = append(opts, installer.WithProgressCallback(progressPrinter(out)))
	inst = newInstaller(cfg, opts...)

	fmt.Fprintf(out, "Installing version %s from %s\n", cfg.Version, cfg.SchemaDir)

	outcome, err := inst.Install(ctx)
	if outcome != nil {
		fmt.Fprintf(out, "\n%s\n", outcome.Result(annotation(cfg)))
	}

	if err != nil {
		return err
	}

	if !outcome.Succeeded() {
		return ErrInstallFailed
	}

	return nil
}

// acquireLock takes the database run lock and returns its release func.
func acquireLock(ctx context.Context, cfg *config.Config, out io.Writer) (func(), error) {
	appLogger.Debug("Acquiring run lock", "dsn", config.RedactDSN(cfg.Database.DSN))

	lock, err := database.AcquireRunLock(ctx, cfg.Params())
	if err != nil {
		if errors.Is(err, database.ErrLockNotAcquired) {
			fmt.Fprintln(out, "Another installation is running against this database.")
		}

		return nil, fmt.Errorf("acquiring run lock: %w", err)
	}

	return func() {
		if err := lock.Release(ctx); err != nil {
			appLogger.Warn("Releasing run lock", "err", err)
		}
	}, nil
}

// checkPending parses the pending files and fails on syntax errors or,
// unless allowed, destructive statements.
func checkPending(inst *installer.Installer, allowDestructive bool, opts ...sqlcheck.Option) error {
	files, err := inst.Plan()
	if err != nil {
		return fmt.Errorf("loading pending schema files: %w", err)
	}

	return sqlcheck.Check(files, opts...).Err(allowDestructive)
}

func progressPrinter(out io.Writer) func(executor.ProgressEvent) {
	var current string

	return func(event executor.ProgressEvent) {
		switch event.Status {
		case executor.StatusStarting:
			current = event.File.ID
			fmt.Fprintf(out, "  Applying %s ... ", event.File.ID)
		case executor.StatusCompleted:
			fmt.Fprintf(out, "done (%s)\n", event.Duration.Truncate(time.Millisecond))
		case executor.StatusSkipped:
			fmt.Fprintf(out, "  Skipping %s (empty)\n", event.File.ID)
		case executor.StatusFailed:
			if current != event.File.ID {
				fmt.Fprintf(out, "  Reading %s ... ", event.File.ID)
			}

			fmt.Fprintf(out, "FAILED\n")
			fmt.Fprintf(out, "    Error: %v\n", event.Error)
		}
	}
}

func annotation(cfg *config.Config) *installer.Annotation {
	if cfg.Reminder.File == "" {
		return nil
	}

	return &installer.Annotation{
		File:      cfg.Reminder.File,
		LineStart: cfg.Reminder.LineStart,
		LineEnd:   cfg.Reminder.LineEnd,
	}
}
