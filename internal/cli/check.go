package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-installer/internal/config"
	"github.com/aqasim81/schema-installer/internal/database"
	"github.com/aqasim81/schema-installer/internal/sqlcheck"
)

var checkCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "check",
	Short: "Check pending schema files for errors and destructive statements",
	Long: `Parse the pending schema files with the PostgreSQL parser and report
syntax errors and statements that destroy data (DROP TABLE, DROP SCHEMA,
DROP DATABASE, TRUNCATE, DELETE without WHERE). For MySQL and SQLite targets,
files the PostgreSQL parser cannot read are listed as skipped instead of
failing the check.`,
	RunE: runCheck,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	checkCmd.Flags().Bool("allow-destructive", false, "report destructive statements without failing")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	files, err := newInstaller(AppConfig).Plan()
	if err != nil {
		return fmt.Errorf("loading pending schema files: %w", err)
	}

	if len(files) == 0 {
		fmt.Fprintln(out, "Nothing to check.")

		return nil
	}

	report := sqlcheck.Check(files, checkOptions(AppConfig)...)

	for _, id := range report.Unparsed {
		fmt.Fprintf(out, "  SKIPPED %s: not PostgreSQL syntax\n", id)
	}

	for _, id := range report.SyntaxFailures() {
		fmt.Fprintf(out, "  SYNTAX  %s: %v\n", id, report.SyntaxErrors[id])
	}

	for _, f := range report.Findings {
		fmt.Fprintf(out, "  %-7s %s\n", "DANGER", f)
	}

	fmt.Fprintf(out, "\n%d file(s) checked, %d syntax error(s), %d destructive statement(s).\n",
		report.Checked, len(report.SyntaxErrors), len(report.Findings))

	allowDestructive, _ := cmd.Flags().GetBool("allow-destructive")

	return report.Err(allowDestructive)
}

// checkOptions relaxes syntax checking unless the target is PostgreSQL,
// whose grammar is the only one the parser knows.
func checkOptions(cfg *config.Config) []sqlcheck.Option {
	driver, err := cfg.Params().Driver()
	if err != nil || driver == database.Postgres {
		return nil
	}

	return []sqlcheck.Option{sqlcheck.WithLenientSyntax()}
}
