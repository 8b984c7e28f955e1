package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "status",
	Short: "Show installation status",
	Long: `Display the configured and installed versions together with the
installed and pending schema files. The database is not contacted.`,
	RunE: runStatus,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	inst := newInstaller(AppConfig)
	out := cmd.OutOrStdout()

	installedVersion, ok := inst.VersionLedger().Installed()
	if !ok {
		installedVersion = "none"
	}

	installed := "no"
	if inst.IsInstalled() {
		installed = "yes"
	}

	pending, err := inst.Pending()
	if err != nil {
		return err
	}

	done := inst.SchemaLedger().Installed()

	fmt.Fprintf(out, "Version:           %s\n", inst.Version())
	fmt.Fprintf(out, "Installed version: %s\n", installedVersion)
	fmt.Fprintf(out, "Up to date:        %s\n", installed)

	fmt.Fprintf(out, "\nInstalled schema files (%d):\n", done.Len())

	for _, id := range done.IDs() {
		fmt.Fprintf(out, "  %s\n", id)
	}

	fmt.Fprintf(out, "\nPending schema files (%d):\n", len(pending))

	for _, id := range pending {
		fmt.Fprintf(out, "  %s\n", id)
	}

	return nil
}
