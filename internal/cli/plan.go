package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const checksumDisplayLen = 12

var planCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "plan",
	Short: "Show the schema files the next install would apply",
	Long: `Display the pending schema files in the order install would run them.
Nothing is executed and the database is not contacted.`,
	RunE: runPlan,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	files, err := newInstaller(AppConfig).Plan()
	if err != nil {
		return fmt.Errorf("planning installation: %w", err)
	}

	if len(files) == 0 {
		fmt.Fprintln(out, "Nothing to install.")

		return nil
	}

	fmt.Fprintf(out, "Execution plan (%d file(s)):\n", len(files))

	for i := range files {
		fmt.Fprintf(out, "  %d. %s  %s\n", i+1, files[i].ID, files[i].Checksum[:checksumDisplayLen])
	}

	return nil
}
