package cli

import (
	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "commhealth",
		Short:        "Communication health survey scoring and analytics",
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	return cmd
}
