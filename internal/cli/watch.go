package cli

import (
	"github.com/spf13/cobra"
)

// watchCmd is shorthand for `recall ingest --watch`.
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Ingest a codebase, then watch for changes and re-ingest incrementally",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		watchFlag = true
		return runIngest(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
}
