package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags "-X github.com/project-recall/recall/internal/cli.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("recall %s (commit %s, %s/%s, built %s)\n",
			version, commit, runtime.GOOS, runtime.GOARCH, date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
