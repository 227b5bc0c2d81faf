package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is the worker version reported to the host and in logs.
const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the worker version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
