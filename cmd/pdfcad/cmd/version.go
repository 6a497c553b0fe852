package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wan-andrea/recover-pdfCAD/internal/version"
)

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		v, commit, date := version.Info()
		fmt.Fprintf(cmd.OutOrStdout(), "pdfcad version %s\n", v)
		fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
