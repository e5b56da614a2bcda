package cmd

import (
	"github.com/spf13/cobra"
)

var allCmd = &cobra.Command{
	Use:   "all [target]",
	Short: "Run every pipeline stage (currently scan only)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Further stages attach here as they land; today this is scan.
		return runScan(cmd, args)
	},
}

func init() {
	allCmd.Flags().StringP("output", "o", "", "Output directory for the index artifact")
	allCmd.Flags().StringSliceP("exclude", "e", nil, "Extra ignore pattern (repeatable)")
	allCmd.Flags().BoolP("watch", "w", false, "Keep running and rescan on file changes")
	rootCmd.AddCommand(allCmd)
}
