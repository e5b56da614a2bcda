package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs [target]",
	Short: "Generate documentation artifacts (not implemented yet)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("docs: not implemented yet")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
